package lease

import (
	"fmt"
	"strings"
	"time"
)

// Platform-wide fixed charges, in rand. The admin fee is owed by the
// landlord once a lease is fully signed and paid; the penalty is owed by
// the tenant on short-notice cancellation.
const (
	AdminFee      = 375.0
	CancelPenalty = 300.0
	NoticeDays    = 20
)

// DurationOption is a selectable lease duration
type DurationOption struct {
	Months int    `json:"months"`
	Label  string `json:"label"`
}

// Durations offered when creating a lease
var Durations = []DurationOption{
	{1, "1 month"},
	{2, "2 months"},
	{3, "3 months"},
	{6, "6 months"},
	{12, "12 months"},
	{18, "18 months"},
	{24, "24 months"},
}

// RentDueDays offered when creating a lease
var RentDueDays = []int{1, 15, 25}

// MonthlyTotal is base rent plus all recurring extras
func MonthlyTotal(rent float64, extras []Extra) float64 {
	total := rent
	for _, e := range extras {
		total += e.Amount
	}
	return total
}

// MoveInTotal is the first payment due from the tenant: deposit (0 when not
// required) plus the first month's total rent.
func MoveInTotal(rent, deposit float64, extras []Extra) float64 {
	return deposit + MonthlyTotal(rent, extras)
}

// EndDate computes the lease end from a start date and duration: the day
// before the same date durationMonths later. Dates are YYYY-MM-DD strings,
// matching the columns.
func EndDate(startDate string, durationMonths int) (string, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return "", fmt.Errorf("invalid start date %q: %w", startDate, err)
	}

	end := start.AddDate(0, durationMonths, -1)
	return end.Format("2006-01-02"), nil
}

// FormatCurrency renders an amount as "R 3 200,00" (en-ZA grouping)
func FormatCurrency(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	parts := strings.SplitN(s, ".", 2)
	intPart, decPart := parts[0], parts[1]

	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := "R " + strings.Join(groups, " ") + "," + decPart
	if neg {
		out = "R -" + strings.Join(groups, " ") + "," + decPart
	}
	return out
}
