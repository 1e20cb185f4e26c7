package lease

import (
	"encoding/json"
	"strings"

	"township-rental-portal/internal/models"
)

// Config is the structured pricing/signature/cancellation metadata embedded
// as JSON in a lease's lease_terms column. Version 0 blobs predate the
// version field and may lack computed totals; Migrate back-fills them from
// the lease row.
type Config struct {
	Version        int     `json:"version"`
	DurationMonths int     `json:"duration_months"`
	RentDueDay     int     `json:"rent_due_day"`
	Extras         []Extra `json:"extras"`

	DepositRequired bool    `json:"deposit_required"`
	MonthlyTotal    float64 `json:"monthly_total"`
	MoveInTotal     float64 `json:"move_in_total"`

	LandlordSigned   bool   `json:"landlord_signed"`
	LandlordSignedAt string `json:"landlord_signed_at,omitempty"`
	TenantSigned     bool   `json:"tenant_signed"`
	TenantSignedAt   string `json:"tenant_signed_at,omitempty"`

	CancellationNoticeDate    string `json:"cancellation_notice_date,omitempty"`
	CancellationEffectiveDate string `json:"cancellation_effective_date,omitempty"`
	CancelledBy               string `json:"cancelled_by,omitempty"`
}

// Extra is a recurring charge on top of base rent (water, electricity, wifi)
type Extra struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// CurrentVersion is written by Serialize and targeted by Migrate
const CurrentVersion = 1

// ParseConfig decodes a lease_terms blob. Empty input and malformed JSON
// both yield nil; callers must treat a nil config as a legacy lease and
// fall back to the lease row's own columns.
func ParseConfig(raw string) *Config {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var cfg Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil
	}
	return &cfg
}

// Serialize encodes the config as the lease_terms blob
func (c *Config) Serialize() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return string(data)
}

// Migrate upgrades a parsed config to the current version, recomputing
// missing totals from the lease row. Safe to call on every read; a nil
// config stays nil.
func Migrate(cfg *Config, l *models.Lease) *Config {
	if cfg == nil {
		return nil
	}

	if cfg.Version >= CurrentVersion {
		return cfg
	}

	if cfg.MonthlyTotal == 0 {
		cfg.MonthlyTotal = MonthlyTotal(l.MonthlyRent, cfg.Extras)
	}
	if cfg.MoveInTotal == 0 {
		deposit := 0.0
		if cfg.DepositRequired {
			deposit = l.DepositAmount
		}
		cfg.MoveInTotal = MoveInTotal(l.MonthlyRent, deposit, cfg.Extras)
	}
	if cfg.RentDueDay == 0 {
		cfg.RentDueDay = 1
	}
	cfg.Version = CurrentVersion

	return cfg
}

// BothSigned reports whether landlord and tenant have both signed
func (c *Config) BothSigned() bool {
	return c.LandlordSigned && c.TenantSigned
}
