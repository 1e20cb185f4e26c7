package document

import (
	"bytes"
	"html/template"
	"time"

	"township-rental-portal/internal/lease"
	"township-rental-portal/internal/models"
)

// AgreementData is everything the rendered lease agreement needs. Config
// may be nil for legacy leases; totals then fall back to the lease row.
type AgreementData struct {
	Lease    *models.Lease
	Config   *lease.Config
	Landlord *models.Profile
	Tenant   *models.Profile
	Property *models.Property
	Now      time.Time
}

var agreementTmpl = template.Must(template.New("lease_agreement").Funcs(template.FuncMap{
	"currency": lease.FormatCurrency,
	"date":     formatDate,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<title>Lease Agreement - Township Rental Portal</title>
<style>body{font-family:Georgia,serif;max-width:800px;margin:0 auto;padding:40px;line-height:1.6}h1{text-align:center;color:#ea580c}table{width:100%;border-collapse:collapse}td{padding:4px 0}.amount{text-align:right}.total{font-weight:bold;border-top:2px solid #333;padding-top:8px}.footer{text-align:center;color:#666;font-size:12px;margin-top:40px}</style>
</head>
<body>
<h1>RESIDENTIAL LEASE AGREEMENT</h1>
<p><strong>Property:</strong> <span id="property">{{.Property.Title}} - {{.Property.Address}}</span></p>
<p><strong>Landlord:</strong> <span id="landlord">{{.Landlord.FullName}}</span></p>
<p><strong>Tenant:</strong> <span id="tenant">{{.Tenant.FullName}}</span></p>
<p><strong>Term:</strong> <span id="term">{{date .Lease.StartDate}} to {{date .Lease.EndDate}}</span></p>
<h3>Monthly Payment</h3>
<table id="monthly">
<tr><td>Base Rent</td><td class="amount">{{currency .Lease.MonthlyRent}}</td></tr>
{{- range .Extras}}
<tr><td>{{.Name}}</td><td class="amount">{{currency .Amount}}</td></tr>
{{- end}}
<tr class="total"><td><strong>MONTHLY TOTAL</strong></td><td class="amount"><strong>{{currency .MonthlyTotal}}</strong></td></tr>
</table>
<h3>Move-In Cost</h3>
<table id="movein">
{{- if gt .Lease.DepositAmount 0.0}}
<tr><td>Deposit</td><td class="amount">{{currency .Lease.DepositAmount}}</td></tr>
{{- end}}
<tr><td>First Month</td><td class="amount">{{currency .MonthlyTotal}}</td></tr>
<tr class="total"><td><strong>TOTAL MOVE-IN</strong></td><td class="amount"><strong>{{currency .MoveInTotal}}</strong></td></tr>
</table>
<h3>Cancellation</h3>
<p id="cancellation">{{.NoticeDays}}+ days notice = No penalty. Less than {{.NoticeDays}} days = {{currency .CancelPenalty}} penalty.</p>
<h3>Signatures</h3>
<table id="signatures">
<tr><td>Landlord</td><td class="amount">{{if .LandlordSigned}}Signed {{.LandlordSignedAt}}{{else}}Not signed{{end}}</td></tr>
<tr><td>Tenant</td><td class="amount">{{if .TenantSigned}}Signed {{.TenantSignedAt}}{{else}}Not signed{{end}}</td></tr>
</table>
<div class="footer"><p>Township Rental Portal &copy; {{.Year}}</p></div>
</body>
</html>`))

type agreementView struct {
	Lease    *models.Lease
	Landlord *models.Profile
	Tenant   *models.Profile
	Property *models.Property

	Extras       []lease.Extra
	MonthlyTotal float64
	MoveInTotal  float64

	LandlordSigned   bool
	LandlordSignedAt string
	TenantSigned     bool
	TenantSignedAt   string

	NoticeDays    int
	CancelPenalty float64
	Year          int
}

// RenderLeaseAgreement produces the printable HTML lease agreement
func RenderLeaseAgreement(data AgreementData) (string, error) {
	view := agreementView{
		Lease:         data.Lease,
		Landlord:      data.Landlord,
		Tenant:        data.Tenant,
		Property:      data.Property,
		MonthlyTotal:  data.Lease.MonthlyRent,
		MoveInTotal:   data.Lease.MonthlyRent + data.Lease.DepositAmount,
		NoticeDays:    lease.NoticeDays,
		CancelPenalty: lease.CancelPenalty,
		Year:          data.Now.Year(),
	}

	if cfg := data.Config; cfg != nil {
		view.Extras = cfg.Extras
		if cfg.MonthlyTotal > 0 {
			view.MonthlyTotal = cfg.MonthlyTotal
		}
		if cfg.MoveInTotal > 0 {
			view.MoveInTotal = cfg.MoveInTotal
		}
		view.LandlordSigned = cfg.LandlordSigned
		view.LandlordSignedAt = formatTimestamp(cfg.LandlordSignedAt)
		view.TenantSigned = cfg.TenantSigned
		view.TenantSignedAt = formatTimestamp(cfg.TenantSignedAt)
	}

	var buf bytes.Buffer
	if err := agreementTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatDate renders a YYYY-MM-DD column value as en-ZA style DD/MM/YYYY.
// Unparseable input passes through unchanged.
func formatDate(s string) string {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}

func formatTimestamp(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}
