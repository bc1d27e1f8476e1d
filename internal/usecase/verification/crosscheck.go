package verification

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"underwriting-backend/internal/domain/risk"
)

const (
	StatusVerified    = "verified"
	StatusNeedsReview = "needs_review"

	incomeTolerance  = 0.10
	nameOverlapRatio = 0.7
)

type Check struct {
	Field            string `json:"field"`
	ApplicationValue string `json:"application_value"`
	DocumentValue    string `json:"document_value"`
	Severity         string `json:"severity,omitempty"`
	Message          string `json:"message,omitempty"`
}

type Report struct {
	Status     string   `json:"overall_status"`
	Matches    []Check  `json:"matches"`
	Mismatches []Check  `json:"mismatches"`
	Warnings   []string `json:"warnings"`
	Confidence float64  `json:"confidence_score"`
}

func (r *Report) match(field, appVal, docVal string) {
	r.Matches = append(r.Matches, Check{Field: field, ApplicationValue: appVal, DocumentValue: docVal})
}

func (r *Report) mismatch(field, appVal, docVal, severity, msg string) {
	r.Mismatches = append(r.Mismatches, Check{
		Field: field, ApplicationValue: appVal, DocumentValue: docVal, Severity: severity, Message: msg,
	})
	r.Status = StatusNeedsReview
}

// CrossCheck compares declared application data with extracted fields.
func CrossCheck(appData map[string]any, ex Extraction) Report {
	r := Report{Status: StatusVerified, Matches: []Check{}, Mismatches: []Check{}, Warnings: []string{}}

	switch ex.DocumentType {
	case DocIDProof:
		if app, doc, ok := pair(appData, "fullName", ex.Fields, "full_name"); ok {
			if namesMatch(app, doc) {
				r.match("Full Name", app, doc)
			} else {
				r.mismatch("Full Name", app, doc, "high", "Name on ID doesn't match application")
			}
		}
		if app, doc, ok := pair(appData, "dateOfBirth", ex.Fields, "date_of_birth"); ok {
			if app == doc {
				r.match("Date of Birth", app, doc)
			} else {
				r.mismatch("Date of Birth", app, doc, "high", "DOB mismatch between application and ID")
			}
		}

	case DocIncomeProof:
		raw, hasApp := appData["annualIncome"]
		if !hasApp {
			raw, hasApp = appData["income"]
		}
		docRaw, hasDoc := ex.Fields["annual_income"]
		if hasApp && hasDoc {
			app := risk.ToNumber(raw, 0)
			doc := risk.ToNumber(docRaw, 0)
			if app > 0 && math.Abs(app-doc)/app <= incomeTolerance {
				r.match("Annual Income", usd(app), usd(doc))
			} else {
				r.mismatch("Annual Income", usd(app), usd(doc), "medium", "Income declared doesn't match proof document")
			}
		}

	case DocVehicleRegistration:
		for _, c := range []struct{ appKey, docKey, label string }{
			{"vehicleMake", "vehicle_make", "Vehicle Make"},
			{"vehicleModel", "vehicle_model", "Vehicle Model"},
			{"vehicleYear", "vehicle_year", "Vehicle Year"},
		} {
			app, doc, ok := pair(appData, c.appKey, ex.Fields, c.docKey)
			if !ok {
				continue
			}
			if strings.EqualFold(app, doc) {
				r.match(c.label, app, doc)
			} else {
				r.mismatch(c.label, app, doc, "high", c.label+" mismatch")
			}
		}
	}

	total := len(r.Matches) + len(r.Mismatches)
	if total > 0 {
		r.Confidence = float64(len(r.Matches)) / float64(total)
	} else {
		r.Confidence = 0.5
		r.Warnings = append(r.Warnings, "No verifiable fields found in document")
	}
	return r
}

func pair(app map[string]any, appKey string, doc map[string]string, docKey string) (string, string, bool) {
	a, ok := app[appKey]
	if !ok || a == nil {
		return "", "", false
	}
	d, ok := doc[docKey]
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(stringify(a)), strings.TrimSpace(d), true
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == math.Trunc(x) {
			return fmt.Sprintf("%.0f", x)
		}
	}
	return fmt.Sprint(v)
}

// namesMatch: token overlap must reach 70% of the smaller token set.
func namesMatch(a, b string) bool {
	ta := tokenSet(a)
	tb := tokenSet(b)
	common := 0
	for t := range ta {
		if tb[t] {
			common++
		}
	}
	smaller := math.Min(float64(len(ta)), float64(len(tb)))
	return float64(common) >= smaller*nameOverlapRatio
}

func tokenSet(s string) map[string]bool {
	out := map[string]bool{}
	for _, t := range strings.Fields(strings.ToLower(strings.ReplaceAll(s, ",", ""))) {
		out[t] = true
	}
	return out
}

// usd renders 75000 as $75,000.00.
func usd(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// Summary renders a human readable verification summary.
func Summary(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Verification Status: %s\n", strings.ToUpper(r.Status))
	fmt.Fprintf(&b, "Confidence Score: %.1f%%\n", r.Confidence*100)
	fmt.Fprintf(&b, "Matches: %d | Mismatches: %d\n", len(r.Matches), len(r.Mismatches))
	if len(r.Mismatches) > 0 {
		b.WriteString("\nIssues Found:\n")
		for _, m := range r.Mismatches {
			fmt.Fprintf(&b, "  - %s: %s\n", m.Field, m.Message)
			fmt.Fprintf(&b, "    Application: %s\n", m.ApplicationValue)
			fmt.Fprintf(&b, "    Document: %s\n", m.DocumentValue)
		}
	}
	if len(r.Matches) > 0 {
		b.WriteString("\nVerified Fields:\n")
		for _, m := range r.Matches {
			fmt.Fprintf(&b, "  - %s: %s\n", m.Field, m.ApplicationValue)
		}
	}
	return b.String()
}
