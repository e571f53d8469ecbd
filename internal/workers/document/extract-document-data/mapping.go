// internal/workers/document/extract-document-data/mapping.go
package extractdocumentdata

import (
	"strings"

	"taxdoc-workers/internal/common/providers"
)

// canonicalFieldMap is the single source of truth for turning provider
// entity types into the camelCase keys the rest of the pipeline consumes.
// Both providers' spellings funnel through here.
var canonicalFieldMap = map[string]string{
	"employee_name":               "employeeName",
	"employeename":                "employeeName",
	"recipient_name":              "recipientName",
	"recipientname":               "recipientName",
	"employer_name":               "employerName",
	"employername":                "employerName",
	"payer_name":                  "employerName",
	"wages":                       "wagesAmount",
	"wages_amount":                "wagesAmount",
	"wagesamount":                 "wagesAmount",
	"federal_income_tax_withheld": "federalTaxWithheld",
	"federal_tax_withheld":        "federalTaxWithheld",
	"federaltaxwithheld":          "federalTaxWithheld",
	"state_tax_withheld":          "stateTaxWithheld",
	"nonemployee_compensation":    "nonemployeeCompensation",
	"interest_income":             "interestIncome",
	"mortgage_interest":           "mortgageInterest",
	"employee_ssn":                "ssn",
	"ssn":                         "ssn",
	"employer_ein":                "ein",
	"ein":                         "ein",
	"tax_year":                    "taxYear",
	"taxyear":                     "taxYear",
}

// canonicalFields maps extracted entities onto canonical keys and computes
// the mean confidence across mapped entities. When a key repeats, the higher
// confidence mention wins.
func canonicalFields(entities []providers.Entity) (map[string]interface{}, float64) {
	fields := map[string]interface{}{}
	best := map[string]float64{}

	var sum float64
	var count int

	for _, e := range entities {
		key, ok := canonicalFieldMap[strings.ToLower(strings.TrimSpace(e.Type))]
		if !ok {
			continue
		}

		text := strings.TrimSpace(e.MentionText)
		if text == "" {
			continue
		}

		sum += e.Confidence
		count++

		if prev, seen := best[key]; seen && prev >= e.Confidence {
			continue
		}
		best[key] = e.Confidence
		fields[key] = text
	}

	if count == 0 {
		return fields, 0
	}
	return fields, sum / float64(count)
}

var supportedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/tiff":      true,
}
