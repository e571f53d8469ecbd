// internal/workers/document/classify-document/classifier.go
package classifydocument

import (
	"strings"

	"taxdoc-workers/internal/models"
)

// typeSignal is one piece of evidence for a document type. Field signals
// outweigh text and filename signals because extracted fields are already
// provider-verified.
type typeSignal struct {
	docType models.DocumentType
	weight  float64
}

var fieldSignals = map[string]typeSignal{
	"wagesAmount":             {models.DocTypeW2, 0.6},
	"federalTaxWithheld":      {models.DocTypeW2, 0.2},
	"employeeName":            {models.DocTypeW2, 0.2},
	"nonemployeeCompensation": {models.DocType1099NEC, 0.8},
	"interestIncome":          {models.DocType1099INT, 0.8},
	"mortgageInterest":        {models.DocType1098, 0.8},
}

var textSignals = []struct {
	marker  string
	docType models.DocumentType
	weight  float64
}{
	{"wage and tax statement", models.DocTypeW2, 0.5},
	{"form w-2", models.DocTypeW2, 0.5},
	{"nonemployee compensation", models.DocType1099NEC, 0.5},
	{"form 1099-nec", models.DocType1099NEC, 0.5},
	{"interest income", models.DocType1099INT, 0.4},
	{"form 1099-int", models.DocType1099INT, 0.5},
	{"mortgage interest statement", models.DocType1098, 0.5},
	{"form 1098", models.DocType1098, 0.5},
}

var filenameSignals = []struct {
	marker  string
	docType models.DocumentType
}{
	{"w-2", models.DocTypeW2},
	{"w2", models.DocTypeW2},
	{"1099-nec", models.DocType1099NEC},
	{"1099nec", models.DocType1099NEC},
	{"1099-int", models.DocType1099INT},
	{"1099int", models.DocType1099INT},
	{"1098", models.DocType1098},
}

// classify scores every known form type against the extracted fields, the
// raw OCR text, and the original filename, and returns the best candidate
// with its normalized confidence. Unknown documents come back with zero
// confidence.
func classify(input *Input) (models.DocumentType, float64) {
	scores := map[models.DocumentType]float64{}

	for field, signal := range fieldSignals {
		if value, ok := input.ExtractedData[field]; ok && value != nil {
			scores[signal.docType] += signal.weight
		}
	}

	text := strings.ToLower(input.ExtractedText)
	if text != "" {
		for _, signal := range textSignals {
			if strings.Contains(text, signal.marker) {
				scores[signal.docType] += signal.weight
			}
		}
	}

	// Filename is the weakest hint. Markers are ordered longest-first so
	// "1099-nec.pdf" does not score as a bare "1099" style match.
	name := strings.ToLower(input.FileName)
	if name != "" {
		for _, signal := range filenameSignals {
			if strings.Contains(name, signal.marker) {
				scores[signal.docType] += 0.3
				break
			}
		}
	}

	// Fixed candidate order keeps tie-breaking deterministic.
	candidates := []models.DocumentType{models.DocTypeW2, models.DocType1099NEC, models.DocType1099INT, models.DocType1098}

	best := models.DocTypeUnknown
	var bestScore float64
	for _, docType := range candidates {
		if score := scores[docType]; score > bestScore {
			best = docType
			bestScore = score
		}
	}

	if best == models.DocTypeUnknown {
		return best, 0
	}
	if bestScore > 1 {
		bestScore = 1
	}
	return best, bestScore
}
