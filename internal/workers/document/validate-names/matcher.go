// internal/workers/document/validate-names/matcher.go
package validatenames

import (
	"math"
	"regexp"
	"strings"
)

var (
	nonAlphaPattern   = regexp.MustCompile(`[^a-z\s]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// extractNames pulls candidate person names out of the extraction output.
// The employer name is a weak proxy for the employee identity, so it is
// considered only when no employee name came back. Malformed input yields an
// empty list, never an error.
func extractNames(extractedData map[string]interface{}) []string {
	names := []string{}
	if extractedData == nil {
		return names
	}

	employee := stringField(extractedData, "employeeName")
	if employee != "" {
		names = append(names, employee)
	}
	if recipient := stringField(extractedData, "recipientName"); recipient != "" {
		names = append(names, recipient)
	}
	if employee == "" {
		if employer := stringField(extractedData, "employerName"); employer != "" {
			names = append(names, employer)
		}
	}

	return names
}

func stringField(data map[string]interface{}, key string) string {
	if val, ok := data[key].(string); ok {
		return strings.TrimSpace(val)
	}
	return ""
}

// buildProfileNames assembles at most two full names from the profile.
// Index 0 is always the primary taxpayer, index 1 the spouse. A spouse with
// no recorded surname takes the filer's (shared surname on joint filings).
func buildProfileNames(profile *Profile) []string {
	names := []string{}
	if profile == nil {
		return names
	}

	primary := strings.TrimSpace(strings.TrimSpace(profile.FirstName) + " " + strings.TrimSpace(profile.LastName))
	if primary != "" {
		names = append(names, primary)
	}

	spouseLast := strings.TrimSpace(profile.SpouseLastName)
	if spouseLast == "" && strings.TrimSpace(profile.SpouseFirstName) != "" {
		spouseLast = strings.TrimSpace(profile.LastName)
	}
	spouse := strings.TrimSpace(strings.TrimSpace(profile.SpouseFirstName) + " " + spouseLast)
	if spouse != "" {
		names = append(names, spouse)
	}

	return names
}

// normalizeName lowercases, strips everything outside the Latin alphabet and
// whitespace, and collapses whitespace runs.
func normalizeName(name string) string {
	normalized := strings.ToLower(name)
	normalized = nonAlphaPattern.ReplaceAllString(normalized, "")
	normalized = whitespacePattern.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// nameTokens splits a normalized name, discarding tokens of length <= 1 to
// filter stray initials.
func nameTokens(normalized string) []string {
	tokens := []string{}
	for _, tok := range strings.Fields(normalized) {
		if len(tok) > 1 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// compareNames scores the similarity of two names on a 0-100 scale.
// Matching parts: first tokens +1, last tokens +1 when both names have more
// than one token, and +0.5 for every equal middle-token pair. The score is
// the part count over the shorter token count.
func compareNames(a, b string) MatchResult {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return MatchResult{Score: 0, Reason: "empty comparison"}
	}

	na := normalizeName(a)
	nb := normalizeName(b)
	if na == "" || nb == "" {
		return MatchResult{Score: 0, Reason: "empty comparison"}
	}

	if na == nb {
		return MatchResult{Score: 100, Reason: "exact match"}
	}

	tokensA := nameTokens(na)
	tokensB := nameTokens(nb)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return MatchResult{Score: 0, Reason: "no valid name parts"}
	}

	matchingParts := 0.0
	if tokensA[0] == tokensB[0] {
		matchingParts++
	}
	if len(tokensA) > 1 && len(tokensB) > 1 && tokensA[len(tokensA)-1] == tokensB[len(tokensB)-1] {
		matchingParts++
	}
	for _, ma := range middleTokens(tokensA) {
		for _, mb := range middleTokens(tokensB) {
			if ma == mb {
				matchingParts += 0.5
			}
		}
	}

	minLen := len(tokensA)
	if len(tokensB) < minLen {
		minLen = len(tokensB)
	}

	score := int(math.Round(matchingParts / float64(minLen) * 100))
	if score > 100 {
		score = 100
	}

	return MatchResult{Score: score, Reason: scoreReason(score)}
}

func middleTokens(tokens []string) []string {
	if len(tokens) <= 2 {
		return nil
	}
	return tokens[1 : len(tokens)-1]
}

func scoreReason(score int) string {
	switch {
	case score >= 90:
		return "strong match"
	case score >= 70:
		return "good match"
	case score >= 50:
		return "partial match"
	case score >= 30:
		return "weak match"
	default:
		return "no match"
	}
}

// validateNames finds the best-scoring (document name, profile name) pair.
// Ties keep the first-found pair: earliest document name, then the primary
// slot over the spouse.
func validateNames(profile *Profile, documentNames []string) *Output {
	if len(documentNames) == 0 {
		return &Output{
			IsValid:       false,
			Score:         0,
			Reason:        "no names found in document",
			DocumentNames: []string{},
			ProfileNames:  buildProfileNames(profile),
		}
	}

	profileNames := buildProfileNames(profile)
	if len(profileNames) == 0 {
		return &Output{
			IsValid:       false,
			Score:         0,
			Reason:        "no names in profile",
			DocumentNames: documentNames,
			ProfileNames:  []string{},
		}
	}

	bestScore := -1
	bestReason := "no match"
	bestProfileIdx := 0
	bestDocName := ""
	bestProfileName := ""

	for _, docName := range documentNames {
		for idx, profileName := range profileNames {
			result := compareNames(docName, profileName)
			if result.Score > bestScore {
				bestScore = result.Score
				bestReason = result.Reason
				bestProfileIdx = idx
				bestDocName = docName
				bestProfileName = profileName
			}
		}
	}

	return &Output{
		IsValid:             bestScore >= 70,
		Score:               bestScore,
		Reason:              bestReason,
		PrimaryMatch:        bestProfileIdx == 0,
		SpouseMatch:         bestProfileIdx == 1,
		MatchedDocumentName: bestDocName,
		MatchedProfileName:  bestProfileName,
		DocumentNames:       documentNames,
		ProfileNames:        profileNames,
	}
}
