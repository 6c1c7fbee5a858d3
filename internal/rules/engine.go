package rules

import "strings"

// Status reports how a message fared against the deterministic rules.
type Status string

const (
	StatusConfirmedScam Status = "CONFIRMED_SCAM"
	StatusPassToML      Status = "PASS_TO_ML"
)

// RuleConfidence is the fixed confidence assigned to rule-confirmed verdicts.
const RuleConfidence = 0.95

// Result is the rule engine's verdict for a single message.
type Result struct {
	Status          Status      `json:"status"`
	Confidence      float64     `json:"confidence,omitempty"`
	PrimaryCategory string      `json:"primary_category,omitempty"`
	MatchedKeywords []string    `json:"matched_keywords,omitempty"`
	URLs            URLAnalysis `json:"url_analysis"`
}

// Check matches a single case-normalized message against the trigger
// vocabulary and URL rules. A keyword hit or a suspicious URL confirms scam
// intent; anything else passes to the ML classifier.
func Check(text string) Result {
	matched := make(map[string][]string)
	for category, keywords := range keywordCategories {
		var hits []string
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				hits = append(hits, kw)
			}
		}
		if len(hits) > 0 {
			matched[category] = hits
		}
	}

	urlAnalysis := EvaluateURLs(text)

	if len(matched) == 0 && len(urlAnalysis.SuspiciousURLs) == 0 {
		return Result{Status: StatusPassToML, URLs: urlAnalysis}
	}

	primary := CategorySuspiciousURL
	for _, category := range categoryPriority {
		if _, ok := matched[category]; ok {
			primary = category
			break
		}
	}

	// Union of hits across categories, deduplicated, priority order.
	var allKeywords []string
	seen := make(map[string]struct{})
	for _, category := range categoryPriority {
		for _, kw := range matched[category] {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			allKeywords = append(allKeywords, kw)
		}
	}

	return Result{
		Status:          StatusConfirmedScam,
		Confidence:      RuleConfidence,
		PrimaryCategory: primary,
		MatchedKeywords: allKeywords,
		URLs:            urlAnalysis,
	}
}
