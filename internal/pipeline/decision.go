package pipeline

import (
	"strings"

	"github.com/beespeak/honeypot/internal/classify"
	"github.com/beespeak/honeypot/internal/intel"
	"github.com/beespeak/honeypot/internal/rules"
)

// Decision sources reported to callers.
const (
	SourceRule = "rule"
	SourceML   = "ml"
)

// CategoryMLDetected labels verdicts that came from the classifier rather
// than a rule category.
const CategoryMLDetected = "ML_DETECTED"

// Decision is the fused verdict for one message.
type Decision struct {
	IsScam     bool
	Source     string
	Confidence float64
	Category   string
	Keywords   []string
}

// Decide fuses the rule verdict with the optional ML score. Rules are
// authoritative: a confirmed rule hit short-circuits the classifier entirely.
// An absent ML result (nil) means the classifier was skipped or unavailable
// and the message is treated as benign this turn.
func Decide(rule rules.Result, ml *classify.Result, threshold float64) Decision {
	if rule.Status == rules.StatusConfirmedScam {
		return Decision{
			IsScam:     true,
			Source:     SourceRule,
			Confidence: rule.Confidence,
			Category:   rule.PrimaryCategory,
			Keywords:   rule.MatchedKeywords,
		}
	}

	if ml != nil && ml.ScamProbability >= threshold {
		return Decision{
			IsScam:     true,
			Source:     SourceML,
			Confidence: ml.ScamProbability,
			Category:   CategoryMLDetected,
		}
	}

	d := Decision{IsScam: false, Source: SourceML}
	if ml != nil {
		d.Confidence = ml.ScamProbability
	}
	return d
}

// buildAgentNotes summarizes what the turn established, for the response and
// the final dossier.
func buildAgentNotes(isScam bool, indicators intel.Indicators) string {
	var notes []string
	if isScam {
		notes = append(notes, "Scam intent detected")
	}
	if len(indicators.UPIIDs) > 0 {
		notes = append(notes, "UPI ID captured")
	}
	if len(indicators.BankAccounts) > 0 {
		notes = append(notes, "Bank account number captured")
	}
	if len(indicators.PhoneNumbers) > 0 {
		notes = append(notes, "Phone number extracted")
	}
	if len(indicators.PhishingLinks) > 0 {
		notes = append(notes, "Phishing link observed")
	}
	if len(indicators.SuspiciousKeywords) > 0 {
		notes = append(notes, "Suspicious language present")
	}
	return strings.Join(notes, "; ")
}
