package rules

// Scam categories recognized by the rule engine.
const (
	CategoryAccountThreat  = "ACCOUNT_THREAT"
	CategoryPaymentRequest = "PAYMENT_REQUEST"
	CategoryUrgency        = "URGENCY"

	// CategorySuspiciousURL is assigned when a suspicious link is the only signal.
	CategorySuspiciousURL = "SUSPICIOUS_URL"
)

// categoryPriority breaks ties when several categories match the same message.
var categoryPriority = []string{
	CategoryAccountThreat,
	CategoryPaymentRequest,
	CategoryUrgency,
}

// keywordCategories maps each category to its literal trigger phrases.
// Matching is substring containment against lowercased text, so triggers
// also hit inside longer words.
var keywordCategories = map[string][]string{
	CategoryAccountThreat: {
		"account will be blocked",
		"account suspended",
		"account suspension",
	},
	CategoryUrgency: {
		"verify immediately",
		"urgent",
		"verify now",
		"immediately",
	},
	CategoryPaymentRequest: {
		"share your upi",
		"send money",
		"pay now",
	},
}

// Vocabulary returns every trigger phrase across all categories, in priority
// order. The entity extractor reuses it as part of its suspicious-phrase pool.
func Vocabulary() []string {
	var out []string
	for _, category := range categoryPriority {
		out = append(out, keywordCategories[category]...)
	}
	return out
}
