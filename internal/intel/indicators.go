package intel

// Indicators holds the identifying intelligence extracted from a
// conversation, each category deduplicated in first-seen order.
type Indicators struct {
	BankAccounts       []string `json:"bank_accounts"`
	UPIIDs             []string `json:"upi_ids"`
	PhoneNumbers       []string `json:"phone_numbers"`
	PhishingLinks      []string `json:"phishing_links"`
	SuspiciousKeywords []string `json:"suspicious_keywords"`
}

// HasAny reports whether at least one category is non-empty.
func (in Indicators) HasAny() bool {
	return len(in.BankAccounts) > 0 ||
		len(in.UPIIDs) > 0 ||
		len(in.PhoneNumbers) > 0 ||
		len(in.PhishingLinks) > 0 ||
		len(in.SuspiciousKeywords) > 0
}

// Merge appends items from other that are not already present, preserving
// order. Categories only ever grow; nothing is removed.
func (in *Indicators) Merge(other Indicators) {
	in.BankAccounts = appendMissing(in.BankAccounts, other.BankAccounts)
	in.UPIIDs = appendMissing(in.UPIIDs, other.UPIIDs)
	in.PhoneNumbers = appendMissing(in.PhoneNumbers, other.PhoneNumbers)
	in.PhishingLinks = appendMissing(in.PhishingLinks, other.PhishingLinks)
	in.SuspiciousKeywords = appendMissing(in.SuspiciousKeywords, other.SuspiciousKeywords)
}

// Clone returns a deep copy so callers never share backing arrays.
func (in Indicators) Clone() Indicators {
	return Indicators{
		BankAccounts:       append([]string(nil), in.BankAccounts...),
		UPIIDs:             append([]string(nil), in.UPIIDs...),
		PhoneNumbers:       append([]string(nil), in.PhoneNumbers...),
		PhishingLinks:      append([]string(nil), in.PhishingLinks...),
		SuspiciousKeywords: append([]string(nil), in.SuspiciousKeywords...),
	}
}

func appendMissing(dst, src []string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, v := range dst {
		seen[v] = struct{}{}
	}
	for _, v := range src {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		dst = append(dst, v)
	}
	return dst
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
