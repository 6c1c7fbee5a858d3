package intel

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/beespeak/honeypot/internal/rules"
)

var (
	upiPattern        = regexp.MustCompile(`\b[a-zA-Z0-9._-]{2,}@[a-zA-Z]{2,}\b`)
	phonePattern      = regexp.MustCompile(`(?:\+91[\s-]?|0[\s-]?)?[6-9]\d(?:[\s-]?\d){8}`)
	urlPattern        = regexp.MustCompile(`(?i)\bhttps?://[^\s<>()\[\]{}]+`)
	bareDomainPattern = regexp.MustCompile(`(?i)\b(?:www\.)?[a-zA-Z0-9-]+(?:\.[a-zA-Z0-9-]+)+(?:/[\w\-./?%&=+#]*)?\b`)
	bankPattern       = regexp.MustCompile(`\b\d{9,18}\b`)
	nonDigitPattern   = regexp.MustCompile(`\D`)
)

const trailingPunctuation = ".,;:!?)\"]}"

// Extractor pulls normalized scam indicators out of message text. The zero
// value matches only the rule-engine vocabulary; extra suspicious terms come
// from configuration.
type Extractor struct {
	extraTerms []string
}

// NewExtractor builds an extractor with an additional suspicious-phrase list.
func NewExtractor(extraTerms []string) *Extractor {
	return &Extractor{extraTerms: extraTerms}
}

// Extract runs every indicator rule over the conversation context plus the
// new message as a single haystack, so indicators split across turns are
// still recovered. Pure and deterministic for identical input.
func (e *Extractor) Extract(messageText, contextText string) Indicators {
	combined := strings.TrimSpace(contextText + "\n" + messageText)

	phones, phoneSpans := e.extractPhones(combined)

	return Indicators{
		BankAccounts:       e.extractBankAccounts(combined, phoneSpans),
		UPIIDs:             e.extractUPIIDs(combined),
		PhoneNumbers:       phones,
		PhishingLinks:      e.extractURLs(combined),
		SuspiciousKeywords: e.extractSuspiciousKeywords(combined),
	}
}

func (e *Extractor) extractUPIIDs(text string) []string {
	matches := upiPattern.FindAllString(text, -1)
	lowered := make([]string, 0, len(matches))
	for _, m := range matches {
		lowered = append(lowered, strings.ToLower(m))
	}
	return dedupe(lowered)
}

func (e *Extractor) extractPhones(text string) ([]string, [][]int) {
	spans := phonePattern.FindAllStringIndex(text, -1)
	phones := make([]string, 0, len(spans))
	kept := make([][]int, 0, len(spans))
	for _, span := range spans {
		// A match butted up against more digits is a slice of a longer
		// number (e.g. an account number), not a phone.
		if span[0] > 0 && isDigit(text[span[0]-1]) {
			continue
		}
		if span[1] < len(text) && isDigit(text[span[1]]) {
			continue
		}
		normalized, ok := normalizePhone(text[span[0]:span[1]])
		if !ok {
			continue
		}
		phones = append(phones, normalized)
		kept = append(kept, span)
	}
	return dedupe(phones), kept
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// normalizePhone strips separators and an optional country code or trunk
// zero, accepting only 10-digit Indian mobile numbers (leading 6-9).
func normalizePhone(raw string) (string, bool) {
	digits := nonDigitPattern.ReplaceAllString(raw, "")

	if strings.HasPrefix(digits, "91") && len(digits) == 12 {
		digits = digits[2:]
	} else if strings.HasPrefix(digits, "0") && len(digits) == 11 {
		digits = digits[1:]
	}

	if len(digits) != 10 {
		return "", false
	}
	switch digits[0] {
	case '6', '7', '8', '9':
		return "+91" + digits, true
	}
	return "", false
}

func (e *Extractor) extractURLs(text string) []string {
	var urls []string

	explicitSpans := urlPattern.FindAllStringIndex(text, -1)
	for _, span := range explicitSpans {
		urls = append(urls, normalizeURL(text[span[0]:span[1]]))
	}

	for _, span := range bareDomainPattern.FindAllStringIndex(text, -1) {
		start, end := span[0], span[1]
		if start > 0 && text[start-1] == '@' {
			continue
		}
		if end < len(text) && text[end] == '@' {
			continue
		}
		if spanInsideAny(start, end, explicitSpans) {
			continue
		}
		urls = append(urls, normalizeURL(text[start:end]))
	}

	return dedupe(urls)
}

// normalizeURL canonicalizes a link: default scheme, lowercased scheme, host
// and path, trailing path slash removed, fragment dropped, query kept.
func normalizeURL(raw string) string {
	cleaned := strings.TrimRight(strings.TrimSpace(raw), trailingPunctuation)
	lower := strings.ToLower(cleaned)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		cleaned = "http://" + cleaned
	}

	parsed, err := url.Parse(cleaned)
	if err != nil {
		return strings.ToLower(cleaned)
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Path = strings.ToLower(strings.TrimRight(parsed.Path, "/"))
	parsed.Fragment = ""

	return parsed.String()
}

func (e *Extractor) extractBankAccounts(text string, phoneSpans [][]int) []string {
	var accounts []string
	for _, span := range bankPattern.FindAllStringIndex(text, -1) {
		if spanOverlapsAny(span[0], span[1], phoneSpans) {
			continue
		}
		accounts = append(accounts, text[span[0]:span[1]])
	}
	return dedupe(accounts)
}

func (e *Extractor) extractSuspiciousKeywords(text string) []string {
	lowered := strings.ToLower(text)

	pool := append(rules.Vocabulary(), e.extraTerms...)

	var matches []string
	for _, term := range pool {
		normalized := strings.ToLower(strings.TrimSpace(term))
		if normalized == "" {
			continue
		}
		if strings.Contains(lowered, normalized) {
			matches = append(matches, normalized)
		}
	}
	return dedupe(matches)
}

func spanInsideAny(start, end int, spans [][]int) bool {
	for _, s := range spans {
		if start >= s[0] && end <= s[1] {
			return true
		}
	}
	return false
}

func spanOverlapsAny(start, end int, spans [][]int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}
