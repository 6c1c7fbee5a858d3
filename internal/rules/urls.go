package rules

import (
	"regexp"
	"strings"
)

var (
	urlPattern        = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>()\[\]{}]+`)
	bareDomainPattern = regexp.MustCompile(`(?i)\b[a-zA-Z0-9-]+(?:\.[a-zA-Z0-9-]+)+(?:/[\w\-./?%&=+#]*)?\b`)
)

const trailingPunctuation = ".,;:!?)\"]}"

// suspiciousURLHints flag shorteners and credential-bait wording inside a URL.
var suspiciousURLHints = []string{
	"bit.ly",
	"tinyurl",
	"verify",
	"secure",
	"update",
	"login",
}

// URLAnalysis summarizes the links found in a single message.
type URLAnalysis struct {
	HasURLs        bool     `json:"has_urls"`
	AllURLs        []string `json:"all_urls,omitempty"`
	SuspiciousURLs []string `json:"suspicious_urls,omitempty"`
}

// FindURLs returns explicit-scheme and bare-domain links in order of
// appearance. Bare domains directly adjacent to "@" are skipped so email
// addresses and payment handles are not misread as domains.
func FindURLs(text string) []string {
	var urls []string
	seen := make(map[string]struct{})

	add := func(raw string) {
		cleaned := strings.TrimRight(raw, trailingPunctuation)
		if cleaned == "" {
			return
		}
		if _, ok := seen[cleaned]; ok {
			return
		}
		seen[cleaned] = struct{}{}
		urls = append(urls, cleaned)
	}

	explicitSpans := urlPattern.FindAllStringIndex(text, -1)
	for _, span := range explicitSpans {
		add(text[span[0]:span[1]])
	}

	for _, span := range bareDomainPattern.FindAllStringIndex(text, -1) {
		start, end := span[0], span[1]
		if start > 0 && text[start-1] == '@' {
			continue
		}
		if end < len(text) && text[end] == '@' {
			continue
		}
		if insideAny(start, end, explicitSpans) {
			continue
		}
		add(text[start:end])
	}

	return urls
}

func insideAny(start, end int, spans [][]int) bool {
	for _, s := range spans {
		if start >= s[0] && end <= s[1] {
			return true
		}
	}
	return false
}

// EvaluateURLs flags links whose lowercased form contains a suspicious hint.
func EvaluateURLs(text string) URLAnalysis {
	urls := FindURLs(text)

	var suspicious []string
	for _, raw := range urls {
		lower := strings.ToLower(raw)
		for _, hint := range suspiciousURLHints {
			if strings.Contains(lower, hint) {
				suspicious = append(suspicious, raw)
				break
			}
		}
	}

	return URLAnalysis{
		HasURLs:        len(urls) > 0,
		AllURLs:        urls,
		SuspiciousURLs: suspicious,
	}
}
