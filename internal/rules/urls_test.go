package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindURLsExplicitScheme(t *testing.T) {
	urls := FindURLs("visit https://example.com/offer today")
	require.Len(t, urls, 1)
	assert.Equal(t, "https://example.com/offer", urls[0])
}

func TestFindURLsBareDomain(t *testing.T) {
	urls := FindURLs("go to example.com now")
	require.Len(t, urls, 1)
	assert.Equal(t, "example.com", urls[0])
}

func TestFindURLsSkipsHandles(t *testing.T) {
	// "user@okbank.com"-style tokens are handles, not links.
	urls := FindURLs("pay me at rahul@okicici.in please")
	assert.Empty(t, urls)
}

func TestFindURLsStripsTrailingPunctuation(t *testing.T) {
	urls := FindURLs("click http://bit.ly/abc!")
	require.Len(t, urls, 1)
	assert.Equal(t, "http://bit.ly/abc", urls[0])
}

func TestFindURLsKeepsApostropheInPath(t *testing.T) {
	// Only .,;:!?)"]} are stripped; an apostrophe is part of the path.
	urls := FindURLs("see http://example.com/o'clock now")
	require.Len(t, urls, 1)
	assert.Equal(t, "http://example.com/o'clock", urls[0])
}

func TestEvaluateURLsSuspicion(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		suspicious bool
	}{
		{"shortener", "http://bit.ly/x", true},
		{"tinyurl", "see tinyurl.com/claim", true},
		{"verify hint", "https://secure-verify.example.com", true},
		{"login hint", "http://example.com/login", true},
		{"benign", "https://example.com/about", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := EvaluateURLs(tt.text)
			assert.True(t, analysis.HasURLs)
			if tt.suspicious {
				assert.NotEmpty(t, analysis.SuspiciousURLs)
			} else {
				assert.Empty(t, analysis.SuspiciousURLs)
			}
		})
	}
}

func TestEvaluateURLsNoURLs(t *testing.T) {
	analysis := EvaluateURLs("no links here")
	assert.False(t, analysis.HasURLs)
	assert.Empty(t, analysis.AllURLs)
}
