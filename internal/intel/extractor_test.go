package intel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractUPIIDs(t *testing.T) {
	e := NewExtractor(nil)
	got := e.Extract("Send to Rahul.Kumar@okICICI or rahul.kumar@okicici", "")
	require.Len(t, got.UPIIDs, 1)
	assert.Equal(t, "rahul.kumar@okicici", got.UPIIDs[0])
}

func TestPhoneNormalization(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"trunk zero", "call 09876543210", []string{"+919876543210"}},
		{"country code with spaces", "reach me at +91 98765 43210", []string{"+919876543210"}},
		{"bare ten digits", "number is 9876543210", []string{"+919876543210"}},
		{"too short", "code 12345 ok", []string{}},
	}
	e := NewExtractor(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text, "")
			assert.Equal(t, tt.want, got.PhoneNumbers)
		})
	}
}

func TestURLNormalization(t *testing.T) {
	e := NewExtractor(nil)
	got := e.Extract("visit HTTP://Example.COM/Path/ now", "")
	require.Len(t, got.PhishingLinks, 1)
	assert.Equal(t, "http://example.com/path", got.PhishingLinks[0])
}

func TestURLKeepsQueryDropsFragment(t *testing.T) {
	e := NewExtractor(nil)
	got := e.Extract("https://example.com/a?id=42#section", "")
	require.Len(t, got.PhishingLinks, 1)
	assert.Equal(t, "https://example.com/a?id=42", got.PhishingLinks[0])
}

func TestBareDomainNotMistakenForHandle(t *testing.T) {
	e := NewExtractor(nil)
	got := e.Extract("pay rahul@okicici and visit example.com", "")
	require.Len(t, got.UPIIDs, 1)
	require.Len(t, got.PhishingLinks, 1)
	assert.Equal(t, "http://example.com", got.PhishingLinks[0])
}

func TestBareDomainInsideExplicitURLNotDuplicated(t *testing.T) {
	e := NewExtractor(nil)
	got := e.Extract("go to https://example.com/login", "")
	assert.Len(t, got.PhishingLinks, 1)
}

func TestBankAccounts(t *testing.T) {
	e := NewExtractor(nil)
	got := e.Extract("transfer to account 123456789012345", "")
	require.Len(t, got.BankAccounts, 1)
	assert.Equal(t, "123456789012345", got.BankAccounts[0])
}

func TestBankAccountsExcludePhoneMatches(t *testing.T) {
	e := NewExtractor(nil)
	got := e.Extract("call 9876543210 or wire to 123456789012345", "")
	assert.Equal(t, []string{"+919876543210"}, got.PhoneNumbers)
	assert.Equal(t, []string{"123456789012345"}, got.BankAccounts)
}

func TestSuspiciousKeywords(t *testing.T) {
	e := NewExtractor([]string{"otp", "kyc"})
	got := e.Extract("Share the OTP urgently for KYC", "")
	assert.Contains(t, got.SuspiciousKeywords, "otp")
	assert.Contains(t, got.SuspiciousKeywords, "kyc")
	assert.Contains(t, got.SuspiciousKeywords, "urgent")
}

func TestExtractUsesConversationContext(t *testing.T) {
	e := NewExtractor(nil)
	got := e.Extract("ok will do", "scammer: pay to rahul@okaxis\nuser: why?")
	require.Len(t, got.UPIIDs, 1)
	assert.Equal(t, "rahul@okaxis", got.UPIIDs[0])
}

func TestExtractDeterministic(t *testing.T) {
	e := NewExtractor([]string{"otp"})
	text := "urgent: send otp to 9876543210 and rahul@okhdfc via http://bit.ly/x"
	first := e.Extract(text, "")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Extract(text, ""))
	}
}

func TestIndicatorsMergeMonotonic(t *testing.T) {
	base := Indicators{PhoneNumbers: []string{"+919876543210"}}
	base.Merge(Indicators{
		PhoneNumbers: []string{"+919876543210", "+918765432109"},
		UPIIDs:       []string{"a@okbank"},
	})
	assert.Equal(t, []string{"+919876543210", "+918765432109"}, base.PhoneNumbers)
	assert.Equal(t, []string{"a@okbank"}, base.UPIIDs)

	// merging again with the same input changes nothing
	snapshot := base.Clone()
	base.Merge(snapshot)
	assert.Equal(t, snapshot, base)
}

func TestIndicatorsHasAny(t *testing.T) {
	assert.False(t, Indicators{}.HasAny())
	assert.True(t, Indicators{SuspiciousKeywords: []string{"otp"}}.HasAny())
}
