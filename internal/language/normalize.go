package language

import (
	"context"

	"github.com/beespeak/honeypot/pkg/logging"
)

// Translator converts text in any supported language to English.
type Translator interface {
	TranslateToEnglish(ctx context.Context, text string) (string, error)
}

// Transliterator converts romanized text to its native script.
type Transliterator interface {
	ToNative(ctx context.Context, text, romanizedLang string) (string, error)
}

// Normalizer maps raw message text to English for the ML classifier. Every
// branch degrades to returning the input unchanged when a collaborator is
// missing or fails, so the pipeline always gets usable text.
type Normalizer struct {
	translator     Translator
	transliterator Transliterator
	logger         *logging.Logger

	branches map[Script]func(context.Context, string) string
}

// NewNormalizer builds the cascade. Both collaborators are optional.
func NewNormalizer(translator Translator, transliterator Transliterator, logger *logging.Logger) *Normalizer {
	if logger == nil {
		logger = logging.Default()
	}
	n := &Normalizer{
		translator:     translator,
		transliterator: transliterator,
		logger:         logger,
	}
	n.branches = map[Script]func(context.Context, string) string{
		ScriptDevanagari: n.translate,
		ScriptTamil:      n.translate,
		ScriptLatinOnly:  n.latin,
		// Mixed-script messages are translated wholesale; splitting out the
		// Latin fragments loses word order and rarely helps the classifier.
		ScriptMixed:   n.translate,
		ScriptUnknown: n.passthrough,
	}
	return n
}

// Normalize dispatches on the detected script and returns English text, or
// the input unchanged on any failure.
func (n *Normalizer) Normalize(ctx context.Context, raw string) string {
	branch, ok := n.branches[DetectScript(raw)]
	if !ok {
		return raw
	}
	return branch(ctx, raw)
}

func (n *Normalizer) passthrough(_ context.Context, text string) string {
	return text
}

func (n *Normalizer) translate(ctx context.Context, text string) string {
	if n.translator == nil {
		return text
	}
	translated, err := n.translator.TranslateToEnglish(ctx, text)
	if err != nil {
		n.logger.Warn("translation unavailable, using raw text", "error", err)
		return text
	}
	return translated
}

// latin passes real English through and routes romanized Hindi/Tamil via
// transliteration then translation.
func (n *Normalizer) latin(ctx context.Context, text string) string {
	romanized := DetectRomanized(text)
	if romanized == "" {
		return text
	}
	if n.transliterator == nil {
		return text
	}
	native, err := n.transliterator.ToNative(ctx, text, romanized)
	if err != nil {
		n.logger.Warn("transliteration unavailable, using raw text", "error", err)
		return text
	}
	return n.translate(ctx, native)
}
