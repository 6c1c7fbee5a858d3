package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/beespeak/honeypot/pkg/logging"
)

// Result carries the classifier's score for a single message.
type Result struct {
	ScamProbability float64 `json:"scam_probability"`
}

// Classifier scores normalized text for scam likelihood. The language code
// is whatever the caller reported for the conversation.
type Classifier interface {
	Predict(ctx context.Context, text, language string) (Result, error)
}

// HTTPClassifier calls an external scoring service over HTTP. Any transport
// or decoding failure is returned as an error; the caller decides how to
// degrade.
type HTTPClassifier struct {
	url    string
	client *http.Client
	logger *logging.Logger
}

// NewHTTPClassifier builds a classifier client against the given URL.
func NewHTTPClassifier(url string, timeout time.Duration, logger *logging.Logger) *HTTPClassifier {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &HTTPClassifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type predictRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// Predict posts the text to the scoring service and returns its probability.
func (c *HTTPClassifier) Predict(ctx context.Context, text, language string) (Result, error) {
	ctx, span := otel.Tracer("honeypot.internal.classify").Start(ctx, "classify.Predict")
	defer span.End()

	body, err := json.Marshal(predictRequest{Text: text, Language: language})
	if err != nil {
		return Result{}, fmt.Errorf("encode classifier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "classifier request failed")
		return Result{}, fmt.Errorf("classifier request: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return Result{}, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("decode classifier response: %w", err)
	}
	if out.ScamProbability < 0 || out.ScamProbability > 1 {
		return Result{}, fmt.Errorf("classifier probability %v out of range", out.ScamProbability)
	}
	return out, nil
}
