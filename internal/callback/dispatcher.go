package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/beespeak/honeypot/internal/intel"
	"github.com/beespeak/honeypot/internal/observability/metrics"
	"github.com/beespeak/honeypot/internal/session"
	"github.com/beespeak/honeypot/pkg/logging"
)

// Attempt outcomes used for logging and metrics labels.
const (
	outcomeSuccess      = "success"
	outcomeNon2xx       = "non_2xx"
	outcomeNetworkError = "network_error"
	outcomeTimeout      = "timeout"
)

// idempotencyNamespace seeds deterministic per-session delivery keys, so
// retried attempts always present the same key to the receiver.
var idempotencyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("beespeak/honeypot/final-result"))

// IdempotencyKey derives the stable delivery key for a session.
func IdempotencyKey(sessionID string) string {
	return "final-result:" + uuid.NewSHA1(idempotencyNamespace, []byte(sessionID)).String()
}

// Intelligence is the callback's wire form of extracted indicators.
type Intelligence struct {
	BankAccounts       []string `json:"bankAccounts"`
	UpiIds             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// Payload is the consolidated dossier POSTed to the case-management system.
type Payload struct {
	SessionID              string       `json:"sessionId"`
	ScamDetected           bool         `json:"scamDetected"`
	TotalMessagesExchanged int          `json:"totalMessagesExchanged"`
	ExtractedIntelligence  Intelligence `json:"extractedIntelligence"`
	AgentNotes             string       `json:"agentNotes"`
}

// Config tunes delivery behavior. Zero values fall back to defaults.
type Config struct {
	URL               string
	PerAttemptTimeout time.Duration
	Deadline          time.Duration
	MaxAttempts       int
	BackoffBase       time.Duration
	MinMessages       int
}

// Dispatcher reports a session's dossier to the configured endpoint at most
// once per session, retrying transient failures with linear backoff.
type Dispatcher struct {
	cfg     Config
	store   session.Store
	client  *http.Client
	metrics *metrics.CallbackMetrics
	logger  *logging.Logger
	tracer  trace.Tracer
	now     func() time.Time

	// Each session has its own lock so the read-deliver-record sequence
	// serializes per session id; distinct sessions never contend.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDispatcher builds a dispatcher backed by the given session store.
func NewDispatcher(cfg Config, store session.Store, m *metrics.CallbackMetrics, logger *logging.Logger) *Dispatcher {
	if cfg.PerAttemptTimeout <= 0 {
		cfg.PerAttemptTimeout = 5 * time.Second
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = 20 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if cfg.MinMessages <= 0 {
		cfg.MinMessages = 3
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		cfg:     cfg,
		store:   store,
		client:  &http.Client{Timeout: cfg.PerAttemptTimeout},
		metrics: m,
		logger:  logger,
		tracer:  otel.Tracer("honeypot.internal.callback"),
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (d *Dispatcher) sessionLock(sessionID string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	lock, ok := d.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		d.locks[sessionID] = lock
	}
	return lock
}

// ShouldTrigger reports whether the completion criteria are met: scam intent
// confirmed, enough messages exchanged, and at least one indicator captured.
// It is re-evaluated on every turn.
func (d *Dispatcher) ShouldTrigger(isScam bool, indicators intel.Indicators, totalMessages int) bool {
	if !isScam {
		return false
	}
	if totalMessages < d.cfg.MinMessages {
		return false
	}
	return indicators.HasAny()
}

// SendIfNeeded delivers the dossier when the session is eligible and not yet
// reported. It returns whether a delivery succeeded during this call. A
// failed delivery is recorded in callback state, not returned as an error;
// the session stays eligible on the next turn.
func (d *Dispatcher) SendIfNeeded(ctx context.Context, sessionID string, isScam bool, indicators intel.Indicators, agentNotes string, totalMessages int) (bool, error) {
	ctx, span := d.tracer.Start(ctx, "callback.send_if_needed")
	defer span.End()

	// The whole read-deliver-record sequence holds the session lock.
	// Without it, two concurrent turns could both observe sent=false and
	// both deliver.
	lock := d.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := d.store.GetCallbackStatus(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("callback: failed to read state: %w", err)
	}
	if state.Sent {
		d.logger.Debug("final callback skipped; already sent", "session_id", sessionID)
		d.metrics.ObserveDelivery("skipped", 0)
		return false, nil
	}
	if !d.ShouldTrigger(isScam, indicators, totalMessages) {
		return false, nil
	}

	key := state.IdempotencyKey
	if key == "" {
		key = IdempotencyKey(sessionID)
	}

	payload := Payload{
		SessionID:              sessionID,
		ScamDetected:           isScam,
		TotalMessagesExchanged: totalMessages,
		ExtractedIntelligence: Intelligence{
			BankAccounts:       orEmpty(indicators.BankAccounts),
			UpiIds:             orEmpty(indicators.UPIIDs),
			PhishingLinks:      orEmpty(indicators.PhishingLinks),
			PhoneNumbers:       orEmpty(indicators.PhoneNumbers),
			SuspiciousKeywords: orEmpty(indicators.SuspiciousKeywords),
		},
		AgentNotes: agentNotes,
	}

	// Record the attempt before delivery so diagnostics survive a failure
	// mid-send.
	attemptedAt := d.now().UTC()
	attempted := "attempted"
	if _, err := d.store.UpdateCallbackStatus(ctx, sessionID, session.CallbackUpdate{
		IdempotencyKey: &key,
		LastAttemptAt:  &attemptedAt,
		LastStatus:     &attempted,
	}); err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("callback: failed to record attempt: %w", err)
	}

	start := d.now()
	success, detail := d.deliver(ctx, payload, key)
	elapsed := d.now().Sub(start).Seconds()

	if success {
		sentAt := d.now().UTC()
		sent := true
		status := "success: " + detail
		if _, err := d.store.UpdateCallbackStatus(ctx, sessionID, session.CallbackUpdate{
			Sent:       &sent,
			SentAt:     &sentAt,
			LastStatus: &status,
		}); err != nil {
			span.RecordError(err)
			return true, fmt.Errorf("callback: delivered but failed to record: %w", err)
		}
		d.metrics.ObserveDelivery("delivered", elapsed)
		d.logger.Info("final callback delivered", "session_id", sessionID, "idempotency_key", key)
		return true, nil
	}

	status := "failed: " + detail
	if _, err := d.store.UpdateCallbackStatus(ctx, sessionID, session.CallbackUpdate{
		LastStatus: &status,
	}); err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("callback: failed to record failure: %w", err)
	}
	d.metrics.ObserveDelivery("exhausted", elapsed)
	d.logger.Error("final callback failed after retries", "session_id", sessionID, "detail", detail)
	return false, nil
}

// deliver runs the bounded retry loop. The aggregate deadline caps the whole
// cycle independently of the per-attempt timeout.
func (d *Dispatcher) deliver(ctx context.Context, payload Payload, idempotencyKey string) (bool, string) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Deadline)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Sprintf("encode: %v", err)
	}

	var attempt int64
	backoff := retry.WithMaxRetries(uint64(d.cfg.MaxAttempts-1), retry.BackoffFunc(func() (time.Duration, bool) {
		n := atomic.AddInt64(&attempt, 1)
		return time.Duration(n) * d.cfg.BackoffBase, false
	}))

	var lastDetail string
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		outcome, detail := d.attemptOnce(ctx, body, idempotencyKey)
		lastDetail = detail
		d.metrics.ObserveAttempt(outcome)
		if outcome == outcomeSuccess {
			return nil
		}
		d.logger.Warn("final callback attempt failed",
			"session_id", payload.SessionID,
			"outcome", outcome,
			"detail", detail,
		)
		return retry.RetryableError(errors.New(detail))
	})
	if err != nil {
		if lastDetail == "" {
			lastDetail = err.Error()
		}
		return false, lastDetail
	}
	return true, lastDetail
}

// attemptOnce issues a single POST and classifies the outcome.
func (d *Dispatcher) attemptOnce(ctx context.Context, body []byte, idempotencyKey string) (string, string) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.PerAttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return outcomeNetworkError, fmt.Sprintf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Idempotency-Key", idempotencyKey)

	resp, err := d.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return outcomeTimeout, fmt.Sprintf("timeout: %v", err)
		}
		return outcomeNetworkError, fmt.Sprintf("network: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	detail := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, respBody)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return outcomeSuccess, detail
	}
	return outcomeNon2xx, detail
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
