package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/beespeak/honeypot/internal/classify"
	"github.com/beespeak/honeypot/internal/history"
	"github.com/beespeak/honeypot/internal/intel"
	"github.com/beespeak/honeypot/internal/observability/metrics"
	"github.com/beespeak/honeypot/internal/rules"
	"github.com/beespeak/honeypot/internal/session"
	"github.com/beespeak/honeypot/pkg/logging"
)

// Normalizer maps raw message text to English before classification.
type Normalizer interface {
	Normalize(ctx context.Context, raw string) string
}

// ReplyGenerator produces the honeypot persona's next reply, "" on failure.
type ReplyGenerator interface {
	Reply(ctx context.Context, conversation []history.Message, latest history.Message) string
}

// CallbackDispatcher reports a session's dossier when it becomes eligible.
type CallbackDispatcher interface {
	SendIfNeeded(ctx context.Context, sessionID string, isScam bool, indicators intel.Indicators, agentNotes string, totalMessages int) (bool, error)
}

// Options carries the optional collaborators and tuning for a Service.
type Options struct {
	Classifier classify.Classifier
	Normalizer Normalizer
	Replies    ReplyGenerator
	Dispatcher CallbackDispatcher
	Metrics    *metrics.PipelineMetrics
	Logger     *logging.Logger

	// MLScamThreshold is the minimum classifier probability treated as scam.
	MLScamThreshold float64
	// ExtraSuspiciousTerms extends the extractor's keyword vocabulary.
	ExtraSuspiciousTerms []string
	// SyncDispatch runs the final callback inline instead of in the
	// background. Deterministic mode for tests.
	SyncDispatch bool
	// DispatchTimeout bounds a background dispatch run.
	DispatchTimeout time.Duration
}

// Service runs the full per-message pipeline: history merge, rule check,
// optional ML classification, entity extraction, session aggregation, final
// callback dispatch, and reply generation.
type Service struct {
	sessions  session.Store
	histories history.Store
	extractor *intel.Extractor
	opts      Options
	logger    *logging.Logger
	tracer    trace.Tracer
}

// NewService wires the pipeline. Sessions and histories are required; every
// collaborator in opts may be nil, in which case its stage degrades.
func NewService(sessions session.Store, histories history.Store, opts Options) *Service {
	if opts.MLScamThreshold <= 0 {
		opts.MLScamThreshold = 0.70
	}
	if opts.DispatchTimeout <= 0 {
		opts.DispatchTimeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		sessions:  sessions,
		histories: histories,
		extractor: intel.NewExtractor(opts.ExtraSuspiciousTerms),
		opts:      opts,
		logger:    logger,
		tracer:    otel.Tracer("honeypot.internal.pipeline"),
	}
}

// Process runs one turn. Validation failures return *ValidationError; any
// other error means the session store failed and the turn was not recorded.
func (s *Service) Process(ctx context.Context, req Request) (Response, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.process")
	defer span.End()

	start := time.Now()

	if err := req.Validate(); err != nil {
		return Response{}, err
	}

	sessionID := strings.TrimSpace(req.SessionID)
	logger := s.logger.WithSession(sessionID)
	span.SetAttributes(attribute.String("session.id", sessionID))

	incoming := req.Message.toHistory()

	// Stored history is merged with whatever the caller re-sent; the merge is
	// idempotent so replayed payloads cannot duplicate turns.
	stored, err := s.histories.Load(ctx, sessionID)
	if err != nil {
		logger.Warn("history load failed, continuing with request history only", "error", err)
		stored = nil
	}
	submitted := make([]history.Message, 0, len(req.ConversationHistory))
	for _, msg := range req.ConversationHistory {
		submitted = append(submitted, msg.toHistory())
	}
	merged := history.Merge(stored, submitted)

	ruleResult := rules.Check(strings.ToLower(strings.TrimSpace(incoming.Text)))
	span.SetAttributes(attribute.String("rules.status", string(ruleResult.Status)))

	// The classifier only runs when rules did not already confirm; its
	// absence or failure degrades to a benign verdict for this turn.
	var mlResult *classify.Result
	if ruleResult.Status == rules.StatusPassToML && s.opts.Classifier != nil {
		text := incoming.Text
		if s.opts.Normalizer != nil {
			text = s.opts.Normalizer.Normalize(ctx, text)
		}
		if res, err := s.opts.Classifier.Predict(ctx, text, req.Metadata.Language); err != nil {
			logger.Warn("classifier unavailable, treating turn as benign", "error", err)
		} else {
			mlResult = &res
		}
	}

	decision := Decide(ruleResult, mlResult, s.opts.MLScamThreshold)

	// Extraction sees the new message plus everything said before it, so an
	// entity mentioned in any earlier turn stays in the dossier.
	entities := s.extractor.Extract(incoming.Text, history.ContextText(merged))

	updated := history.Merge(merged, []history.Message{incoming})
	if err := s.histories.Replace(ctx, sessionID, updated); err != nil {
		logger.Warn("history persist failed", "error", err)
	}

	state, err := s.sessions.StoreTurn(ctx, sessionID, req.Metadata, decision.Confidence, decision.IsScam, entities)
	if err != nil {
		span.RecordError(err)
		return Response{}, fmt.Errorf("pipeline: store turn: %w", err)
	}

	notes := buildAgentNotes(state.LatestScamDetected, state.Indicators)

	s.dispatch(ctx, logger, sessionID, state, notes, len(updated))

	var reply string
	if s.opts.Replies != nil {
		reply = s.opts.Replies.Reply(ctx, merged, incoming)
	}

	resp := Response{
		SessionID:         sessionID,
		IsScam:            decision.IsScam,
		DecisionSource:    decision.Source,
		ConfidenceScore:   decision.Confidence,
		ExtractedEntities: state.Indicators,
		SessionContext: SessionContext{
			Channel:  state.Channel,
			Language: state.Language,
			Locale:   state.Locale,
		},
		AgentNotes: notes,
		Reply:      reply,
	}
	if decision.Category != "" {
		category := decision.Category
		resp.Category = &category
	}

	s.opts.Metrics.ObserveMessage(decision.Source, decision.IsScam)
	s.opts.Metrics.ObserveLatency(state.Channel, time.Since(start).Seconds())
	logger.Info("message processed",
		"is_scam", decision.IsScam,
		"decision_source", decision.Source,
		"turn_count", state.TurnCount,
	)
	return resp, nil
}

// dispatch hands the dossier to the callback dispatcher. By default it runs
// in the background with its own deadline so a slow endpoint never stalls
// the caller's response.
func (s *Service) dispatch(ctx context.Context, logger *logging.Logger, sessionID string, state session.State, notes string, totalMessages int) {
	if s.opts.Dispatcher == nil {
		return
	}

	run := func(ctx context.Context) {
		if _, err := s.opts.Dispatcher.SendIfNeeded(ctx, sessionID, state.LatestScamDetected, state.Indicators, notes, totalMessages); err != nil {
			logger.Error("final callback dispatch failed", "error", err)
		}
	}

	if s.opts.SyncDispatch {
		run(ctx)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.DispatchTimeout)
		defer cancel()
		run(ctx)
	}()
}
