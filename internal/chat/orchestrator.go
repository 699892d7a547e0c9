package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/commercekit/shopchat/config"
	"github.com/commercekit/shopchat/internal/knowledge"
	"github.com/commercekit/shopchat/internal/metrics"
	"github.com/commercekit/shopchat/internal/session"
	"github.com/commercekit/shopchat/models"
	"github.com/commercekit/shopchat/provider"
)

// Generator is the stateful response-generation backend. Converse sends a
// composed prompt plus the continuation handle from the previous turn (empty
// for a fresh conversation) and returns the answer and the handle to continue
// from next time.
type Generator interface {
	Converse(ctx context.Context, prompt string, handle string) (answer string, newHandle string, err error)
}

// Orchestrator walks each inbound message through the conversation state
// machine. All collaborators are injected; none are constructed here.
type Orchestrator struct {
	cfg      config.ChatConfig
	logger   *log.Logger
	llm      provider.Provider
	gen      Generator
	sessions session.Store
	sources  []knowledge.Source
	order    []string
	metrics  *metrics.Metrics
}

var chatTracer trace.Tracer = otel.Tracer("shopchat/internal/chat")

// NewOrchestrator creates the orchestrator. Source order fixes the order of
// context blocks in generation prompts.
func NewOrchestrator(cfg config.ChatConfig, logger *log.Logger, llm provider.Provider, gen Generator, sessions session.Store, sources []knowledge.Source, m *metrics.Metrics) *Orchestrator {
	order := make([]string, 0, len(sources))
	for _, src := range sources {
		order = append(order, src.Name())
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[CHAT] ", log.LstdFlags)
	}
	return &Orchestrator{
		cfg:      cfg,
		logger:   logger,
		llm:      llm,
		gen:      gen,
		sessions: sessions,
		sources:  sources,
		order:    order,
		metrics:  m,
	}
}

// Process handles one chat turn end-to-end and returns the response text.
// Internal failures never surface as errors: every stage degrades to a
// best-effort textual answer.
func (o *Orchestrator) Process(ctx context.Context, userID, message string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id required")
	}
	if strings.TrimSpace(message) == "" {
		return "", errors.New("message required")
	}

	startTime := time.Now()
	ctx, span := chatTracer.Start(ctx, "chat.process",
		trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	turn := &TurnState{
		ID:      uuid.NewString(),
		UserID:  userID,
		Query:   message,
		Context: make(KnowledgeContext),
		Notes:   make(map[string]string),
	}
	span.SetAttributes(attribute.String("turn.id", turn.ID))

	// Start: load the trailing history window for classification; the same
	// window feeds the generation prompt later.
	sess, err := o.sessions.Get(ctx, userID)
	if err != nil {
		turn.Notes["session"] = err.Error()
		o.logger.Printf("turn %s: session load failed: %v", turn.ID, err)
		sess = session.Session{}
	}
	turn.History = sess.Window(o.cfg.ClassifyWindow)

	outcome := metrics.OutcomeAnswered
	state := StateClassify
	for state != StateEnd {
		switch state {
		case StateClassify:
			o.classify(ctx, turn)
			state = route(turn.Classification)
		case StateRetrieve:
			o.retrieve(ctx, turn)
			state = StateGenerate
		case StateGenerate:
			if !o.generate(ctx, turn, &sess) {
				outcome = metrics.OutcomeApology
			}
			state = StateEnd
		case StateReject:
			o.reject(ctx, turn)
			outcome = metrics.OutcomeRejected
			state = StateEnd
		}
	}

	// End: append the exchange and persist, whichever branch produced the
	// answer. A cancelled request must not write a partial session.
	if ctx.Err() != nil {
		span.SetStatus(codes.Error, ctx.Err().Error())
		return turn.Answer, ctx.Err()
	}
	sess.Append(models.Exchange{Message: turn.Query, Response: turn.Answer}, o.cfg.HistoryLimit)
	if err := o.sessions.Save(ctx, userID, sess); err != nil {
		turn.Notes["persist"] = err.Error()
		o.logger.Printf("turn %s: session save failed: %v", turn.ID, err)
	}

	if o.metrics != nil {
		o.metrics.ChatRequests.WithLabelValues(outcome).Inc()
		o.metrics.TurnDuration.Observe(time.Since(startTime).Seconds())
	}
	if len(turn.Notes) > 0 {
		o.logger.Printf("turn %s: degraded stages: %v", turn.ID, turn.Notes)
	}
	return turn.Answer, nil
}

// classify runs the combined domain/follow-up/language judgment. Any failure
// fails open: treat the query as a fresh, in-domain, default-language question
// rather than blocking the user. No retry; the default is the retry.
func (o *Orchestrator) classify(ctx context.Context, turn *TurnState) {
	ctx, span := chatTracer.Start(ctx, "chat.classify")
	defer span.End()

	turn.RetrievalQuery = turn.Query
	result, err := o.llm.Classify(ctx, turn.Query, turn.History)
	if err != nil {
		span.RecordError(err)
		turn.Notes["classify"] = err.Error()
		turn.Classification = models.ClassificationResult{
			Language:    o.cfg.DefaultLanguage,
			IsFollowUp:  false,
			IsEcommerce: true,
			Reason:      "classification failed, fail-open",
		}
		return
	}
	turn.Classification = result

	// Non-default languages get a normalized retrieval query; generation still
	// answers in the detected language.
	if !o.isDefaultLanguage(result.Language) {
		translated, err := o.llm.Translate(ctx, turn.Query, o.cfg.DefaultLanguage)
		if err != nil {
			span.RecordError(err)
			turn.Notes["translate"] = err.Error()
			return
		}
		turn.RetrievalQuery = translated
	}
}

// retrieve fans out to every configured source. Sources are independent
// side-effect-free reads, so they run concurrently under a per-source timeout;
// one failing or slow source never blocks the rest.
func (o *Orchestrator) retrieve(ctx context.Context, turn *TurnState) {
	ctx, span := chatTracer.Start(ctx, "chat.retrieve",
		trace.WithAttributes(attribute.Int("sources.count", len(o.sources))))
	defer span.End()

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, src := range o.sources {
		wg.Add(1)
		go func(src knowledge.Source) {
			defer wg.Done()
			srcCtx, cancel := context.WithTimeout(ctx, o.cfg.SourceTimeout)
			defer cancel()

			hits, err := src.Search(srcCtx, turn.RetrievalQuery, o.cfg.ResultCap)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				turn.Notes["source:"+src.Name()] = err.Error()
				if o.metrics != nil {
					o.metrics.SourceFailures.WithLabelValues(src.Name()).Inc()
				}
				return
			}
			if len(hits) == 0 {
				// queried, nothing relevant: no key at all
				return
			}
			snippets := make([]string, 0, len(hits))
			for _, h := range hits {
				snippets = append(snippets, h.Text)
			}
			turn.Context[src.Name()] = snippets
		}(src)
	}
	wg.Wait()
	span.SetAttributes(attribute.Int("sources.with_results", len(turn.Context)))
}

// generate composes the prompt and calls the generation backend. Returns false
// when the backend failed and the apology was substituted; the continuation
// handle is left untouched in that case.
func (o *Orchestrator) generate(ctx context.Context, turn *TurnState, sess *session.Session) bool {
	ctx, span := chatTracer.Start(ctx, "chat.generate")
	defer span.End()

	prompt := composePrompt(turn.History, turn.Context, o.order, turn.Query, turn.Classification.Language)
	answer, newHandle, err := o.gen.Converse(ctx, prompt, sess.ContinuationHandle)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		turn.Notes["generate"] = err.Error()
		turn.Answer = o.cfg.ApologyMessage
		return false
	}
	turn.Answer = answer
	if newHandle != "" {
		sess.ContinuationHandle = newHandle
	}
	return true
}

// reject produces the fixed domain-rejection message, localized when the query
// was in a non-default language. Translation failure falls back to the
// canonical text verbatim.
func (o *Orchestrator) reject(ctx context.Context, turn *TurnState) {
	ctx, span := chatTracer.Start(ctx, "chat.reject")
	defer span.End()

	turn.Answer = o.cfg.RejectionMessage
	if o.isDefaultLanguage(turn.Classification.Language) {
		return
	}
	translated, err := o.llm.Translate(ctx, o.cfg.RejectionMessage, turn.Classification.Language)
	if err != nil {
		span.RecordError(err)
		turn.Notes["reject-translate"] = err.Error()
		return
	}
	turn.Answer = translated
}

func (o *Orchestrator) isDefaultLanguage(lang string) bool {
	return lang == "" || strings.EqualFold(lang, o.cfg.DefaultLanguage)
}
