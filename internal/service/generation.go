package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/Rrens/slidecraft/internal/llm"
	"github.com/Rrens/slidecraft/internal/quota"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultTone       = domain.ToneProfessional
	defaultSlideCount = 10
)

var defaultFocusAreas = []domain.FocusArea{
	domain.FocusClarity,
	domain.FocusDesign,
	domain.FocusSpeakerNotes,
}

var validate = validator.New()

// GenerationService runs create and improve workflows: quota check,
// inference, payload decoding and ledger charge
type GenerationService struct {
	llmRouter *llm.Router
	stores    Stores
	policy    quota.Policy
	genLog    domain.GenerationLog
	locks     *OwnerLocks
	now       func() time.Time
}

// NewGenerationService creates a new generation service. genLog may be nil.
func NewGenerationService(
	llmRouter *llm.Router,
	stores Stores,
	policy quota.Policy,
	genLog domain.GenerationLog,
	locks *OwnerLocks,
) *GenerationService {
	if locks == nil {
		locks = NewOwnerLocks()
	}
	return &GenerationService{
		llmRouter: llmRouter,
		stores:    stores,
		policy:    policy,
		genLog:    genLog,
		locks:     locks,
		now:       time.Now,
	}
}

// Create generates a new deck on a topic
func (s *GenerationService) Create(ctx context.Context, owner domain.Owner, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	req.Mode = domain.ModeCreate
	req.SourceContent = ""
	req.FocusAreas = nil
	if req.Tone == "" {
		req.Tone = defaultTone
	}
	if req.TargetSlideCount == 0 {
		req.TargetSlideCount = defaultSlideCount
	}
	return s.run(ctx, owner, req)
}

// Improve reworks an existing draft
func (s *GenerationService) Improve(ctx context.Context, owner domain.Owner, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	req.Mode = domain.ModeImprove
	req.Topic = ""
	req.Tone = ""
	req.TargetSlideCount = 0
	if len(req.FocusAreas) == 0 {
		req.FocusAreas = defaultFocusAreas
	}
	return s.run(ctx, owner, req)
}

func (s *GenerationService) run(ctx context.Context, owner domain.Owner, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	gen := &domain.Generation{
		ID:        uuid.NewString(),
		OwnerID:   owner.ID,
		Mode:      req.Mode,
		State:     domain.StateIdle,
		CreatedAt: s.now().UTC(),
	}

	// A queued double submit gives up here once its caller is gone
	unlock, err := s.locks.Lock(ctx, owner.ID)
	if err != nil {
		return nil, s.fail(ctx, gen, fmt.Errorf("failed to wait for owner ledger: %w", err))
	}
	defer unlock()

	ledger := s.stores.Quota(owner)

	current, err := ledger.GetQuota(ctx, owner.ID)
	if err != nil {
		return nil, s.fail(ctx, gen, fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err))
	}

	if !s.policy.CanGenerate(current) {
		return nil, s.fail(ctx, gen, domain.ErrQuotaExceeded)
	}

	charge := s.policy.CostOf(current)
	gen.Charge = &charge
	gen.State = domain.StateRequesting

	deck, resp, err := s.infer(ctx, gen, req)
	if err != nil {
		return nil, s.fail(ctx, gen, err)
	}

	next := s.policy.ApplyGeneration(current)
	if err := ledger.UpdateQuota(ctx, owner.ID, current, next); err != nil {
		return nil, s.fail(ctx, gen, fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err))
	}

	gen.State = domain.StateSucceeded
	s.record(ctx, gen)

	log.Info().
		Str("generation_id", gen.ID).
		Str("owner", owner.ID).
		Str("mode", string(req.Mode)).
		Str("provider", gen.Provider).
		Str("model", gen.Model).
		Str("charge", string(charge.Kind)).
		Int("slides", len(deck.Slides)).
		Int64("latency_ms", gen.LatencyMs).
		Msg("Generation succeeded")

	return &domain.GenerationResult{
		Deck:       deck,
		Charge:     charge,
		Quota:      next,
		Provider:   gen.Provider,
		Model:      resp.Model,
		TokensUsed: resp.TokensUsed,
		LatencyMs:  resp.LatencyMs,
	}, nil
}

// infer builds the prompt, invokes the provider and decodes its payload
func (s *GenerationService) infer(ctx context.Context, gen *domain.Generation, req domain.GenerationRequest) (*domain.Deck, *llm.Response, error) {
	provider, err := s.llmRouter.Resolve(req.Provider)
	if errors.Is(err, llm.ErrUnknownProvider) {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrInferenceFailure, err)
	}
	gen.Provider = provider.Name()

	llmReq := llm.Request{System: llm.SystemPrompt}
	if req.Mode == domain.ModeCreate {
		llmReq.Prompt = llm.BuildCreatePrompt(req)
		llmReq.Schema = llm.CreateDeckSchema()
	} else {
		llmReq.Prompt = llm.BuildImprovePrompt(req)
		llmReq.Schema = llm.ImproveDeckSchema()
	}

	resp, err := provider.Invoke(ctx, llmReq, req.Model)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrInferenceFailure, err)
	}
	gen.Model = resp.Model
	gen.TokensUsed = resp.TokensUsed
	gen.LatencyMs = resp.LatencyMs

	var deck *domain.Deck
	if req.Mode == domain.ModeCreate {
		deck, err = llm.DecodeCreatedDeck(resp.Payload, req)
	} else {
		deck, err = llm.DecodeImprovedDeck(resp.Payload)
	}
	if err != nil {
		return nil, nil, err
	}

	return deck, resp, nil
}

func (s *GenerationService) fail(ctx context.Context, gen *domain.Generation, err error) error {
	gen.State = domain.StateFailed
	gen.Error = err.Error()
	s.record(ctx, gen)

	event := log.Warn()
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		event = log.Error()
	}
	event.Err(err).
		Str("generation_id", gen.ID).
		Str("owner", gen.OwnerID).
		Str("mode", string(gen.Mode)).
		Str("provider", gen.Provider).
		Msg("Generation failed")

	return err
}

func (s *GenerationService) record(ctx context.Context, gen *domain.Generation) {
	if s.genLog == nil {
		return
	}
	// Runs are recorded once, in their final state
	if !gen.State.Terminal() {
		log.Warn().Str("generation_id", gen.ID).Str("state", string(gen.State)).Msg("refusing to record unfinished generation")
		return
	}
	// Record even when the request was cancelled
	if err := s.genLog.Record(context.WithoutCancel(ctx), gen); err != nil {
		log.Error().Err(err).Str("generation_id", gen.ID).Msg("failed to record generation")
	}
}

