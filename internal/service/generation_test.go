package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/Rrens/slidecraft/internal/llm"
	"github.com/Rrens/slidecraft/internal/quota"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const createPayload = `{
	"title": "Solar Energy 101",
	"slides": [
		{"slide_number": 1, "title": "Why Solar", "bullet_points": ["Cheap", "Clean"], "speaker_notes": "Open strong."},
		{"slide_number": 2, "title": "How Panels Work", "bullet_points": ["Photons", "Inverters"], "speaker_notes": ""}
	]
}`

const improvePayload = `{
	"title": "Quarterly Review",
	"overall_suggestions": "Tighten the story.",
	"slides": [
		{
			"slide_number": 1,
			"original_title": "Q3",
			"improved_title": "Q3 at a Glance",
			"original_content": "numbers",
			"improved_content": ["Revenue up 12%"],
			"design_suggestions": "Use one chart.",
			"speaker_notes": "Pause after the headline.",
			"visual_elements": ["bar chart"]
		}
	]
}`

var testOwner = domain.UserOwner("7d0c0a3e-7a51-4f7e-9d6f-1b2c3d4e5f60")

func newTestGenerationService(provider llm.Provider, ledger domain.QuotaRepository, genLog domain.GenerationLog) *GenerationService {
	router := llm.NewRouter("mock-provider")
	router.Register(provider)

	stores := Stores{UserQuota: ledger, SessionQuota: ledger}
	return NewGenerationService(router, stores, quota.DefaultPolicy(), genLog, nil)
}

func okResponse(payload string) *llm.Response {
	return &llm.Response{Payload: []byte(payload), Model: "mock-model", TokensUsed: 321, LatencyMs: 42}
}

func TestGenerationService_Create(t *testing.T) {
	ctx := context.Background()
	req := domain.GenerationRequest{Topic: "Solar energy", Tone: domain.ToneSimple, TargetSlideCount: 2}

	t.Run("first run uses the free allowance", func(t *testing.T) {
		provider := new(MockLLMProvider)
		ledger := new(MockQuotaRepository)
		svc := newTestGenerationService(provider, ledger, nil)

		zero := domain.Quota{CreditBalance: decimal.Zero}
		ledger.On("GetQuota", ctx, testOwner.ID).Return(zero, nil)
		provider.On("Invoke", ctx, mock.MatchedBy(func(r llm.Request) bool {
			return r.Schema != nil && r.System == llm.SystemPrompt
		}), "").Return(okResponse(createPayload), nil)
		ledger.On("UpdateQuota", ctx, testOwner.ID, zero, domain.Quota{FreeGenerationsUsed: 1, CreditBalance: decimal.Zero}).Return(nil)

		res, err := svc.Create(ctx, testOwner, req)
		require.NoError(t, err)

		assert.Equal(t, domain.ChargeFree, res.Charge.Kind)
		assert.Equal(t, 1, res.Quota.FreeGenerationsUsed)
		assert.Equal(t, "Solar Energy 101", res.Deck.Title)
		assert.Equal(t, domain.ModeCreate, res.Deck.Mode)
		assert.Equal(t, domain.ToneSimple, res.Deck.Tone)
		assert.Len(t, res.Deck.Slides, 2)
		assert.Equal(t, "mock-provider", res.Provider)
		assert.Equal(t, 321, res.TokensUsed)

		provider.AssertExpectations(t)
		ledger.AssertExpectations(t)
	})

	t.Run("exhausted ledger is rejected without calling the model", func(t *testing.T) {
		provider := new(MockLLMProvider)
		ledger := new(MockQuotaRepository)
		svc := newTestGenerationService(provider, ledger, nil)

		empty := domain.Quota{FreeGenerationsUsed: 2, CreditBalance: decimal.RequireFromString("0.10")}
		ledger.On("GetQuota", ctx, testOwner.ID).Return(empty, nil)

		_, err := svc.Create(ctx, testOwner, req)
		assert.ErrorIs(t, err, domain.ErrQuotaExceeded)

		provider.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything, mock.Anything)
		ledger.AssertNotCalled(t, "UpdateQuota", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("paid run deducts the unit cost", func(t *testing.T) {
		provider := new(MockLLMProvider)
		ledger := new(MockQuotaRepository)
		svc := newTestGenerationService(provider, ledger, nil)

		current := domain.Quota{FreeGenerationsUsed: 2, CreditBalance: decimal.RequireFromString("1.00")}
		ledger.On("GetQuota", ctx, testOwner.ID).Return(current, nil)
		provider.On("Invoke", ctx, mock.Anything, "").Return(okResponse(createPayload), nil)
		ledger.On("UpdateQuota", ctx, testOwner.ID, current, mock.MatchedBy(func(q domain.Quota) bool {
			return q.FreeGenerationsUsed == 3 && q.CreditBalance.Equal(decimal.RequireFromString("0.80"))
		})).Return(nil)

		res, err := svc.Create(ctx, testOwner, req)
		require.NoError(t, err)
		assert.Equal(t, domain.ChargePaid, res.Charge.Kind)
		assert.True(t, res.Charge.Amount.Equal(quota.UnitCost))
		assert.True(t, res.Quota.CreditBalance.Equal(decimal.RequireFromString("0.80")))

		ledger.AssertExpectations(t)
	})

	t.Run("inference failure leaves the ledger untouched", func(t *testing.T) {
		provider := new(MockLLMProvider)
		ledger := new(MockQuotaRepository)
		genLog := new(MockGenerationLog)
		svc := newTestGenerationService(provider, ledger, genLog)

		ledger.On("GetQuota", ctx, testOwner.ID).Return(domain.Quota{}, nil)
		provider.On("Invoke", ctx, mock.Anything, "").Return(nil, errors.New("upstream 500"))
		genLog.On("Record", mock.Anything, mock.MatchedBy(func(g *domain.Generation) bool {
			return g.State == domain.StateFailed && g.Charge != nil
		})).Return(nil)

		_, err := svc.Create(ctx, testOwner, req)
		assert.ErrorIs(t, err, domain.ErrInferenceFailure)

		ledger.AssertNotCalled(t, "UpdateQuota", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		genLog.AssertExpectations(t)
	})

	t.Run("malformed payload is an inference failure", func(t *testing.T) {
		provider := new(MockLLMProvider)
		ledger := new(MockQuotaRepository)
		svc := newTestGenerationService(provider, ledger, nil)

		ledger.On("GetQuota", ctx, testOwner.ID).Return(domain.Quota{}, nil)
		provider.On("Invoke", ctx, mock.Anything, "").Return(okResponse(`{"title": "", "slides": []}`), nil)

		_, err := svc.Create(ctx, testOwner, req)
		assert.ErrorIs(t, err, domain.ErrInferenceFailure)
		ledger.AssertNotCalled(t, "UpdateQuota", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ledger write failure fails the run", func(t *testing.T) {
		provider := new(MockLLMProvider)
		ledger := new(MockQuotaRepository)
		svc := newTestGenerationService(provider, ledger, nil)

		ledger.On("GetQuota", ctx, testOwner.ID).Return(domain.Quota{}, nil)
		provider.On("Invoke", ctx, mock.Anything, "").Return(okResponse(createPayload), nil)
		ledger.On("UpdateQuota", ctx, testOwner.ID, mock.Anything, mock.Anything).Return(domain.ErrQuotaConflict)

		res, err := svc.Create(ctx, testOwner, req)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, domain.ErrPersistenceFailure)
		assert.ErrorIs(t, err, domain.ErrQuotaConflict)
	})

	t.Run("missing topic is rejected", func(t *testing.T) {
		provider := new(MockLLMProvider)
		ledger := new(MockQuotaRepository)
		svc := newTestGenerationService(provider, ledger, nil)

		_, err := svc.Create(ctx, testOwner, domain.GenerationRequest{})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		ledger.AssertNotCalled(t, "GetQuota", mock.Anything, mock.Anything)
	})

	t.Run("unknown provider is rejected before charging", func(t *testing.T) {
		provider := new(MockLLMProvider)
		ledger := new(MockQuotaRepository)
		svc := newTestGenerationService(provider, ledger, nil)

		ledger.On("GetQuota", ctx, testOwner.ID).Return(domain.Quota{}, nil)

		_, err := svc.Create(ctx, testOwner, domain.GenerationRequest{Topic: "Solar energy", Provider: "mistral"})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		ledger.AssertNotCalled(t, "UpdateQuota", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("defaults tone and slide count", func(t *testing.T) {
		provider := new(MockLLMProvider)
		ledger := new(MockQuotaRepository)
		svc := newTestGenerationService(provider, ledger, nil)

		ledger.On("GetQuota", ctx, testOwner.ID).Return(domain.Quota{}, nil)
		provider.On("Invoke", ctx, mock.MatchedBy(func(r llm.Request) bool {
			return r.Prompt == llm.BuildCreatePrompt(domain.GenerationRequest{
				Mode:             domain.ModeCreate,
				Topic:            "Solar energy",
				Tone:             domain.ToneProfessional,
				TargetSlideCount: 10,
			})
		}), "").Return(okResponse(createPayload), nil)
		ledger.On("UpdateQuota", ctx, testOwner.ID, mock.Anything, mock.Anything).Return(nil)

		res, err := svc.Create(ctx, testOwner, domain.GenerationRequest{Topic: "Solar energy"})
		require.NoError(t, err)
		assert.Equal(t, domain.ToneProfessional, res.Deck.Tone)
		provider.AssertExpectations(t)
	})
}

func TestGenerationService_Improve(t *testing.T) {
	ctx := context.Background()
	provider := new(MockLLMProvider)
	ledger := new(MockQuotaRepository)
	genLog := new(MockGenerationLog)
	svc := newTestGenerationService(provider, ledger, genLog)

	ledger.On("GetQuota", ctx, testOwner.ID).Return(domain.Quota{FreeGenerationsUsed: 1}, nil)
	provider.On("Invoke", ctx, mock.MatchedBy(func(r llm.Request) bool {
		return r.Schema != nil
	}), "mock-model").Return(okResponse(improvePayload), nil)
	ledger.On("UpdateQuota", ctx, testOwner.ID, mock.Anything, mock.Anything).Return(nil)
	genLog.On("Record", mock.Anything, mock.MatchedBy(func(g *domain.Generation) bool {
		return g.State == domain.StateSucceeded && g.Mode == domain.ModeImprove
	})).Return(nil)

	res, err := svc.Improve(ctx, testOwner, domain.GenerationRequest{
		SourceContent: "Q3\nnumbers",
		Model:         "mock-model",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ModeImprove, res.Deck.Mode)
	assert.Equal(t, "Tighten the story.", res.Deck.OverallSuggestions)
	require.Len(t, res.Deck.Slides, 1)
	assert.Equal(t, "Q3 at a Glance", res.Deck.Slides[0].Title)
	assert.Equal(t, "Q3", res.Deck.Slides[0].OriginalTitle)
	assert.Equal(t, 2, res.Quota.FreeGenerationsUsed)

	genLog.AssertExpectations(t)

	_, err = svc.Improve(ctx, testOwner, domain.GenerationRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestGenerationService_IncompletePayloadIsNotCharged(t *testing.T) {
	ctx := context.Background()
	start := domain.Quota{FreeGenerationsUsed: 2, CreditBalance: decimal.RequireFromString("1.00")}

	tests := []struct {
		name    string
		payload string
		run     func(*GenerationService) error
	}{
		{
			name:    "improve without deck title",
			payload: `{"slides":[{"slide_number":1,"improved_title":"X","improved_content":["a"],"design_suggestions":"","speaker_notes":""}]}`,
			run: func(svc *GenerationService) error {
				_, err := svc.Improve(ctx, testOwner, domain.GenerationRequest{SourceContent: "draft"})
				return err
			},
		},
		{
			name:    "create slide without bullet points",
			payload: `{"title":"T","slides":[{"slide_number":1,"title":"S","speaker_notes":""}]}`,
			run: func(svc *GenerationService) error {
				_, err := svc.Create(ctx, testOwner, domain.GenerationRequest{Topic: "Solar"})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(MockLLMProvider)
			ledger := newMemQuota()
			ledger.ledger[testOwner.ID] = start
			svc := newTestGenerationService(provider, ledger, nil)

			provider.On("Invoke", ctx, mock.Anything, "").Return(okResponse(tt.payload), nil)

			err := tt.run(svc)
			assert.ErrorIs(t, err, domain.ErrInferenceFailure)
			assert.True(t, ledger.ledger[testOwner.ID].Equal(start), "ledger must not change")
		})
	}
}

func TestGenerationService_ConcurrentRunsShareOneLedger(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	provider := new(MockLLMProvider)
	ledger := newMemQuota()
	ledger.ledger[testOwner.ID] = domain.Quota{FreeGenerationsUsed: 2, CreditBalance: decimal.RequireFromString("0.20")}

	svc := newTestGenerationService(provider, ledger, nil)
	provider.On("Invoke", mock.Anything, mock.Anything, "").Return(okResponse(createPayload), nil).Once()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, testOwner, domain.GenerationRequest{Topic: "Solar energy"})
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrQuotaExceeded):
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	final, _ := ledger.GetQuota(ctx, testOwner.ID)
	assert.Equal(t, 3, final.FreeGenerationsUsed)
	assert.True(t, final.CreditBalance.IsZero())
	provider.AssertNumberOfCalls(t, "Invoke", 1)
	assert.Zero(t, svc.locks.size())
}

func TestGenerationService_AnonymousOwnerUsesSessionLedger(t *testing.T) {
	ctx := context.Background()
	provider := new(MockLLMProvider)
	userLedger := new(MockQuotaRepository)
	sessionLedger := newMemQuota()

	router := llm.NewRouter("mock-provider")
	router.Register(provider)
	svc := NewGenerationService(router, Stores{UserQuota: userLedger, SessionQuota: sessionLedger}, quota.DefaultPolicy(), nil, nil)

	provider.On("Invoke", ctx, mock.Anything, "").Return(okResponse(createPayload), nil)

	anon := domain.SessionOwner("b0a1c2")
	_, err := svc.Create(ctx, anon, domain.GenerationRequest{Topic: "Solar energy"})
	require.NoError(t, err)

	q, _ := sessionLedger.GetQuota(ctx, anon.ID)
	assert.Equal(t, 1, q.FreeGenerationsUsed)
	userLedger.AssertNotCalled(t, "GetQuota", mock.Anything, mock.Anything)
}

func TestGenerationService_RecordsOnlyFinishedRuns(t *testing.T) {
	ctx := context.Background()
	genLog := new(MockGenerationLog)
	svc := newTestGenerationService(new(MockLLMProvider), newMemQuota(), genLog)

	genLog.On("Record", mock.Anything, mock.MatchedBy(func(g *domain.Generation) bool {
		return g.State == domain.StateFailed
	})).Return(nil).Once()

	svc.record(ctx, &domain.Generation{ID: "g1", State: domain.StateRequesting})
	svc.record(ctx, &domain.Generation{ID: "g2", State: domain.StateFailed})

	genLog.AssertNumberOfCalls(t, "Record", 1)
	genLog.AssertExpectations(t)
}

func TestGenerationService_QueuedRunGivesUpWhenCallerLeaves(t *testing.T) {
	defer goleak.VerifyNone(t)

	provider := new(MockLLMProvider)
	ledger := newMemQuota()
	locks := NewOwnerLocks()

	router := llm.NewRouter("mock-provider")
	router.Register(provider)
	svc := NewGenerationService(router, Stores{UserQuota: ledger, SessionQuota: ledger}, quota.DefaultPolicy(), nil, locks)

	// a first run of the same owner is still in flight
	unlock, err := locks.Lock(context.Background(), testOwner.ID)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = svc.Create(ctx, testOwner, domain.GenerationRequest{Topic: "Solar"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	provider.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, domain.Quota{}, ledger.ledger[testOwner.ID])
}
