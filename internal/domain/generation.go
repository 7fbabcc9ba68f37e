package domain

import (
	"context"
	"time"
)

// GenerationRequest carries the parameters of one create or improve run
type GenerationRequest struct {
	Mode             Mode        `json:"-"`
	Topic            string      `json:"topic,omitempty" validate:"required_if=Mode create,max=2000"`
	SourceContent    string      `json:"content,omitempty" validate:"required_if=Mode improve,max=50000"`
	Tone             Tone        `json:"tone,omitempty" validate:"omitempty,oneof=professional academic persuasive simple"`
	TargetSlideCount int         `json:"slide_count,omitempty" validate:"omitempty,min=1,max=30"`
	FocusAreas       []FocusArea `json:"focus_areas,omitempty" validate:"omitempty,dive,oneof=clarity design speaker_notes structure"`
	Provider         string      `json:"provider,omitempty"`
	Model            string      `json:"model,omitempty"`
}

// WorkflowState is the lifecycle position of a generation run
type WorkflowState string

const (
	StateIdle       WorkflowState = "idle"
	StateRequesting WorkflowState = "requesting"
	StateSucceeded  WorkflowState = "succeeded"
	StateFailed     WorkflowState = "failed"
)

// Terminal reports whether no further transition is possible
func (s WorkflowState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Generation records a single workflow run
type Generation struct {
	ID         string        `json:"id"`
	OwnerID    string        `json:"owner_id"`
	Mode       Mode          `json:"mode"`
	State      WorkflowState `json:"state"`
	Charge     *Charge       `json:"charge,omitempty"`
	Provider   string        `json:"provider,omitempty"`
	Model      string        `json:"model,omitempty"`
	TokensUsed int           `json:"tokens_used"`
	LatencyMs  int64         `json:"latency_ms"`
	Error      string        `json:"error,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// GenerationResult is returned by a successful run
type GenerationResult struct {
	Deck       *Deck  `json:"deck"`
	Charge     Charge `json:"charge"`
	Quota      Quota  `json:"quota"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	TokensUsed int    `json:"tokens_used"`
	LatencyMs  int64  `json:"latency_ms"`
}

// GenerationLog stores finished runs
type GenerationLog interface {
	Record(ctx context.Context, g *Generation) error
}
