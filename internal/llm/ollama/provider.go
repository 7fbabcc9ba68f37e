package ollama

import (
	"context"
	"strings"
	"time"

	"github.com/Rrens/slidecraft/internal/llm"
)

// Provider runs generations against a local Ollama daemon
type Provider struct {
	host         string
	defaultModel string
	http         *llm.HTTPClient
}

func NewProvider(host, defaultModel string) llm.Provider {
	if defaultModel == "" {
		defaultModel = "llama3.1"
	}
	return &Provider{
		host:         strings.TrimRight(host, "/"),
		defaultModel: defaultModel,
		// local models are slow on CPU
		http: llm.NewHTTPClient("ollama", 300*time.Second),
	}
}

func (p *Provider) Name() string { return "ollama" }

func (p *Provider) AvailableModels() []string {
	return []string{"llama3.1", "llama3.2", "mistral", "mixtral", "qwen2.5"}
}

func (p *Provider) DefaultModel() string { return p.defaultModel }

// IsConfigured reports whether a daemon address is set; reachability is not checked
func (p *Provider) IsConfigured() bool { return p.host != "" }

type generateRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system,omitempty"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Format  any            `json:"format,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Invoke runs a non-streaming generation with the schema as output format
func (p *Provider) Invoke(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	if model == "" {
		model = p.defaultModel
	}

	genReq := generateRequest{
		Model:  model,
		System: req.System,
		Prompt: req.Prompt,
		Format: "json",
		Options: map[string]any{
			"temperature": 0.7,
			"num_predict": 4096,
		},
	}
	if req.Schema != nil {
		genReq.Format = req.Schema
	}

	var out generateResponse
	latency, err := p.http.PostJSON(ctx, p.host+"/api/generate", nil, genReq, &out)
	if err != nil {
		return nil, err
	}

	payload, err := llm.ParsePayload(out.Response)
	if err != nil {
		return nil, err
	}

	return &llm.Response{
		Payload:    payload,
		Text:       out.Response,
		Model:      model,
		TokensUsed: out.PromptEvalCount + out.EvalCount,
		LatencyMs:  latency,
	}, nil
}
