// Package bootstrap assembles the pieces shared by the server and the CLI.
package bootstrap

import (
	"fmt"

	"github.com/Rrens/slidecraft/internal/config"
	"github.com/Rrens/slidecraft/internal/llm"
	"github.com/Rrens/slidecraft/internal/llm/anthropic"
	"github.com/Rrens/slidecraft/internal/llm/deepseek"
	"github.com/Rrens/slidecraft/internal/llm/gemini"
	"github.com/Rrens/slidecraft/internal/llm/ollama"
	"github.com/Rrens/slidecraft/internal/llm/openai"
	"github.com/Rrens/slidecraft/internal/quota"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// NewLLMRouter registers every provider. Providers without credentials stay
// registered but unconfigured so they show up in the provider listing.
func NewLLMRouter(cfg config.LLMConfig) *llm.Router {
	router := llm.NewRouter(cfg.DefaultProvider)

	router.Register(gemini.NewProvider(cfg.Gemini))
	router.Register(openai.NewProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model))
	router.Register(anthropic.NewProvider(cfg.Anthropic.APIKey, cfg.Anthropic.Model))
	router.Register(deepseek.NewProvider(cfg.DeepSeek.APIKey, cfg.DeepSeek.Model))
	router.Register(ollama.NewProvider(cfg.Ollama.Host, cfg.Ollama.DefaultModel))

	configured := router.Configured()
	log.Info().
		Str("default", cfg.DefaultProvider).
		Strs("configured", configured).
		Msg("LLM providers initialized")
	if len(configured) == 0 {
		log.Warn().Msg("No LLM provider is configured; generation requests will fail")
	}

	return router
}

// moneyScale matches the users.credits column, NUMERIC(12, 2)
const moneyScale = 2

// Policy builds the quota policy, overriding the defaults with configured values.
// Amounts finer than a cent are rejected.
func Policy(cfg config.QuotaConfig) (quota.Policy, error) {
	policy := quota.DefaultPolicy()

	if cfg.FreeLimit > 0 {
		policy.FreeLimit = cfg.FreeLimit
	}
	if cfg.UnitCost != "" {
		v, err := parseMoney("quota.unit_cost", cfg.UnitCost)
		if err != nil {
			return quota.Policy{}, err
		}
		policy.UnitCost = v
	}
	if cfg.CreditRate != "" {
		v, err := parseMoney("quota.credit_rate", cfg.CreditRate)
		if err != nil {
			return quota.Policy{}, err
		}
		policy.CreditRate = v
	}

	return policy, nil
}

func parseMoney(key, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil || !v.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("invalid %s %q: must be a positive amount", key, raw)
	}
	if !v.Equal(v.Round(moneyScale)) {
		return decimal.Decimal{}, fmt.Errorf("invalid %s %q: at most %d decimal places", key, raw, moneyScale)
	}
	return v, nil
}
