package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hackgods/vitalpoint-assistant/pkg/logging"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderCanned = "canned"
)

// Options selects and configures the completion provider.
// An empty Provider picks whichever keyed provider exists, Gemini first.
type Options struct {
	Provider      string
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	Logger        *logging.Logger
}

// New builds exactly one Completer. A failed completion is never resent to another provider; the
// caller answers it with an apology. The returned close function is never nil.
func New(ctx context.Context, opts Options) (Completer, func() error, error) {
	noop := func() error { return nil }
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	hasGemini := strings.TrimSpace(opts.GeminiAPIKey) != ""
	hasOpenAI := strings.TrimSpace(opts.OpenAIAPIKey) != ""

	if provider == "" {
		switch {
		case hasGemini:
			provider = ProviderGemini
		case hasOpenAI:
			provider = ProviderOpenAI
		default:
			provider = ProviderCanned
		}
	}

	switch provider {
	case ProviderCanned:
		logger.Info("completion provider selected", "provider", ProviderCanned)
		return CannedCompleter{}, noop, nil

	case ProviderGemini:
		if !hasGemini {
			return nil, noop, errors.New("llm: GEMINI_API_KEY is required for the gemini provider")
		}
		gemini, err := NewGeminiCompleter(ctx, opts.GeminiAPIKey, opts.GeminiModel)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("completion provider selected", "provider", ProviderGemini)
		return gemini, gemini.Close, nil

	case ProviderOpenAI:
		if !hasOpenAI {
			return nil, noop, errors.New("llm: OPENAI_API_KEY is required for the openai provider")
		}
		openaiC, err := NewOpenAICompleter(opts.OpenAIAPIKey, opts.OpenAIModel, opts.OpenAIBaseURL)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("completion provider selected", "provider", ProviderOpenAI)
		return openaiC, noop, nil

	default:
		return nil, noop, fmt.Errorf("llm: unknown provider %q", opts.Provider)
	}
}
