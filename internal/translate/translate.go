// Package translate rewrites caption text into another language through an
// LLM provider. Timing is never sent to or taken from the model.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mgpai22/captioner/internal/logging"
)

const (
	DefaultBatchSize   = 50
	DefaultConcurrency = 3
)

// single text item to translate
type TranslationItem struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// translated text item
type TranslationResult struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// translation service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

type Options struct {
	InputLanguage  string
	TargetLanguage string
	Model          string
	Prompt         string
	BatchSize      int // items per API request (default 50)
	Concurrency    int // requests in flight (default 3)
}

// Completer sends one prompt to a model and returns its text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Translator batches items over a Completer.
type Translator struct {
	completer Completer
	options   Options
	logger    *logging.Logger
}

func New(completer Completer, opts Options, logger *logging.Logger) *Translator {
	if logger == nil {
		logger = logging.Nop()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Translator{completer: completer, options: opts, logger: logger}
}

// creates a Translator backed by the given provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
	logger *logging.Logger,
) (*Translator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	var (
		completer Completer
		err       error
	)
	switch provider {
	case ProviderGemini:
		completer, err = NewGeminiCompleter(ctx, apiKey, opts.Model)
	case ProviderOpenAI:
		completer, err = NewOpenAICompleter(apiKey, opts.Model)
	case ProviderAnthropic:
		completer, err = NewAnthropicCompleter(apiKey, opts.Model)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
	if err != nil {
		return nil, err
	}
	return New(completer, opts, logger), nil
}

// Translate splits items into batches, one request each, with up to
// Concurrency requests in flight. Results come back sorted by index. The
// first failed batch cancels the rest.
func (t *Translator) Translate(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	if len(items) == 0 {
		return []TranslationResult{}, nil
	}

	var batches [][]TranslationItem
	for i := 0; i < len(items); i += t.options.BatchSize {
		end := min(i+t.options.BatchSize, len(items))
		batches = append(batches, items[i:end])
	}

	perBatch := make([][]TranslationResult, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.options.Concurrency)
	for i, batch := range batches {
		g.Go(func() error {
			results, err := t.translateBatch(gctx, batch)
			if err != nil {
				return fmt.Errorf("batch %d failed: %w", i, err)
			}
			perBatch[i] = results
			t.logger.Debugw("translated batch",
				"provider", t.completer.Name(),
				"batch", i+1,
				"of", len(batches),
				"items", len(batch),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]TranslationResult, 0, len(items))
	for _, results := range perBatch {
		all = append(all, results...)
	}
	slices.SortFunc(all, func(a, b TranslationResult) int {
		return a.Index - b.Index
	})
	return all, nil
}

func (t *Translator) translateBatch(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	text, err := t.completer.Complete(ctx, BuildPrompt(t.options, items))
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text in %s response", t.completer.Name())
	}
	return parseResponse(text, items)
}

// BuildPrompt creates the translation prompt for LLM providers
func BuildPrompt(opts Options, items []TranslationItem) string {
	var sb strings.Builder

	if opts.InputLanguage != "" {
		fmt.Fprintf(&sb, "Translate the following %s caption texts to %s.\n\n",
			opts.InputLanguage, opts.TargetLanguage)
	} else {
		fmt.Fprintf(&sb, "Translate the following caption texts to %s.\n\n",
			opts.TargetLanguage)
	}

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Translate ONLY the text content, preserving the meaning.\n")
	sb.WriteString("2. Keep line breaks in the same positions.\n")
	sb.WriteString("3. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("4. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString("5. The 'index' values must match the input indices exactly.\n")
	sb.WriteString("6. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		fmt.Fprintf(&sb, "Additional instructions: %s\n\n", opts.Prompt)
	}

	sb.WriteString("Input JSON:\n")
	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)
	sb.WriteString("\n\nOutput the translated JSON array only:")

	return sb.String()
}
