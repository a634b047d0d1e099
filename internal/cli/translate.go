package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/captioner/internal/translate"
)

func newTranslateCommand(cc *commandContext) *cobra.Command {
	var (
		targetLang  string
		inputLang   string
		provider    string
		model       string
		apiKey      string
		prompt      string
		batchSize   int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate caption text with an LLM",
		Long: `Translate the text of every caption and save it in place. Caption
times are not changed. A caption edited while the request runs keeps the
edit.

Providers:
  gemini     GEMINI_API_KEY
  openai     OPENAI_API_KEY
  anthropic  ANTHROPIC_API_KEY

Examples:
  captioner translate --to Spanish
  captioner translate --to ja --provider anthropic --batch-size 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("provider") {
				provider = cfg.Translate.Provider
			}
			provider = strings.ToLower(strings.TrimSpace(provider))
			switch translate.Provider(provider) {
			case translate.ProviderGemini, translate.ProviderOpenAI, translate.ProviderAnthropic:
			default:
				return fmt.Errorf("unsupported translation provider: %s", provider)
			}
			if targetLang == "" {
				targetLang = cfg.Translate.TargetLanguage
			}
			if targetLang == "" {
				return errors.New("target language is required: pass --to")
			}
			if model == "" {
				model = cfg.Translate.Model
			}
			if prompt == "" {
				prompt = cfg.Translate.Prompt
			}
			if !cmd.Flags().Changed("batch-size") {
				batchSize = cfg.Translate.BatchSize
			}
			if !cmd.Flags().Changed("concurrency") {
				concurrency = cfg.Translate.Concurrency
			}
			if apiKey == "" {
				apiKey = cfg.APIKey(provider)
			}
			if apiKey == "" {
				return fmt.Errorf(
					"API key is required for %s: use --api-key or set %s_API_KEY",
					provider,
					strings.ToUpper(provider),
				)
			}

			store, err := cc.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if store.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No captions to translate")
				return nil
			}

			t, err := translate.Factory(cmd.Context(), translate.Provider(provider), apiKey, translate.Options{
				InputLanguage:  inputLang,
				TargetLanguage: targetLang,
				Model:          model,
				Prompt:         prompt,
				BatchSize:      batchSize,
				Concurrency:    concurrency,
			}, cc.log())
			if err != nil {
				return err
			}

			cc.log().Infow("translating captions", "provider", provider, "target", targetLang, "count", store.Len())
			report, err := translate.TranslateStore(cmd.Context(), t, store)
			if err != nil {
				return fmt.Errorf("translation failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Translated %d captions to %s", report.Translated, targetLang)
			if report.Skipped > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), " (%d edited meanwhile, kept)", report.Skipped)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetLang, "to", "t", "", "Target language (e.g. Spanish, ja)")
	cmd.Flags().StringVar(&inputLang, "from", "", "Source language (default: auto-detect)")
	cmd.Flags().StringVarP(&provider, "provider", "p", "gemini", "Provider: gemini, openai or anthropic")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model override")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Provider API key (default: from env or config)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Extra instructions for the translator")
	cmd.Flags().IntVar(&batchSize, "batch-size", translate.DefaultBatchSize, "Captions per request")
	cmd.Flags().IntVar(&concurrency, "concurrency", translate.DefaultConcurrency, "Requests in flight")
	return cmd
}
