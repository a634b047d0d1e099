package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mgpai22/captioner/internal/caption"
)

// answers every prompt by upper-casing the items it carries
type fakeCompleter struct {
	mu       sync.Mutex
	calls    int
	inFlight atomic.Int32
	peak     atomic.Int32
	fail     func(items []TranslationItem) error
	hook     func()
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	items, err := promptItems(prompt)
	if err != nil {
		return "", err
	}
	if f.fail != nil {
		if err := f.fail(items); err != nil {
			return "", err
		}
	}
	if f.hook != nil {
		f.hook()
	}

	out := make([]TranslationResult, len(items))
	for i, it := range items {
		out[i] = TranslationResult{Index: it.Index, Text: strings.ToUpper(it.Text)}
	}
	data, _ := json.Marshal(out)
	return "```json\n" + string(data) + "\n```", nil
}

func promptItems(prompt string) ([]TranslationItem, error) {
	start := strings.Index(prompt, "Input JSON:\n")
	end := strings.LastIndex(prompt, "\n\nOutput")
	if start < 0 || end < 0 {
		return nil, errors.New("prompt missing input JSON")
	}
	var items []TranslationItem
	err := json.Unmarshal([]byte(prompt[start+len("Input JSON:\n"):end]), &items)
	return items, err
}

func makeItems(n int) []TranslationItem {
	items := make([]TranslationItem, n)
	for i := range items {
		items[i] = TranslationItem{Index: i, Text: fmt.Sprintf("line %d", i)}
	}
	return items
}

func TestTranslateBatchesAndOrders(t *testing.T) {
	fc := &fakeCompleter{}
	tr := New(fc, Options{TargetLanguage: "Upper", BatchSize: 4, Concurrency: 2}, nil)

	results, err := tr.Translate(context.Background(), makeItems(10))
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if fc.calls != 3 {
		t.Errorf("calls = %d, want 3", fc.calls)
	}
	if len(results) != 10 {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.Index != i || r.Text != fmt.Sprintf("LINE %d", i) {
			t.Errorf("result %d = %+v", i, r)
		}
	}
	if p := fc.peak.Load(); p > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", p)
	}
}

func TestTranslateDefaults(t *testing.T) {
	tr := New(&fakeCompleter{}, Options{TargetLanguage: "x"}, nil)
	if tr.options.BatchSize != DefaultBatchSize || tr.options.Concurrency != DefaultConcurrency {
		t.Errorf("options = %+v", tr.options)
	}

	results, err := tr.Translate(context.Background(), nil)
	if err != nil || len(results) != 0 {
		t.Errorf("empty input: %v %v", results, err)
	}
}

func TestTranslateBatchFailure(t *testing.T) {
	fc := &fakeCompleter{fail: func(items []TranslationItem) error {
		if items[0].Index == 2 {
			return errors.New("quota exceeded")
		}
		return nil
	}}
	tr := New(fc, Options{TargetLanguage: "x", BatchSize: 2, Concurrency: 1}, nil)

	_, err := tr.Translate(context.Background(), makeItems(6))
	if err == nil || !strings.Contains(err.Error(), "batch 1 failed") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("err = %v", err)
	}
}

type scriptedCompleter struct{ reply string }

func (s scriptedCompleter) Name() string { return "scripted" }
func (s scriptedCompleter) Complete(context.Context, string) (string, error) {
	return s.reply, nil
}

func TestTranslateRejectsMismatchedReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"wrong count", `[{"index": 0, "text": "a"}]`, "expected 2 results"},
		{"wrong index", `[{"index": 0, "text": "a"}, {"index": 7, "text": "b"}]`, "unexpected index 7"},
		{"duplicate index", `[{"index": 0, "text": "a"}, {"index": 0, "text": "b"}]`, "unexpected index 0"},
		{"blank", "   ", "no text in scripted response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(scriptedCompleter{reply: tt.reply}, Options{TargetLanguage: "x"}, nil)
			_, err := tr.Translate(context.Background(), makeItems(2))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestTranslateStore(t *testing.T) {
	ctx := context.Background()
	store := caption.NewStore(nil, nil)
	for _, c := range []caption.Caption{
		{Text: "hello", StartTime: 0, EndTime: 1},
		{Text: "world", StartTime: 1, EndTime: 2.5},
	} {
		if _, err := store.Add(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	tr := New(&fakeCompleter{}, Options{TargetLanguage: "Upper"}, nil)
	report, err := TranslateStore(ctx, tr, store)
	if err != nil {
		t.Fatalf("TranslateStore: %v", err)
	}
	if report.Translated != 2 || report.Skipped != 0 {
		t.Errorf("report = %+v", report)
	}

	want := []caption.Caption{
		{Text: "HELLO", StartTime: 0, EndTime: 1},
		{Text: "WORLD", StartTime: 1, EndTime: 2.5},
	}
	if diff := cmp.Diff(want, store.Captions()); diff != "" {
		t.Errorf("captions mismatch (-want +got):\n%s", diff)
	}
}

func TestTranslateStoreKeepsConcurrentEdit(t *testing.T) {
	ctx := context.Background()
	store := caption.NewStore(nil, nil)
	_, _ = store.Add(ctx, caption.Caption{Text: "one", StartTime: 0, EndTime: 1})
	_, _ = store.Add(ctx, caption.Caption{Text: "two", StartTime: 1, EndTime: 2})

	fc := &fakeCompleter{hook: func() {
		_ = store.Update(ctx, 1, caption.Caption{Text: "edited", StartTime: 1, EndTime: 2})
	}}
	tr := New(fc, Options{TargetLanguage: "Upper"}, nil)

	report, err := TranslateStore(ctx, tr, store)
	if err != nil {
		t.Fatalf("TranslateStore: %v", err)
	}
	if report.Translated != 1 || report.Skipped != 1 {
		t.Errorf("report = %+v", report)
	}
	got := store.Captions()
	if got[0].Text != "ONE" || got[1].Text != "edited" {
		t.Errorf("captions = %+v", got)
	}
}

func TestTranslateStoreEmpty(t *testing.T) {
	fc := &fakeCompleter{}
	report, err := TranslateStore(context.Background(), New(fc, Options{}, nil), caption.NewStore(nil, nil))
	if err != nil || report != (Report{}) || fc.calls != 0 {
		t.Errorf("report=%+v err=%v calls=%d", report, err, fc.calls)
	}
}

func TestFactory(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		provider Provider
		want     string
	}{
		{ProviderGemini, "gemini"},
		{ProviderOpenAI, "openai"},
		{ProviderAnthropic, "anthropic"},
	}
	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			tr, err := Factory(ctx, tt.provider, "fake-key", Options{TargetLanguage: "Japanese"}, nil)
			if err != nil {
				t.Fatalf("Factory(%s) returned error: %v", tt.provider, err)
			}
			if got := tr.completer.Name(); got != tt.want {
				t.Errorf("completer = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFactoryRequiresTargetLanguage(t *testing.T) {
	if _, err := Factory(context.Background(), ProviderGemini, "fake-key", Options{}, nil); err == nil {
		t.Error("expected error for missing target language")
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	for _, p := range []Provider{ProviderGemini, ProviderOpenAI, ProviderAnthropic} {
		if _, err := Factory(context.Background(), p, "", Options{TargetLanguage: "x"}, nil); err == nil {
			t.Errorf("%s: expected error for missing API key", p)
		}
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	_, err := Factory(context.Background(), Provider("unknown"), "fake-key", Options{TargetLanguage: "French"}, nil)
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestBuildPrompt(t *testing.T) {
	items := []TranslationItem{
		{Index: 0, Text: "Hello world"},
		{Index: 1, Text: "Goodbye"},
	}

	prompt := BuildPrompt(Options{InputLanguage: "English", TargetLanguage: "Japanese", Prompt: "Be formal."}, items)
	for _, want := range []string{"English caption texts", "to Japanese", "Hello world", `"index": 0`, "Be formal."} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	prompt = BuildPrompt(Options{TargetLanguage: "Spanish"}, items[:1])
	if strings.Contains(prompt, "English") {
		t.Error("prompt should not contain input language when not specified")
	}
	if !strings.Contains(prompt, "to Spanish") {
		t.Error("prompt should contain target language")
	}
}

// Integration test: only runs if OPENAI_API_KEY is set
func TestOpenAICompleterIntegration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set; skipping integration test")
	}

	ctx := context.Background()
	tr, err := Factory(ctx, ProviderOpenAI, apiKey, Options{TargetLanguage: "Spanish"}, nil)
	if err != nil {
		t.Fatalf("Factory error: %v", err)
	}

	results, err := tr.Translate(ctx, []TranslationItem{{Index: 0, Text: "Hello"}, {Index: 1, Text: "Goodbye"}})
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	for _, r := range results {
		if r.Text == "" {
			t.Errorf("result index %d has empty text", r.Index)
		}
	}
}
