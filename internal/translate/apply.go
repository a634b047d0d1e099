package translate

import (
	"context"
	"fmt"

	"github.com/mgpai22/captioner/internal/caption"
)

// CaptionStore is the part of the caption store translation writes through.
type CaptionStore interface {
	Captions() []caption.Caption
	Update(ctx context.Context, index int, c caption.Caption) error
}

// Report summarizes a store translation.
type Report struct {
	Translated int
	Skipped    int // captions edited or removed while the request ran
}

// TranslateStore translates every caption in store and writes the new text
// back with Update, keeping each caption's times. A caption that changed
// while the models were working is left as the user edited it.
func TranslateStore(ctx context.Context, t *Translator, store CaptionStore) (Report, error) {
	snapshot := store.Captions()
	if len(snapshot) == 0 {
		return Report{}, nil
	}

	items := make([]TranslationItem, len(snapshot))
	for i, c := range snapshot {
		items[i] = TranslationItem{Index: i, Text: c.Text}
	}

	results, err := t.Translate(ctx, items)
	if err != nil {
		return Report{}, err
	}

	var report Report
	for _, r := range results {
		current := store.Captions()
		if r.Index >= len(current) || current[r.Index] != snapshot[r.Index] {
			report.Skipped++
			t.logger.Warnw("caption changed during translation, keeping edit", "index", r.Index+1)
			continue
		}

		updated := snapshot[r.Index]
		updated.Text = r.Text
		if err := store.Update(ctx, r.Index, updated); err != nil {
			return report, fmt.Errorf("apply translation to caption %d: %w", r.Index+1, err)
		}
		report.Translated++
	}
	return report, nil
}
