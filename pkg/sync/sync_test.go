package sync

import (
	"context"
	"testing"
	"time"

	gperrors "github.com/gridpress/gridpress/pkg/errors"
	"github.com/gridpress/gridpress/pkg/page"
	"github.com/gridpress/gridpress/pkg/store"
	"github.com/gridpress/gridpress/pkg/store/memory"
)

func TestLoadMissingYieldsDefault(t *testing.T) {
	loader := NewLoader(memory.New(), nil)

	doc := loader.Load(context.Background(), PageHome)
	if doc.ID != PageHome {
		t.Errorf("ID = %q, want %q", doc.ID, PageHome)
	}
	if doc.Rev != 0 {
		t.Errorf("Rev = %d, want 0 (unsaved default)", doc.Rev)
	}

	want := []struct {
		id     string
		typ    string
		layout page.Layout
	}{
		{"hero-main", "Hero", page.Layout{X: 0, Y: 0, W: 12, H: 6}},
		{"spacer-1", "Spacer", page.Layout{X: 0, Y: 6, W: 12, H: 2}},
		{"coming-soon", "ComingSoon", page.Layout{X: 0, Y: 8, W: 12, H: 4}},
	}
	if len(doc.Sections) != len(want) {
		t.Fatalf("len(Sections) = %d, want %d", len(doc.Sections), len(want))
	}
	for i, w := range want {
		s := doc.Sections[i]
		if s.ID != w.id || s.Type != w.typ {
			t.Errorf("section %d = %s/%s, want %s/%s", i, s.ID, s.Type, w.id, w.typ)
		}
		if s.Layout == nil || *s.Layout != w.layout {
			t.Errorf("section %d layout = %+v, want %+v", i, s.Layout, w.layout)
		}
	}
}

func TestLoadUnknownPageYieldsEmptyDocument(t *testing.T) {
	loader := NewLoader(memory.New(), nil)

	doc := loader.Load(context.Background(), "totally-new")
	if doc.ID != "totally-new" {
		t.Errorf("ID = %q, want totally-new", doc.ID)
	}
	if doc.Meta != (page.Meta{}) {
		t.Errorf("Meta = %+v, want empty", doc.Meta)
	}
	if doc.Sections == nil || len(doc.Sections) != 0 {
		t.Errorf("Sections = %v, want empty non-nil slice", doc.Sections)
	}
}

func TestLoadPrefersStoredDocument(t *testing.T) {
	st := memory.New()
	loader := NewLoader(st, nil)
	ctx := context.Background()

	stored, err := loader.Save(ctx, page.Document{
		ID:       PageHome,
		Meta:     page.Meta{Title: "Customized"},
		Sections: []page.Section{},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got := loader.Load(ctx, PageHome)
	if got.Meta.Title != "Customized" {
		t.Errorf("Title = %q, want the stored document, not the default", got.Meta.Title)
	}
	if got.Rev != stored.Rev {
		t.Errorf("Rev = %d, want %d", got.Rev, stored.Rev)
	}
}

// failingStore breaks every read to exercise the availability fallback.
type failingStore struct{ store.Store }

func (failingStore) Get(ctx context.Context, pageID string) (page.Document, error) {
	return page.Document{}, context.DeadlineExceeded
}

func TestLoadMasksStoreFailure(t *testing.T) {
	loader := NewLoader(failingStore{memory.New()}, nil)

	doc := loader.Load(context.Background(), PageHome)
	if doc.ID != PageHome || len(doc.Sections) == 0 {
		t.Errorf("store failure did not fall back to the default document: %+v", doc)
	}
}

func TestSaveConflict(t *testing.T) {
	st := memory.New()
	loader := NewLoader(st, nil)
	ctx := context.Background()

	base, err := loader.Save(ctx, DefaultDocument(PageHome))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := loader.Save(ctx, base); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	_, err = loader.Save(ctx, base)
	if !gperrors.Is(err, gperrors.ErrCodeConflict) {
		t.Errorf("stale Save() error code = %v, want %v", gperrors.GetCode(err), gperrors.ErrCodeConflict)
	}

	// The explicit overwrite path succeeds on the same stale base.
	if _, err := loader.ForceSave(ctx, base); err != nil {
		t.Errorf("ForceSave() error = %v", err)
	}
}

func TestSaveRejectsBadPageID(t *testing.T) {
	loader := NewLoader(memory.New(), nil)

	_, err := loader.Save(context.Background(), page.Document{ID: "../etc/passwd"})
	if !gperrors.Is(err, gperrors.ErrCodeInvalidPage) {
		t.Errorf("error code = %v, want %v", gperrors.GetCode(err), gperrors.ErrCodeInvalidPage)
	}
}

func TestSubscribe(t *testing.T) {
	st := memory.New()
	loader := NewLoader(st, nil)
	ctx := context.Background()

	got := make(chan page.Document, 8)
	unsubscribe, err := loader.Subscribe(ctx, PageHome, func(doc page.Document) {
		got <- doc
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer unsubscribe()

	stored, err := loader.Save(ctx, DefaultDocument(PageHome))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	doc := <-got
	if doc.Rev != stored.Rev {
		t.Errorf("callback Rev = %d, want %d", doc.Rev, stored.Rev)
	}
}

func TestSubscribeDropsBufferedUpdatesAfterUnsubscribe(t *testing.T) {
	st := memory.New()
	loader := NewLoader(st, nil)
	ctx := context.Background()

	gate := make(chan struct{})
	entered := make(chan struct{}, 4)
	got := make(chan page.Document)
	unsubscribe, err := loader.Subscribe(ctx, PageHome, func(doc page.Document) {
		entered <- struct{}{}
		<-gate
		got <- doc
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	// First write blocks inside the callback; the rest queue up in the
	// subscription buffer behind it.
	for i := 0; i < 3; i++ {
		if _, err := loader.ForceSave(ctx, DefaultDocument(PageHome)); err != nil {
			t.Fatalf("ForceSave() error = %v", err)
		}
	}

	<-entered // first callback is in flight
	unsubscribe()
	close(gate)

	// The in-flight callback completes; the buffered snapshots must not.
	first := <-got
	if first.Rev != 1 {
		t.Errorf("in-flight callback Rev = %d, want 1", first.Rev)
	}
	select {
	case doc := <-got:
		t.Errorf("buffered snapshot rev %d applied after unsubscribe", doc.Rev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestLoadRejectsBadPageID(t *testing.T) {
	st := &recordingStore{Store: memory.New()}
	loader := NewLoader(st, nil)

	doc := loader.Load(context.Background(), "../escape")
	if st.gets != 0 {
		t.Errorf("store.Get called %d times for a traversal id, want 0", st.gets)
	}
	if doc.ID != "../escape" || len(doc.Sections) != 0 {
		t.Errorf("invalid id should yield the empty default, got %+v", doc)
	}

	// Valid ids still reach the store.
	loader.Load(context.Background(), PageHome)
	if st.gets != 1 {
		t.Errorf("store.Get called %d times for a valid id, want 1", st.gets)
	}
}

// recordingStore counts reads to verify what reaches the backend.
type recordingStore struct {
	store.Store
	gets int
}

func (s *recordingStore) Get(ctx context.Context, pageID string) (page.Document, error) {
	s.gets++
	return s.Store.Get(ctx, pageID)
}

func TestDefaultDocumentDeterministic(t *testing.T) {
	for _, id := range []string{PageHome, PagePricing, PageStudio, "other"} {
		a := DefaultDocument(id)
		b := DefaultDocument(id)
		da, _ := page.Marshal(a)
		db, _ := page.Marshal(b)
		if string(da) != string(db) {
			t.Errorf("DefaultDocument(%q) not deterministic", id)
		}
	}
}
