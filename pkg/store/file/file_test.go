package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gridpress/gridpress/pkg/page"
	"github.com/gridpress/gridpress/pkg/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "pages"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func doc(id string, rev int64) page.Document {
	return page.Document{
		ID:  id,
		Rev: rev,
		Sections: []page.Section{
			{ID: "s1", Type: "Spacer", Layout: &page.Layout{W: 12, H: 2}},
		},
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if _, err := New(dir); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("store directory not created: %v", err)
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stored, err := s.Put(ctx, doc("home", 0))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if stored.Rev != 1 {
		t.Errorf("Rev = %d, want 1", stored.Rev)
	}

	got, err := s.Get(ctx, "home")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != "home" || got.Rev != 1 || len(got.Sections) != 1 {
		t.Errorf("Get() = %+v, want the stored document", got)
	}

	// The document survives a fresh store over the same directory.
	s2, err := New(s.dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got, err = s2.Get(ctx, "home")
	if err != nil {
		t.Fatalf("Get() on reopened store error = %v", err)
	}
	if got.Rev != 1 {
		t.Errorf("reopened Rev = %d, want 1", got.Rev)
	}
}

func TestPutConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base, err := s.Put(ctx, doc("home", 0))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := s.Put(ctx, base); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := s.Put(ctx, base); !errors.Is(err, store.ErrConflict) {
		t.Errorf("stale Put() error = %v, want ErrConflict", err)
	}
}

func TestForcePut(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Put(ctx, doc("home", 0)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	stored, err := s.ForcePut(ctx, doc("home", 42))
	if err != nil {
		t.Fatalf("ForcePut() error = %v", err)
	}
	if stored.Rev != 2 {
		t.Errorf("Rev = %d, want 2", stored.Rev)
	}
}

func TestWatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub, err := s.Watch(ctx, "home")
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer sub.Unsubscribe()

	stored, err := s.Put(ctx, doc("home", 0))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	select {
	case got := <-sub.Updates():
		if got.Rev != stored.Rev {
			t.Errorf("snapshot Rev = %d, want %d", got.Rev, stored.Rev)
		}
	default:
		t.Fatal("no snapshot delivered after Put")
	}
}

func TestClose(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub, err := s.Watch(ctx, "home")
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, open := <-sub.Updates(); open {
		t.Error("subscription channel still open after Close")
	}
	if _, err := s.Put(ctx, doc("home", 0)); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Put after Close error = %v, want ErrClosed", err)
	}
}
