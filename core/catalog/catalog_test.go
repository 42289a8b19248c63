package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	ferrors "github.com/FocuswithJustin/FieldChart/core/errors"
	"github.com/FocuswithJustin/FieldChart/core/show"
	"github.com/google/uuid"
)

func openCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleShow(t *testing.T, labels ...string) *show.Show {
	t.Helper()
	s := show.New(show.DefaultShowMode())
	ms := make([]show.Marcher, len(labels))
	for i, l := range labels {
		ms[i] = show.Marcher{Label: l}
	}
	p, err := s.CreateSetupMarchersCommand(ms, 4, show.Coord{})
	if err != nil {
		t.Fatal(err)
	}
	p.Apply(s)
	return s
}

// TestRegisterAndGet verifies a registered show can be read back by ID and
// by path with its summary intact.
func TestRegisterAndGet(t *testing.T) {
	ctx := context.Background()
	c := openCatalog(t)
	s := sampleShow(t, "A", "B", "C")

	e, err := c.Register(ctx, "opener.shw", s)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := uuid.Parse(e.ID); err != nil {
		t.Errorf("Register() ID = %q, not a UUID", e.ID)
	}
	if !filepath.IsAbs(e.Path) {
		t.Errorf("Register() Path = %q, want absolute", e.Path)
	}
	if e.Marchers != 3 || e.Sheets != 1 || e.Fingerprint != s.Fingerprint() {
		t.Errorf("Register() = %+v, summary does not match the show", e)
	}

	got, err := c.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != e {
		t.Errorf("Get() = %+v, want %+v", got, e)
	}
	byPath, err := c.FindByPath(ctx, "opener.shw")
	if err != nil || byPath.ID != e.ID {
		t.Errorf("FindByPath() = %+v, %v; want ID %s", byPath, err, e.ID)
	}
}

// TestRegisterKeepsID verifies re-registering a path refreshes the summary
// and keeps the original ID and registration time.
func TestRegisterKeepsID(t *testing.T) {
	ctx := context.Background()
	c := openCatalog(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := now
	defer func() { now = old }()
	now = func() time.Time { return base }

	first, err := c.Register(ctx, "show.shw", sampleShow(t, "A"))
	if err != nil {
		t.Fatal(err)
	}
	now = func() time.Time { return base.Add(time.Hour) }
	second, err := c.Register(ctx, "show.shw", sampleShow(t, "A", "B"))
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("ID changed: %s -> %s", first.ID, second.ID)
	}
	if !second.RegisteredAt.Equal(base) || !second.UpdatedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("times = %v / %v", second.RegisteredAt, second.UpdatedAt)
	}
	if second.Marchers != 2 {
		t.Errorf("Marchers = %d, want 2", second.Marchers)
	}
	list, err := c.List(ctx)
	if err != nil || len(list) != 1 {
		t.Errorf("List() = %d entries, %v; want 1", len(list), err)
	}
}

func TestListOrderedByPath(t *testing.T) {
	ctx := context.Background()
	c := openCatalog(t)
	dir := t.TempDir()
	for _, name := range []string{"c.shw", "a.shw", "b.shw"} {
		if _, err := c.Register(ctx, filepath.Join(dir, name), sampleShow(t, "X")); err != nil {
			t.Fatal(err)
		}
	}
	list, err := c.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range list {
		names = append(names, filepath.Base(e.Path))
	}
	want := []string{"a.shw", "b.shw", "c.shw"}
	if len(names) != len(want) {
		t.Fatalf("List() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	c := openCatalog(t)
	e, err := c.Register(ctx, "gone.shw", sampleShow(t, "A"))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Remove(ctx, e.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	var nf *ferrors.NotFoundError
	if _, err := c.Get(ctx, e.ID); !errors.As(err, &nf) {
		t.Errorf("Get() after Remove() error = %v, want NotFoundError", err)
	}
	if err := c.Remove(ctx, e.ID); !errors.As(err, &nf) {
		t.Errorf("second Remove() error = %v, want NotFoundError", err)
	}
	if _, err := c.FindByPath(ctx, "gone.shw"); !errors.As(err, &nf) {
		t.Errorf("FindByPath() error = %v, want NotFoundError", err)
	}
}

// TestReopenKeepsEntries verifies migrations are idempotent across opens.
func TestReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")
	c, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	e, err := c.Register(ctx, "kept.shw", sampleShow(t, "A"))
	if err != nil {
		t.Fatal(err)
	}
	c.Close()

	c, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer c.Close()
	if _, err := c.Get(ctx, e.ID); err != nil {
		t.Errorf("Get() after reopen error = %v", err)
	}
}

func TestValidation(t *testing.T) {
	var ve *ferrors.ValidationError
	if _, err := Open(context.Background(), " "); !errors.As(err, &ve) {
		t.Errorf("Open(blank) error = %v, want ValidationError", err)
	}
	c := openCatalog(t)
	if _, err := c.Register(context.Background(), "", sampleShow(t, "A")); !errors.As(err, &ve) {
		t.Errorf("Register(blank) error = %v, want ValidationError", err)
	}
}

func TestUpSection(t *testing.T) {
	got := upSection("-- +migrate Up\nCREATE X;\n-- +migrate Down\nDROP X;\n")
	if got != "\nCREATE X;\n" {
		t.Errorf("upSection() = %q", got)
	}
	if upSection("SELECT 1;") != "SELECT 1;" {
		t.Error("upSection() without markers changed the content")
	}
}

func TestCloseNil(t *testing.T) {
	var c *Catalog
	if err := c.Close(); err != nil {
		t.Errorf("Close() on nil = %v", err)
	}
}
