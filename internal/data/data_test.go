package data

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/assemblyline/core/internal/pool"
	"github.com/assemblyline/core/internal/spawn"
)

func TestParseSpawnCurve(t *testing.T) {
	c, err := ParseSpawnCurve([]byte(`
steps:
  - {up_to: 5, interval_ms: 2000}
  - {up_to: 10, interval_ms: 1200}
beyond_ms: 800
`))
	if err != nil {
		t.Fatalf("ParseSpawnCurve: %v", err)
	}
	for n, want := range map[int]time.Duration{0: 2 * time.Second, 5: 2 * time.Second, 6: 1200 * time.Millisecond, 11: 800 * time.Millisecond} {
		if got := c.Interval(n); got != want {
			t.Fatalf("Interval(%d)=%s, want %s", n, got, want)
		}
	}
}

func TestParseSpawnCurveRejectsIncreasing(t *testing.T) {
	_, err := ParseSpawnCurve([]byte(`
steps:
  - {up_to: 5, interval_ms: 1000}
  - {up_to: 10, interval_ms: 2000}
beyond_ms: 500
`))
	if !errors.Is(err, spawn.ErrCurveMonotone) {
		t.Fatalf("err=%v, want ErrCurveMonotone", err)
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "piece_list.yaml")
	body := `
pieces:
  - {key: gear, width: 40, height: 40}
  - {key: bolt, width: 20, height: 60}
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if c.Count() != 2 {
		t.Fatalf("Count=%d", c.Count())
	}
	bolt, ok := c.Get(pool.Piece2)
	if !ok || bolt.Key != "bolt" {
		t.Fatalf("Get(Piece2)=%+v,%v", bolt, ok)
	}
	if w, h := c.Footprint(pool.Piece2); w != 20 || h != 60 {
		t.Fatalf("Footprint=%v,%v", w, h)
	}
}

func TestNewCatalogValidation(t *testing.T) {
	if _, err := NewCatalog(nil); err == nil {
		t.Fatalf("empty catalog accepted")
	}
	if _, err := NewCatalog([]PieceTemplate{{Key: "a", Width: 1, Height: 1}, {Key: "a", Width: 1, Height: 1}}); err == nil {
		t.Fatalf("duplicate key accepted")
	}
	many := make([]PieceTemplate, pool.MaxTypes+1)
	for i := range many {
		many[i] = PieceTemplate{Key: string(rune('a' + i)), Width: 1, Height: 1}
	}
	if _, err := NewCatalog(many); err == nil {
		t.Fatalf("oversized catalog accepted")
	}
}

func TestDefaultCatalogMatchesDefaultTypes(t *testing.T) {
	c := DefaultCatalog()
	types := c.Types()
	if len(types) != len(pool.DefaultTypes) {
		t.Fatalf("types=%v", types)
	}
	for i, typ := range types {
		if typ != pool.DefaultTypes[i] {
			t.Fatalf("types=%v", types)
		}
		p, _ := c.Get(typ)
		if p.Key != typ.String() {
			t.Fatalf("key %q for %v", p.Key, typ)
		}
	}
}

func TestShippedDataMatchesDefaults(t *testing.T) {
	dir := filepath.Join("..", "..", "data", "yaml")
	c, err := LoadCatalog(filepath.Join(dir, "piece_list.yaml"))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if c.Count() != DefaultCatalog().Count() {
		t.Fatalf("catalog has %d pieces", c.Count())
	}

	curve, err := LoadSpawnCurve(filepath.Join(dir, "spawn_curve.yaml"))
	if err != nil {
		t.Fatalf("LoadSpawnCurve: %v", err)
	}
	def := spawn.DefaultCurve()
	for _, n := range []int{0, 15, 16, 25, 26, 50, 75, 100, 101, 500} {
		if curve.Interval(n) != def.Interval(n) {
			t.Fatalf("Interval(%d)=%s, default %s", n, curve.Interval(n), def.Interval(n))
		}
	}
}
