package data

import (
	"fmt"
	"os"

	"github.com/assemblyline/core/internal/pool"
	"gopkg.in/yaml.v3"
)

// PieceTemplate holds static data for one piece kind.
type PieceTemplate struct {
	Key    string  `yaml:"key"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type catalogFile struct {
	Pieces []PieceTemplate `yaml:"pieces"`
}

// Catalog maps piece types to their templates. Types are assigned in file
// order, so the first entry is pool.Piece1.
type Catalog struct {
	pieces []PieceTemplate
}

// DefaultCatalog is the four 50x50 pieces of the prototype.
func DefaultCatalog() *Catalog {
	c, _ := NewCatalog([]PieceTemplate{
		{Key: "piece1", Width: 50, Height: 50},
		{Key: "piece2", Width: 50, Height: 50},
		{Key: "piece3", Width: 50, Height: 50},
		{Key: "piece4", Width: 50, Height: 50},
	})
	return c
}

// NewCatalog validates templates and assigns their types.
func NewCatalog(pieces []PieceTemplate) (*Catalog, error) {
	if len(pieces) == 0 {
		return nil, fmt.Errorf("piece catalog is empty")
	}
	if len(pieces) > pool.MaxTypes {
		return nil, fmt.Errorf("piece catalog has %d entries, max %d", len(pieces), pool.MaxTypes)
	}
	c := &Catalog{pieces: append([]PieceTemplate(nil), pieces...)}
	seen := make(map[string]bool, len(pieces))
	for i, p := range c.pieces {
		if p.Key == "" {
			return nil, fmt.Errorf("piece %d has no key", i)
		}
		if p.Width <= 0 || p.Height <= 0 {
			return nil, fmt.Errorf("piece %q has non-positive size", p.Key)
		}
		if seen[p.Key] {
			return nil, fmt.Errorf("duplicate piece key %q", p.Key)
		}
		seen[p.Key] = true
	}
	return c, nil
}

// LoadCatalog loads piece templates from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read piece_list: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse piece_list: %w", err)
	}
	return NewCatalog(f.Pieces)
}

// Types returns the catalog's piece types in order.
func (c *Catalog) Types() []pool.Type {
	out := make([]pool.Type, len(c.pieces))
	for i := range c.pieces {
		out[i] = pool.Type(i)
	}
	return out
}

// Get returns the template for t.
func (c *Catalog) Get(t pool.Type) (PieceTemplate, bool) {
	if int(t) >= len(c.pieces) {
		return PieceTemplate{}, false
	}
	return c.pieces[t], true
}

// Footprint returns the hit-box size of t.
func (c *Catalog) Footprint(t pool.Type) (w, h float64) {
	p, ok := c.Get(t)
	if !ok {
		return 0, 0
	}
	return p.Width, p.Height
}

// Count returns the number of piece kinds.
func (c *Catalog) Count() int { return len(c.pieces) }
