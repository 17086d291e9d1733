package data

import (
	"fmt"
	"os"
	"time"

	"github.com/assemblyline/core/internal/spawn"
	"gopkg.in/yaml.v3"
)

// CurveStep is one row of spawn_curve.yaml.
type CurveStep struct {
	UpTo       int `yaml:"up_to"`
	IntervalMs int `yaml:"interval_ms"`
}

type curveFile struct {
	Steps    []CurveStep `yaml:"steps"`
	BeyondMs int         `yaml:"beyond_ms"`
}

// LoadSpawnCurve loads a difficulty curve from a YAML file.
func LoadSpawnCurve(path string) (spawn.Curve, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return spawn.Curve{}, fmt.Errorf("read spawn_curve: %w", err)
	}
	return ParseSpawnCurve(raw)
}

// ParseSpawnCurve decodes and validates a difficulty curve.
func ParseSpawnCurve(raw []byte) (spawn.Curve, error) {
	var f curveFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return spawn.Curve{}, fmt.Errorf("parse spawn_curve: %w", err)
	}
	steps := make([]spawn.Step, len(f.Steps))
	for i, s := range f.Steps {
		steps[i] = spawn.Step{UpTo: s.UpTo, Interval: time.Duration(s.IntervalMs) * time.Millisecond}
	}
	c, err := spawn.NewCurve(steps, time.Duration(f.BeyondMs)*time.Millisecond)
	if err != nil {
		return spawn.Curve{}, fmt.Errorf("spawn_curve: %w", err)
	}
	return c, nil
}
