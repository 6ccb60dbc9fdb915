package grading

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mind-engage/mindengage-academics/internal/shared"
)

// Band maps every percentage at or above MinPercentage (and below the next
// higher band) to Grade.
type Band struct {
	MinPercentage float64     `json:"min_percentage" yaml:"min"`
	Grade         LetterGrade `json:"grade" yaml:"grade"`
}

// Scale is an immutable cutoff table, highest threshold first.
type Scale struct {
	bands []Band
}

var defaultBands = []Band{
	{97, GradeAPlus},
	{93, GradeA},
	{90, GradeAMinus},
	{87, GradeBPlus},
	{83, GradeB},
	{80, GradeBMinus},
	{77, GradeCPlus},
	{70, GradeC},
	{60, GradeD},
	{0, GradeF},
}

// DefaultScale returns the institution's stock cutoff table.
func DefaultScale() *Scale {
	s, err := NewScale(defaultBands)
	if err != nil {
		panic(err)
	}
	return s
}

// NewScale validates and sorts bands. Every band must map to a grade that
// carries grade points, thresholds must be distinct, and a floor band at 0
// must exist so that every percentage in [0,100] resolves.
func NewScale(bands []Band) (*Scale, error) {
	if len(bands) == 0 {
		return nil, shared.Validation("grading", "NewScale", "scale has no bands")
	}
	out := make([]Band, len(bands))
	copy(out, bands)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinPercentage > out[j].MinPercentage })

	seen := make(map[float64]struct{}, len(out))
	for _, b := range out {
		if math.IsNaN(b.MinPercentage) || b.MinPercentage < 0 || b.MinPercentage > 100 {
			return nil, shared.Validation("grading", "NewScale", "threshold %v outside [0,100]", b.MinPercentage)
		}
		if _, dup := seen[b.MinPercentage]; dup {
			return nil, shared.Validation("grading", "NewScale", "duplicate threshold %v", b.MinPercentage)
		}
		seen[b.MinPercentage] = struct{}{}
		if _, hasPoints, err := GradeToPoints(b.Grade); err != nil {
			return nil, err
		} else if !hasPoints {
			return nil, shared.Validation("grading", "NewScale", "grade %s carries no grade points", b.Grade)
		}
	}
	if out[len(out)-1].MinPercentage != 0 {
		return nil, shared.Validation("grading", "NewScale", "lowest band must start at 0")
	}
	return &Scale{bands: out}, nil
}

// PercentageToGrade returns the grade of the highest band whose threshold
// pct reaches. Values below 0 fall into the lowest band.
func (s *Scale) PercentageToGrade(pct float64) LetterGrade {
	for _, b := range s.bands {
		if pct >= b.MinPercentage {
			return b.Grade
		}
	}
	return s.bands[len(s.bands)-1].Grade
}

// Bands returns a copy of the table, highest threshold first.
func (s *Scale) Bands() []Band {
	out := make([]Band, len(s.bands))
	copy(out, s.bands)
	return out
}

type scaleFile struct {
	Bands []struct {
		Min   float64 `yaml:"min"`
		Grade string  `yaml:"grade"`
	} `yaml:"bands"`
}

// ParseScale decodes a YAML cutoff table:
//
//	bands:
//	  - {min: 90, grade: A}
//	  - {min: 0, grade: F}
func ParseScale(data []byte) (*Scale, error) {
	var f scaleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, shared.WrapError("grading", "ParseScale", shared.ErrValidation, "malformed scale", err)
	}
	bands := make([]Band, 0, len(f.Bands))
	for _, b := range f.Bands {
		g, err := ParseLetterGrade(b.Grade)
		if err != nil {
			return nil, err
		}
		bands = append(bands, Band{MinPercentage: b.Min, Grade: g})
	}
	return NewScale(bands)
}

// LoadScale reads a YAML cutoff table from path. An empty path yields the
// default scale.
func LoadScale(path string) (*Scale, error) {
	if path == "" {
		return DefaultScale(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grade scale: %w", err)
	}
	return ParseScale(data)
}
