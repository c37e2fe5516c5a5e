package subscription

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Bucket maps a range of optimal intervals to the alternative intervals
// offered alongside. Buckets are matched in order; MaxDays of zero means the
// bucket is open-ended.
type Bucket struct {
	MaxDays      int   `yaml:"max_days"`
	Alternatives []int `yaml:"alternatives"`
}

// Ladder is the interval offer configuration.
type Ladder struct {
	Buckets             []Bucket `yaml:"buckets"`
	DefaultInterval     int      `yaml:"default_interval"`
	DefaultAlternatives []int    `yaml:"default_alternatives"`
}

// DefaultLadder returns the compiled-in interval ladder.
func DefaultLadder() Ladder {
	return Ladder{
		Buckets: []Bucket{
			{MaxDays: 15, Alternatives: []int{7, 15, 30}},
			{MaxDays: 30, Alternatives: []int{15, 30, 45}},
			{MaxDays: 60, Alternatives: []int{30, 60, 90}},
			{MaxDays: 90, Alternatives: []int{60, 90, 120}},
			{MaxDays: 0, Alternatives: []int{90, 120, 180}},
		},
		DefaultInterval:     30,
		DefaultAlternatives: []int{15, 30, 45, 60},
	}
}

// LoadLadder parses a ladder from YAML.
func LoadLadder(r io.Reader) (Ladder, error) {
	var l Ladder
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil {
		return Ladder{}, errors.Join(ErrInvalidLadder, err)
	}
	if err := l.validate(); err != nil {
		return Ladder{}, err
	}
	return l, nil
}

// LoadLadderFile parses a ladder from a YAML file.
func LoadLadderFile(path string) (Ladder, error) {
	f, err := os.Open(path)
	if err != nil {
		return Ladder{}, errors.Join(ErrInvalidLadder, err)
	}
	defer f.Close()
	return LoadLadder(f)
}

func (l Ladder) validate() error {
	if len(l.Buckets) == 0 {
		return errors.Join(ErrInvalidLadder, errors.New("at least one bucket is required"))
	}
	prev := 0
	for i, b := range l.Buckets {
		if len(b.Alternatives) == 0 {
			return errors.Join(ErrInvalidLadder, fmt.Errorf("bucket %d has no alternatives", i))
		}
		open := b.MaxDays == 0
		if open && i != len(l.Buckets)-1 {
			return errors.Join(ErrInvalidLadder, errors.New("only the last bucket may be open-ended"))
		}
		if !open && b.MaxDays <= prev {
			return errors.Join(ErrInvalidLadder, errors.New("bucket thresholds must be strictly increasing"))
		}
		prev = b.MaxDays
	}
	if l.DefaultInterval <= 0 || len(l.DefaultAlternatives) == 0 {
		return errors.Join(ErrInvalidLadder, errors.New("default offer is required"))
	}
	return nil
}

func (l Ladder) bucketFor(optimal int) Bucket {
	for _, b := range l.Buckets {
		if b.MaxDays == 0 || optimal <= b.MaxDays {
			return b
		}
	}
	// Unreachable with a validated ladder, but degrade usefully anyway.
	return Bucket{Alternatives: slices.Clone(l.DefaultAlternatives)}
}
