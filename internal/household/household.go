// Package household loads and validates the YAML file describing a
// household: kids, chores, rewards and penalties. The file is the
// configuration intake; runtime state never lives here.
package household

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ccpk1/kidschores-ha-sub008/internal/engine"
)

type File struct {
	Household string       `yaml:"household"`
	Timezone  string       `yaml:"timezone,omitempty"`
	Kids      []KidDef     `yaml:"kids"`
	Chores    []ChoreDef   `yaml:"chores"`
	Rewards   []RewardDef  `yaml:"rewards,omitempty"`
	Penalties []PenaltyDef `yaml:"penalties,omitempty"`
}

type KidDef struct {
	Name       string  `yaml:"name"`
	Multiplier float64 `yaml:"multiplier,omitempty"`
}

type ChoreDef struct {
	Name         string     `yaml:"name"`
	Description  string     `yaml:"description,omitempty"`
	Assigned     []string   `yaml:"assigned"`
	Points       float64    `yaml:"points"`
	Criteria     string     `yaml:"criteria,omitempty"`
	Reset        string     `yaml:"reset,omitempty"`
	Overdue      string     `yaml:"overdue,omitempty"`
	PendingClaim string     `yaml:"pending_claim,omitempty"`
	Interval     string     `yaml:"interval,omitempty"`
	Due          *time.Time `yaml:"due,omitempty"`
}

type RewardDef struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	Cost        float64 `yaml:"cost"`
}

type PenaltyDef struct {
	Name   string  `yaml:"name"`
	Points float64 `yaml:"points"`
}

// Parse decodes and validates a household payload.
func Parse(data []byte) (*File, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("household: file is empty")
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("household: decode: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile reads and parses a household YAML file from disk.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("household: read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("household: %s: %w", path, err)
	}
	return f, nil
}

func (f *File) Validate() error {
	if len(f.Kids) == 0 {
		return fmt.Errorf("household: at least one kid is required")
	}
	kidNames := map[string]bool{}
	for i, k := range f.Kids {
		name := strings.TrimSpace(k.Name)
		if name == "" {
			return fmt.Errorf("household: kid %d has no name", i+1)
		}
		lower := strings.ToLower(name)
		if kidNames[lower] {
			return fmt.Errorf("household: duplicate kid %q", name)
		}
		kidNames[lower] = true
		if k.Multiplier < 0 {
			return fmt.Errorf("household: kid %q has a negative multiplier", name)
		}
	}

	choreNames := map[string]bool{}
	for i, c := range f.Chores {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("household: chore %d has no name", i+1)
		}
		lower := strings.ToLower(name)
		if choreNames[lower] {
			return fmt.Errorf("household: duplicate chore %q", name)
		}
		choreNames[lower] = true
		if len(c.Assigned) == 0 {
			return fmt.Errorf("household: chore %q has no assigned kids", name)
		}
		for _, a := range c.Assigned {
			if !kidNames[strings.ToLower(strings.TrimSpace(a))] {
				return fmt.Errorf("household: chore %q assigned to unknown kid %q", name, a)
			}
		}
		if c.Points < 0 {
			return fmt.Errorf("household: chore %q has negative points", name)
		}
		if _, err := engine.ParseCompletionCriteria(c.Criteria); err != nil {
			return fmt.Errorf("household: chore %q: %w", name, err)
		}
		if _, err := engine.ParseResetMode(c.Reset); err != nil {
			return fmt.Errorf("household: chore %q: %w", name, err)
		}
		if _, err := engine.ParseOverdueMode(c.Overdue); err != nil {
			return fmt.Errorf("household: chore %q: %w", name, err)
		}
		if _, err := engine.ParsePendingClaimAction(c.PendingClaim); err != nil {
			return fmt.Errorf("household: chore %q: %w", name, err)
		}
		if _, err := engine.ParseInterval(c.Interval); err != nil {
			return fmt.Errorf("household: chore %q: %w", name, err)
		}
	}

	for i, w := range f.Rewards {
		if strings.TrimSpace(w.Name) == "" {
			return fmt.Errorf("household: reward %d has no name", i+1)
		}
		if w.Cost <= 0 {
			return fmt.Errorf("household: reward %q needs a positive cost", w.Name)
		}
	}
	for i, p := range f.Penalties {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("household: penalty %d has no name", i+1)
		}
		if p.Points <= 0 {
			return fmt.Errorf("household: penalty %q needs positive points", p.Name)
		}
	}
	return nil
}

// Starter returns a commented example household file.
func Starter() []byte {
	return []byte(`household: Our Family
# timezone: America/New_York

kids:
  - name: Ada
  - name: Ben
    multiplier: 1.5

chores:
  - name: Dishes
    assigned: [Ada, Ben]
    points: 5
    criteria: shared_first
    reset: at_midnight_once
    overdue: at_due_date
    interval: daily
  - name: Make bed
    assigned: [Ada]
    points: 2
    reset: at_midnight_once
    interval: daily
  - name: Practice piano
    assigned: [Ben]
    points: 3
    reset: upon_completion

rewards:
  - name: Movie night
    cost: 50
  - name: Ice cream
    cost: 20

penalties:
  - name: Left a mess
    points: 5
`)
}
