package household

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccpk1/kidschores-ha-sub008/internal/storage"
)

func TestStarterParses(t *testing.T) {
	f, err := Parse(Starter())
	if err != nil {
		t.Fatalf("Parse(Starter()): %v", err)
	}
	if f.Household == "" || len(f.Kids) == 0 || len(f.Chores) == 0 {
		t.Fatalf("starter incomplete: %+v", f)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "", "empty"},
		{"no kids", "household: x\nchores: []\n", "at least one kid"},
		{
			"duplicate kid",
			"kids:\n  - name: Ada\n  - name: ada\n",
			"duplicate kid",
		},
		{
			"unknown assignee",
			"kids:\n  - name: Ada\nchores:\n  - name: Dishes\n    assigned: [Ben]\n    points: 1\n",
			"unknown kid",
		},
		{
			"no assignees",
			"kids:\n  - name: Ada\nchores:\n  - name: Dishes\n    assigned: []\n    points: 1\n",
			"no assigned kids",
		},
		{
			"bad reset mode",
			"kids:\n  - name: Ada\nchores:\n  - name: Dishes\n    assigned: [Ada]\n    points: 1\n    reset: hourly\n",
			"invalid reset mode",
		},
		{
			"bad criteria",
			"kids:\n  - name: Ada\nchores:\n  - name: Dishes\n    assigned: [Ada]\n    points: 1\n    criteria: race\n",
			"invalid completion criteria",
		},
		{
			"free reward",
			"kids:\n  - name: Ada\nrewards:\n  - name: Hug\n    cost: 0\n",
			"positive cost",
		},
	}
	for _, c := range cases {
		_, err := Parse([]byte(c.yaml))
		if err == nil {
			t.Errorf("%s: no error", c.name)
			continue
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Errorf("%s: error %q does not mention %q", c.name, err, c.want)
		}
	}
}

func TestApplyMergesByName(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	store := storage.NewStore(db)

	first, err := Parse([]byte(`
kids:
  - name: Ada
chores:
  - name: Dishes
    assigned: [Ada]
    points: 5
    reset: at_midnight_once
`))
	if err != nil {
		t.Fatalf("parse first: %v", err)
	}
	reg, err := storage.LoadRegistry(ctx, db)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if err := Apply(ctx, first, reg, store); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	kid, err := reg.KidByName("Ada")
	if err != nil {
		t.Fatalf("kid not created: %v", err)
	}
	kid.Balance = 42 // runtime state that a re-load must not touch

	second, err := Parse([]byte(`
kids:
  - name: Ada
    multiplier: 2
chores:
  - name: Dishes
    assigned: [Ada]
    points: 8
    reset: at_midnight_multi
`))
	if err != nil {
		t.Fatalf("parse second: %v", err)
	}
	if err := Apply(ctx, second, reg, store); err != nil {
		t.Fatalf("re-apply: %v", err)
	}

	again, err := reg.KidByName("Ada")
	if err != nil {
		t.Fatalf("kid lost: %v", err)
	}
	if again.ID != kid.ID {
		t.Fatal("re-apply recreated the kid instead of updating in place")
	}
	if again.Multiplier != 2 || again.Balance != 42 {
		t.Fatalf("multiplier=%v balance=%v, want 2/42", again.Multiplier, again.Balance)
	}
	def, err := reg.ChoreByName("Dishes")
	if err != nil {
		t.Fatalf("chore lost: %v", err)
	}
	if def.Points != 8 || string(def.ResetMode) != "at_midnight_multi" {
		t.Fatalf("chore not updated: %+v", def)
	}
	if len(reg.Chores()) != 1 || len(reg.Kids()) != 1 {
		t.Fatalf("duplicates after re-apply: %d kids, %d chores", len(reg.Kids()), len(reg.Chores()))
	}
}
