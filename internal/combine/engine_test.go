package combine_test

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/OCharnyshevich/craft-properties/internal/combine"
	"github.com/OCharnyshevich/craft-properties/internal/properties"
	"github.com/OCharnyshevich/craft-properties/pkg/gamedata"
)

type mapRegistry map[string]gamedata.Attribute

func (m mapRegistry) ByName(name string) (gamedata.Attribute, bool) {
	a, ok := m[name]
	return a, ok
}

func (m mapRegistry) All() []gamedata.Attribute { return nil }

var testCatalog = mapRegistry{
	"A": {Name: "A", Min: 0, Max: 100},
	"B": {Name: "B", Min: 0, Max: 10},
	"C": {Name: "C", Min: -5, Max: 5},
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSet(t *testing.T, owner string, vals map[string]int) *properties.Set {
	t.Helper()
	s := properties.New(owner, testCatalog, properties.WithLogger(discard()))
	for _, name := range []string{"A", "B", "C"} {
		v, ok := vals[name]
		if !ok {
			continue
		}
		if _, err := s.AddValue(name, v); err != nil {
			t.Fatalf("AddValue(%s): %v", name, err)
		}
	}
	return s
}

func get(t *testing.T, s *properties.Set, name string) *properties.Instance {
	t.Helper()
	inst, err := s.Get(name)
	if err != nil {
		t.Fatalf("Get(%s): %v", name, err)
	}
	return inst
}

func TestReplaceIfHigher(t *testing.T) {
	tests := []struct {
		name          string
		target, other int
		want          int
		keepsTarget   bool
	}{
		{"incoming_higher", 5, 9, 9, false},
		{"incoming_lower", 9, 5, 9, true},
		{"tie_keeps_incumbent", 9, 9, 9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := newSet(t, "Stick", map[string]int{"A": tt.target})
			incoming := newSet(t, "Stone", map[string]int{"A": tt.other})
			before := get(t, target, "A")
			incomingA := get(t, incoming, "A")

			got := combine.NewEngine(discard()).Combine(target, incoming.All(), combine.ReplaceIfHigher, combine.Hooks{})
			if got != target {
				t.Fatal("Combine must return the target set")
			}

			after := get(t, target, "A")
			if after.Value() != tt.want {
				t.Errorf("A = %d, want %d", after.Value(), tt.want)
			}
			if tt.keepsTarget && after != before {
				t.Error("expected the incumbent instance to be kept")
			}
			if !tt.keepsTarget && after != incomingA {
				t.Error("expected the incoming instance to be moved into the target")
			}
		})
	}
}

func TestSumClamped_UsesTargetBounds(t *testing.T) {
	target := newSet(t, "Stick", map[string]int{"A": 80})
	incoming := []*properties.Instance{properties.NewInstance("A", 0, 1000, 30)}

	combine.NewEngine(discard()).Combine(target, incoming, combine.SumClamped, combine.Hooks{})

	a := get(t, target, "A")
	if a.Value() != 100 {
		t.Errorf("A = %d, want 100", a.Value())
	}
	if a.Max() != 100 {
		t.Errorf("target bounds changed: max = %d", a.Max())
	}
}

func TestSumClamped_ClampsBelowMin(t *testing.T) {
	target := newSet(t, "Stick", map[string]int{"C": -3})
	incoming := []*properties.Instance{properties.NewInstance("C", -50, 50, -40)}

	combine.NewEngine(discard()).Combine(target, incoming, combine.SumClamped, combine.Hooks{})

	if got := get(t, target, "C").Value(); got != -5 {
		t.Errorf("C = %d, want -5", got)
	}
}

func TestSumClamped_SaturatesAtIntRange(t *testing.T) {
	tests := []struct {
		name     string
		target   *properties.Instance
		incoming *properties.Instance
		want     int
	}{
		{
			name:     "above",
			target:   properties.NewInstance("Big", 0, math.MaxInt, math.MaxInt-1),
			incoming: properties.NewInstance("Big", 0, math.MaxInt, 10),
			want:     math.MaxInt,
		},
		{
			name:     "below",
			target:   properties.NewInstance("Big", math.MinInt, 0, math.MinInt+1),
			incoming: properties.NewInstance("Big", math.MinInt, 0, -10),
			want:     math.MinInt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := properties.New("Stick", testCatalog, properties.WithLogger(discard()))
			if err := target.Insert(tt.target); err != nil {
				t.Fatalf("Insert: %v", err)
			}

			combine.NewEngine(discard()).Combine(target, []*properties.Instance{tt.incoming}, combine.SumClamped, combine.Hooks{})

			if got := get(t, target, "Big").Value(); got != tt.want {
				t.Errorf("Big = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCombine_OneSidedAttributeCopiedUntouched(t *testing.T) {
	for _, policy := range []combine.Policy{combine.ReplaceIfHigher, combine.SumClamped} {
		t.Run(policy.String(), func(t *testing.T) {
			target := newSet(t, "Stick", map[string]int{"A": 1})
			b := properties.NewInstance("B", 2, 70, 7)

			combine.NewEngine(discard()).Combine(target, []*properties.Instance{b}, policy, combine.Hooks{})

			got := get(t, target, "B")
			if got != b {
				t.Fatal("expected the incoming instance itself to be inserted")
			}
			if got.Value() != 7 || got.Min() != 2 || got.Max() != 70 {
				t.Errorf("B = %v, want incoming value and bounds", got)
			}
		})
	}
}

func TestCombine_HookOrder(t *testing.T) {
	var calls []string
	target := newSet(t, "Stick", map[string]int{"A": 1})
	hooks := combine.Hooks{
		Before: []combine.Hook{
			func() { calls = append(calls, "before-1") },
			nil,
			func() {
				calls = append(calls, "before-2")
				if get(t, target, "A").Value() != 1 {
					t.Error("before hook ran after the merge")
				}
			},
		},
		After: []combine.Hook{
			func() {
				calls = append(calls, "after")
				if get(t, target, "A").Value() != 4 {
					t.Error("after hook ran before the merge")
				}
			},
		},
	}

	combine.NewEngine(discard()).Combine(target, []*properties.Instance{properties.NewInstance("A", 0, 100, 3)}, combine.SumClamped, hooks)

	if diff := cmp.Diff([]string{"before-1", "before-2", "after"}, calls); diff != "" {
		t.Errorf("hook calls mismatch (-want +got):\n%s", diff)
	}
}

func TestCombine_DuplicateIncomingProcessedIndependently(t *testing.T) {
	target := newSet(t, "Stick", map[string]int{"A": 10})
	first := properties.NewInstance("A", 0, 100, 50)
	second := properties.NewInstance("A", 0, 100, 60)
	third := properties.NewInstance("A", 0, 100, 55)

	stats, err := combine.NewEngine(discard()).CombineStats(target, []*properties.Instance{first, second, third}, combine.ReplaceIfHigher, combine.Hooks{})
	if err != nil {
		t.Fatalf("CombineStats: %v", err)
	}

	if got := get(t, target, "A"); got != second {
		t.Errorf("expected the second duplicate to win, got %v", got)
	}
	want := combine.Stats{Replaced: 2, Discarded: 1}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}

	target = newSet(t, "Stick", map[string]int{"B": 1})
	combine.NewEngine(discard()).Combine(target, []*properties.Instance{
		properties.NewInstance("B", 0, 10, 4),
		properties.NewInstance("B", 0, 10, 4),
	}, combine.SumClamped, combine.Hooks{})
	if got := get(t, target, "B").Value(); got != 9 {
		t.Errorf("B = %d, want 9", got)
	}
}

func TestCombine_SumClampedDeterministic(t *testing.T) {
	run := func() map[string]int {
		target := newSet(t, "Stick", map[string]int{"A": 20, "B": 3, "C": 0})
		incoming := newSet(t, "Stone", map[string]int{"A": 50, "B": 9, "C": -2})
		combine.NewEngine(discard()).Combine(target, incoming.All(), combine.SumClamped, combine.Hooks{})
		out := make(map[string]int)
		for _, inst := range target.All() {
			out[inst.Name()] = inst.Value()
		}
		return out
	}

	first := run()
	if diff := cmp.Diff(map[string]int{"A": 70, "B": 10, "C": -2}, first); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first, run()); diff != "" {
		t.Errorf("non-deterministic result (-first +second):\n%s", diff)
	}
}

func TestCombine_RoundTripAfterMerge(t *testing.T) {
	target := newSet(t, "Stick", map[string]int{"A": 5})
	incoming := newSet(t, "Stone", map[string]int{"A": 9, "B": 4, "C": 1})

	combine.NewEngine(discard()).Combine(target, incoming.All(), combine.ReplaceIfHigher, combine.Hooks{})
	incoming.Clear()

	want := map[string]int{"A": 9, "B": 4, "C": 1}
	for _, inst := range target.All() {
		got := get(t, target, inst.Name())
		if got.Value() != inst.Value() || got.Value() != want[inst.Name()] {
			t.Errorf("%s: Get = %d, snapshot = %d, want %d", inst.Name(), got.Value(), inst.Value(), want[inst.Name()])
		}
	}
	if target.Len() != 3 {
		t.Errorf("expected 3 attributes, got %d", target.Len())
	}
}

func TestCombineStats_InvalidInput(t *testing.T) {
	ran := false
	hooks := combine.Hooks{Before: []combine.Hook{func() { ran = true }}}
	e := combine.NewEngine(discard())

	if _, err := e.CombineStats(nil, nil, combine.SumClamped, hooks); err == nil {
		t.Error("expected error for nil target")
	}
	if _, err := e.CombineStats(newSet(t, "Stick", nil), nil, combine.Policy(9), hooks); err == nil {
		t.Error("expected error for unknown policy")
	}
	if ran {
		t.Error("hooks must not run for rejected combines")
	}

	target := newSet(t, "Stick", map[string]int{"A": 5})
	incoming := []*properties.Instance{properties.NewInstance("A", 0, 100, 50), properties.NewInstance("B", 0, 10, 3)}
	if got := e.Combine(target, incoming, combine.Policy(9), hooks); got != target {
		t.Error("Combine must return the target it was given")
	}
	if target.Len() != 1 || get(t, target, "A").Value() != 5 {
		t.Errorf("unknown policy changed the target: %v", target.All())
	}
	if ran {
		t.Error("hooks must not run when Combine rejects the policy")
	}

	stats, err := e.CombineStats(newSet(t, "Stick", nil), []*properties.Instance{nil}, combine.SumClamped, combine.Hooks{})
	if err != nil {
		t.Fatalf("CombineStats: %v", err)
	}
	if stats.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", stats.Skipped)
	}
}

func TestParsePolicy(t *testing.T) {
	for _, p := range []combine.Policy{combine.ReplaceIfHigher, combine.SumClamped} {
		got, err := combine.ParsePolicy(p.String())
		if err != nil {
			t.Fatalf("ParsePolicy(%q): %v", p, err)
		}
		if got != p {
			t.Errorf("ParsePolicy(%q) = %v", p, got)
		}
	}
	if _, err := combine.ParsePolicy("average"); err == nil {
		t.Error("expected error for unknown policy")
	}
	if s := combine.Policy(7).String(); s != "Policy(7)" {
		t.Errorf("String() = %q", s)
	}
}
