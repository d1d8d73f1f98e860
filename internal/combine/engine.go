// Package combine merges one entity's attributes into another's.
package combine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/OCharnyshevich/craft-properties/internal/properties"
)

// Policy decides how a name collision between target and incoming is resolved.
type Policy uint8

const (
	// ReplaceIfHigher keeps whichever instance has the higher value. Ties keep
	// the target's instance.
	ReplaceIfHigher Policy = iota
	// SumClamped adds the incoming value to the target value, clamped into the
	// target's bounds.
	SumClamped
)

func (p Policy) String() string {
	switch p {
	case ReplaceIfHigher:
		return "replace-if-higher"
	case SumClamped:
		return "sum-clamped"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// ParsePolicy parses the String form of a policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "replace-if-higher", "replace":
		return ReplaceIfHigher, nil
	case "sum-clamped", "sum":
		return SumClamped, nil
	}
	return 0, fmt.Errorf("unknown combine policy %q", s)
}

// Hook is a side-effect-only callback run around a combine.
type Hook func()

// Hooks are run in order, synchronously, on the calling goroutine.
type Hooks struct {
	Before []Hook
	After  []Hook
}

func run(hooks []Hook) {
	for _, h := range hooks {
		if h != nil {
			h()
		}
	}
}

// Stats counts what happened to each incoming instance during a combine.
type Stats struct {
	Inserted  int
	Replaced  int
	Summed    int
	Discarded int
	Skipped   int
}

// Engine runs combines. The zero value is not usable; use NewEngine.
type Engine struct {
	log *slog.Logger
}

// NewEngine returns an engine reporting to log, or slog.Default when nil.
func NewEngine(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{log: log}
}

// Combine merges incoming into target under policy and returns target, which
// is mutated in place.
//
// Incoming instances whose name is absent from target are moved into target
// as-is, keeping their own bounds. Instances moved or swapped in are shared
// with whatever set supplied them; the caller is expected to retire that set.
//
// Duplicate names in incoming are not collapsed: each one is applied against
// the state left by the previous ones.
//
// A nil target or an unknown policy is logged and nothing else happens: no
// hook runs and target is returned as it was. Use CombineStats to get the
// error.
func (e *Engine) Combine(target *properties.Set, incoming []*properties.Instance, policy Policy, hooks Hooks) *properties.Set {
	_, _ = e.CombineStats(target, incoming, policy, hooks)
	return target
}

// CombineStats is Combine that also reports per-instance outcomes. It fails
// without running any hook when target is nil or policy is unknown.
func (e *Engine) CombineStats(target *properties.Set, incoming []*properties.Instance, policy Policy, hooks Hooks) (Stats, error) {
	var stats Stats
	if target == nil {
		e.log.Error("combine into nil target")
		return stats, fmt.Errorf("combine: nil target")
	}
	if policy != ReplaceIfHigher && policy != SumClamped {
		e.log.Error("combine with unknown policy", "owner", target.Owner(), "policy", policy)
		return stats, fmt.Errorf("combine: unknown policy %s", policy)
	}

	run(hooks.Before)

	for _, p := range incoming {
		if p == nil {
			stats.Skipped++
			e.log.Warn("skipping nil incoming property", "owner", target.Owner())
			continue
		}
		if !target.Has(p.Name()) {
			// Cannot fail: the name was just checked.
			_ = target.Insert(p)
			stats.Inserted++
			continue
		}

		current, _ := target.Get(p.Name())
		switch policy {
		case ReplaceIfHigher:
			if current.Value() < p.Value() {
				_, _ = target.Replace(p)
				stats.Replaced++
			} else {
				stats.Discarded++
			}
		case SumClamped:
			_ = target.Set(p.Name(), addSaturating(current.Value(), p.Value()))
			stats.Summed++
		}
	}

	run(hooks.After)

	e.log.Debug("combined properties",
		"owner", target.Owner(),
		"policy", policy,
		"inserted", stats.Inserted,
		"replaced", stats.Replaced,
		"summed", stats.Summed,
		"discarded", stats.Discarded,
	)
	return stats, nil
}

// addSaturating returns a+b, pinned to the int range instead of wrapping.
func addSaturating(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}
