package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/OCharnyshevich/craft-properties/internal/combine"
	"github.com/OCharnyshevich/craft-properties/internal/entity"
	"github.com/OCharnyshevich/craft-properties/internal/random"
	"github.com/OCharnyshevich/craft-properties/internal/scene"
)

type combineOptions struct {
	scenePath     string
	target        string
	incoming      string
	targetPoint   string
	incomingPoint string
	rename        string
}

func (a *app) combineCmd() *cobra.Command {
	var o combineOptions
	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Combine one entity of a scene into another",
		Long: `Builds the entities of a YAML scene against the catalog and merges the
--incoming entity into the --target entity. Both entities are printed before
and after the combine.

Example:
  craftkit combine --scene workbench.yaml --target Stick --incoming Stone --policy sum-clamped --rename Axe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.combine(o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.scenePath, "scene", "", "YAML scene manifest")
	f.StringVar(&o.target, "target", "", "entity that absorbs the other one")
	f.StringVar(&o.incoming, "incoming", "", "entity combined into the target")
	f.StringVar(&o.targetPoint, "target-point", "", "selection point to use on the target")
	f.StringVar(&o.incomingPoint, "incoming-point", "", "selection point to use on the incoming entity")
	f.StringVar(&o.rename, "rename", "", "new name for the target after the combine")
	f.StringVar(&a.cfg.Policy, "policy", a.cfg.Policy, "combine policy (replace-if-higher, sum-clamped)")
	f.Uint64Var(&a.cfg.Seed, "seed", a.cfg.Seed, "seed for random attribute values (0 = random)")
	_ = cmd.MarkFlagRequired("scene")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("incoming")
	return cmd
}

func (a *app) combine(o combineOptions) error {
	policy, err := a.cfg.CombinePolicy()
	if err != nil {
		return err
	}
	reg, err := a.registry()
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(o.scenePath)
	if err != nil {
		return fmt.Errorf("read scene: %w", err)
	}
	m, err := scene.Parse(raw)
	if err != nil {
		return err
	}

	rng, seed, err := random.New(a.cfg.Seed)
	if err != nil {
		return err
	}
	a.log.Debug("rolling attributes", "seed", seed)

	s, err := scene.Build(m, reg, entity.WithLogger(a.log), entity.WithRand(rng))
	if s == nil {
		return err
	}
	if err != nil {
		a.log.Warn("scene built with skipped properties", "error", err)
	}

	target, ok := s.Entity(o.target)
	if !ok {
		return fmt.Errorf("scene has no entity %q", o.target)
	}
	incoming, ok := s.Entity(o.incoming)
	if !ok {
		return fmt.Errorf("scene has no entity %q", o.incoming)
	}
	if o.targetPoint != "" {
		if err := target.Points().SelectActiveByName(o.targetPoint); err != nil {
			return err
		}
	}
	if o.incomingPoint != "" {
		if err := incoming.Points().SelectActiveByName(o.incomingPoint); err != nil {
			return err
		}
	}

	targetPoint := activePoint(target)
	incomingPoint := activePoint(incoming)
	target.OnBeforeCombine(func() {
		a.log.Info("combining", "target", target.Name(), "incoming", incoming.Name(), "policy", policy)
	})
	target.OnAfterCombine(func() {
		a.log.Info("combined", "target", target.Name())
	})

	fmt.Fprintln(a.out, "before:")
	if err := a.printEntities(target, incoming); err != nil {
		return err
	}

	var stats combine.Stats
	if o.rename != "" {
		stats, err = target.CombineInAs(incoming, policy, o.rename)
	} else {
		stats, err = target.CombineIn(incoming, policy)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "\nafter:")
	if err := a.printEntities(target, incoming); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\n%s: %+v\n", policy, stats)
	if targetPoint != "" && incomingPoint != "" {
		fmt.Fprintf(a.out, "attached %s at %s to %s\n", incoming.Name(), incomingPoint, targetPoint)
	}
	return nil
}

func activePoint(e *entity.Entity) string {
	p, ok := e.Points().Active()
	if !ok {
		return ""
	}
	return p.Name()
}

func (a *app) printEntities(entities ...*entity.Entity) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, e := range entities {
		header := e.Name()
		if e.Retired() {
			header += " (retired)"
		}
		fmt.Fprintln(tw, header)
		for _, inst := range e.Properties().All() {
			fmt.Fprintf(tw, "  %s\t%d\t[%d, %d]\n", inst.Name(), inst.Value(), inst.Min(), inst.Max())
		}
	}
	return tw.Flush()
}
