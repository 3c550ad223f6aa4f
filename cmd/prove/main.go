// Command prove reads a clause file in the format internal/cnfio
// understands and saturates it under one of the core's saturation-
// algorithm variants, or races all three via internal/portfolio.
//
// Built on github.com/spf13/cobra in place of go-air-gini/cmd/gini's raw
// flag package, with one subcommand per saturation.New algorithm and a
// portfolio subcommand, mirroring cmd/gini's single-binary,
// read-a-file-and-report-a-result shape.
package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/satprove/saturnfol/internal/clause"
	"github.com/satprove/saturnfol/internal/cnfio"
	"github.com/satprove/saturnfol/internal/event"
	"github.com/satprove/saturnfol/internal/index"
	"github.com/satprove/saturnfol/internal/options"
	"github.com/satprove/saturnfol/internal/order"
	"github.com/satprove/saturnfol/internal/portfolio"
	"github.com/satprove/saturnfol/internal/proof"
	"github.com/satprove/saturnfol/internal/rules"
	"github.com/satprove/saturnfol/internal/satlog"
	"github.com/satprove/saturnfol/internal/saturation"
	"github.com/satprove/saturnfol/internal/stats"
	"github.com/satprove/saturnfol/internal/symbol"
	"github.com/satprove/saturnfol/internal/term"
)

var (
	optionsPath  string
	checkProof   bool
	logLevel     string
	withMetrics  bool
	poolCapacity int
)

func main() {
	root := &cobra.Command{
		Use:   "prove <clause-file>",
		Short: "saturate a first-order clause set with equality",
	}
	root.PersistentFlags().StringVar(&optionsPath, "options", "", "path to a YAML strategy file (defaults to options.Default for the chosen algorithm)")
	root.PersistentFlags().BoolVar(&checkProof, "check-proof", false, "on refutation, replay the proof DAG with internal/proof before reporting")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "logrus level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&withMetrics, "metrics", false, "register a Prometheus registry and report counters alongside the snapshot")

	root.AddCommand(
		algorithmCommand(options.Otter),
		algorithmCommand(options.Discount),
		algorithmCommand(options.LRS),
		portfolioCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func algorithmCommand(algo options.Algorithm) *cobra.Command {
	return &cobra.Command{
		Use:   string(algo) + " <clause-file>",
		Short: fmt.Sprintf("saturate using the %s passive-queue strategy", algo),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions(algo)
			if err != nil {
				return err
			}
			rn, err := newRun(opts)
			if err != nil {
				return err
			}
			ids, err := readInput(rn, args[0])
			if err != nil {
				return err
			}
			res := rn.loop.Run(cmd.Context(), ids)
			return report(rn, res)
		},
	}
}

func portfolioCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio <clause-file>",
		Short: "race otter, discount, and lrs against the same input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategies := []options.Algorithm{options.Otter, options.Discount, options.LRS}
			var instances []portfolio.Instance
			var runs []*run
			for _, algo := range strategies {
				opts, err := loadOptions(algo)
				if err != nil {
					return err
				}
				r, err := newRun(opts)
				if err != nil {
					return err
				}
				ids, err := readInput(r, args[0])
				if err != nil {
					return err
				}
				runs = append(runs, r)
				instances = append(instances, portfolio.Instance{Name: string(algo), Loop: r.loop, Input: ids})
			}
			result := portfolio.Race(cmd.Context(), instances)
			for _, r := range runs {
				if r.opts.SaturationAlgorithm == options.Algorithm(result.Name) {
					return report(r, result.Result)
				}
			}
			return fmt.Errorf("portfolio: no run matched winning strategy %q", result.Name)
		},
	}
	cmd.Flags().IntVar(&poolCapacity, "capacity", 0, "unused by portfolio (race is always unbounded); reserved for a future bounded-pool subcommand")
	return cmd
}

func loadOptions(algo options.Algorithm) (options.Options, error) {
	if optionsPath == "" {
		o := options.Default()
		o.SaturationAlgorithm = algo
		return o, nil
	}
	o, err := options.Load(optionsPath)
	if err != nil {
		return options.Options{}, err
	}
	o.SaturationAlgorithm = algo
	if err := options.Validate(o); err != nil {
		return options.Options{}, err
	}
	return o, nil
}

// run bundles one saturation attempt's freshly built stores, the same
// way portfolio_test.go's fixtures do, but wired for real input instead
// of inline test literals.
type run struct {
	opts  options.Options
	syms  *symbol.Table
	arena *clause.Arena
	ts    *term.Store
	lits  *term.LitStore
	kbo   *order.KBO
	eng   *rules.Engine
	st    *stats.Stats
	log   *satlog.Logger
	loop  *saturation.Loop
}

func newRun(opts options.Options) (*run, error) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	syms := symbol.NewTable()
	ts := term.NewStore(syms)
	lits := term.NewLitStore(ts, syms)
	kbo := order.New(ts, nil)
	idx := index.NewSet(lits, kbo)
	arena := clause.NewArena(lits)

	var reg *prometheus.Registry
	if withMetrics {
		reg = prometheus.NewRegistry()
	}
	st := stats.New(reg)
	sel := clause.SelectAll
	if opts.Selection >= 0 && opts.Selection < len(clause.Table) {
		sel = clause.Table[opts.Selection]
	}
	eng := rules.New(arena, lits, ts, kbo, idx, sel, st)
	bus := event.New()
	log := satlog.New(level, os.Stderr)
	loop := saturation.New(opts, eng, bus, st, log, goalNiceness, nil)

	return &run{opts: opts, syms: syms, arena: arena, ts: ts, lits: lits, kbo: kbo, eng: eng, st: st, log: log, loop: loop}, nil
}

// goalNiceness is the default container.NicenessFunc: a clause that
// traces back to the negated conjecture is scored nice (0), background
// theory axioms are scored unremarkable (1), matching the ascending
// cutoff convention split_queue_cutoffs configures.
func goalNiceness(c *clause.Clause) float64 {
	if c.FromGoal {
		return 0
	}
	return 1
}

func readInput(r *run, path string) ([]clause.ID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	reader := cnfio.NewReader(r.ts, r.lits, r.syms)
	return reader.ReadClauses(f, r.arena)
}

func report(r *run, res saturation.Result) error {
	fmt.Printf("%s: %s\n", r.opts.SaturationAlgorithm, res.Reason)
	if res.Reason == saturation.Refutation {
		fmt.Printf("empty clause: c%d\n", res.Empty)
		if checkProof {
			rec := proof.Walk(r.arena, res.Empty)
			if err := proof.Check(r.eng, rec); err != nil {
				return fmt.Errorf("proof check failed: %w", err)
			}
			fmt.Printf("proof checked: %d steps\n", len(rec.Steps))
		}
	}
	snap := r.st.Snapshot()
	for rule, count := range snap.ByRule {
		fmt.Printf("  %-24s %d\n", rule, count)
	}
	fmt.Printf("  discards: tautology=%d fwd-subsumption=%d bwd-subsumption=%d lrs-admission=%d lrs-active-prune=%d\n",
		snap.Discards.Tautology, snap.Discards.ForwardSubsumption, snap.Discards.BackwardSubsumption,
		snap.Discards.LRSAdmission, snap.Discards.LRSActivePrune)
	return nil
}
