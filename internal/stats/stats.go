// Package stats accumulates the running statistics the core reports on
// termination — counters for each rule, sizes of containers, discards —
// both as a plain in-memory snapshot and, optionally, as
// github.com/prometheus/client_golang metrics for a long-running
// portfolio process to scrape.
package stats

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/satprove/saturnfol/internal/clause"
)

// Stats accumulates per-rule inference counts, per-container sizes, and
// discard counts. The counters are atomics, but a rule's first Inc adds
// its map entry without a lock, so a Stats value is not safe for
// concurrent use; internal/portfolio runs its instances as goroutines,
// each with its own Stats.
type Stats struct {
	byRule   map[clause.Rule]*int64
	Discards Discards

	UnprocessedSize prometheusGauge
	PassiveSize     prometheusGauge
	ActiveSize      prometheusGauge

	reg *prometheus.Registry
}

// Discards counts clauses dropped for each reason, never surfaced as
// errors — dropped locally, they do not surface.
type Discards struct {
	Tautology          int64
	ForwardSubsumption int64
	BackwardSubsumption int64
	LRSAdmission        int64
	LRSActivePrune      int64
}

type prometheusGauge struct{ g prometheus.Gauge }

func (p prometheusGauge) Set(v float64) {
	if p.g != nil {
		p.g.Set(v)
	}
}

// New builds a Stats value. If reg is non-nil, rule counters and
// container-size gauges are also registered as Prometheus metrics so a
// portfolio supervisor can scrape per-instance progress; reg may be nil
// for a one-shot CLI run that only needs the final in-memory snapshot.
func New(reg *prometheus.Registry) *Stats {
	s := &Stats{byRule: make(map[clause.Rule]*int64), reg: reg}
	if reg != nil {
		s.UnprocessedSize = registerGauge(reg, "saturnfol_unprocessed_size", "Clauses currently in Unprocessed.")
		s.PassiveSize = registerGauge(reg, "saturnfol_passive_size", "Clauses currently in Passive.")
		s.ActiveSize = registerGauge(reg, "saturnfol_active_size", "Clauses currently in Active.")
	}
	return s
}

func registerGauge(reg *prometheus.Registry, name, help string) prometheusGauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	reg.MustRegister(g)
	return prometheusGauge{g: g}
}

// Inc increments the counter for rule by one, creating it on first use
// and mirroring it into a Prometheus counter when a registry is bound.
func (s *Stats) Inc(rule clause.Rule) {
	c, ok := s.byRule[rule]
	if !ok {
		var zero int64
		c = &zero
		s.byRule[rule] = c
		if s.reg != nil {
			// A per-rule Prometheus counter is registered lazily, the
			// first time that rule actually fires, since the full rule
			// set is fixed at compile time but most runs never exercise
			// every rule.
			pc := prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "saturnfol_rule_total",
				Help: "Inferences and simplifications applied, by rule.",
				ConstLabels: prometheus.Labels{"rule": string(rule)},
			}, func() float64 { return float64(atomic.LoadInt64(c)) })
			s.reg.MustRegister(pc)
		}
	}
	atomic.AddInt64(c, 1)
}

// Count returns the current count for rule.
func (s *Stats) Count(rule clause.Rule) int64 {
	c, ok := s.byRule[rule]
	if !ok {
		return 0
	}
	return atomic.LoadInt64(c)
}

// Snapshot is the plain value returned to a caller that wants the final
// counters without depending on this package's internals (e.g. the CLI
// printing a summary, or a proof object's metadata).
type Snapshot struct {
	ByRule   map[clause.Rule]int64
	Discards Discards
}

func (s *Stats) Snapshot() Snapshot {
	out := make(map[clause.Rule]int64, len(s.byRule))
	for r, c := range s.byRule {
		out[r] = atomic.LoadInt64(c)
	}
	return Snapshot{ByRule: out, Discards: s.Discards}
}
