// Package options implements the configuration bundle the core accepts
//, loaded from YAML via gopkg.in/yaml.v3 and checked with
// github.com/go-playground/validator/v10 — the same pairing a fallible
// construction phase calls for ("all option
// parsing ... return a result; the saturation loop itself does not
// fail"). A malformed bundle is reported as a saterr.ConfigError before
// the loop ever starts.
package options

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/satprove/saturnfol/internal/saterr"
)

// Algorithm selects the saturation-algorithm variant.
type Algorithm string

const (
	Otter    Algorithm = "otter"
	Discount Algorithm = "discount"
	LRS      Algorithm = "lrs"
)

// TriState is the off|preordered|on / off|unit|on / off|fast|on shape
// several simplification options share.
type TriState string

const (
	Off TriState = "off"
	On  TriState = "on"
	// Preordered and Unit and Fast are the three distinct middle values
	// different options use; kept as one string type since no option
	// mixes two different middle vocabularies.
	Preordered TriState = "preordered"
	Unit       TriState = "unit"
	Fast       TriState = "fast"
)

// Options is the full configuration bundle the core accepts.
type Options struct {
	SaturationAlgorithm Algorithm `yaml:"saturation_algorithm" validate:"required,oneof=otter discount lrs"`
	AgeWeightRatioAge   int       `yaml:"age_weight_ratio_age" validate:"min=0"`
	AgeWeightRatioWeight int      `yaml:"age_weight_ratio_weight" validate:"min=0"`
	Selection           int       `yaml:"selection" validate:"min=0"`

	SplitQueueRatios  []int     `yaml:"split_queue_ratios" validate:"omitempty,min=2,dive,min=1"`
	SplitQueueCutoffs []float64 `yaml:"split_queue_cutoffs" validate:"omitempty,min=2,dive,min=0,max=1"`
	SplitQueueFadeIn  bool      `yaml:"split_queue_fade_in"`

	BackwardSubsumption TriState `yaml:"backward_subsumption" validate:"omitempty,oneof=off unit on"`
	ForwardDemodulation  TriState `yaml:"forward_demodulation" validate:"omitempty,oneof=off preordered on"`
	BackwardDemodulation TriState `yaml:"backward_demodulation" validate:"omitempty,oneof=off preordered on"`
	Condensation         TriState `yaml:"condensation" validate:"omitempty,oneof=off fast on"`

	Complete bool `yaml:"complete"`

	MemoryLimitMB uint32 `yaml:"memory_limit_mb"`
	TimeLimitMS   uint64 `yaml:"time_limit_ms"`
	RandomSeed    uint64 `yaml:"random_seed"`
}

// Default returns a conservative, always-valid starting bundle.
func Default() Options {
	return Options{
		SaturationAlgorithm: Discount,
		AgeWeightRatioAge:   1,
		AgeWeightRatioWeight: 1,
		Selection:           0,
		BackwardSubsumption: On,
		ForwardDemodulation: On,
		BackwardDemodulation: On,
		Condensation:        Off,
		Complete:            true,
	}
}

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	val.RegisterStructValidation(validateSplitQueues, Options{})
	return val
}

// validateSplitQueues checks the cross-field invariants split_queue_*
// carries that a per-field tag cannot express: ratios and cutoffs must
// be the same length, cutoffs strictly increasing, and the last cutoff
// exactly 1.0.
func validateSplitQueues(sl validator.StructLevel) {
	o := sl.Current().Interface().(Options)
	if len(o.SplitQueueRatios) == 0 && len(o.SplitQueueCutoffs) == 0 {
		return
	}
	if len(o.SplitQueueRatios) != len(o.SplitQueueCutoffs) {
		sl.ReportError(o.SplitQueueCutoffs, "SplitQueueCutoffs", "split_queue_cutoffs", "lenmatch", "")
		return
	}
	for i := 1; i < len(o.SplitQueueCutoffs); i++ {
		if o.SplitQueueCutoffs[i] <= o.SplitQueueCutoffs[i-1] {
			sl.ReportError(o.SplitQueueCutoffs, "SplitQueueCutoffs", "split_queue_cutoffs", "increasing", "")
			return
		}
	}
	if n := len(o.SplitQueueCutoffs); n > 0 && o.SplitQueueCutoffs[n-1] != 1.0 {
		sl.ReportError(o.SplitQueueCutoffs, "SplitQueueCutoffs", "split_queue_cutoffs", "lastone", "")
	}
}

// Load parses and validates a YAML options file, returning a
// saterr.ConfigError-kind error on any problem.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, saterr.Wrap(saterr.ConfigError, err, "reading options file")
	}
	o := Default()
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Options{}, saterr.Wrap(saterr.ConfigError, err, "parsing options yaml")
	}
	if err := Validate(o); err != nil {
		return Options{}, err
	}
	return o, nil
}

// Validate checks o against its declared constraints, including the
// cross-field split-queue invariants, and rejects unsoundness-inducing
// combinations when Complete is set.
func Validate(o Options) error {
	if err := v.Struct(o); err != nil {
		return saterr.Wrap(saterr.ConfigError, err, "invalid options")
	}
	if o.Complete {
		if o.BackwardDemodulation == Preordered {
			return saterr.New(saterr.ConfigError, "complete strategies cannot use preordered backward demodulation: it can delete clauses an incomplete ordering later orients the other way, breaking completeness")
		}
	}
	return nil
}
