package options

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satprove/saturnfol/internal/saterr"
)

func TestDefaultIsAlwaysValid(t *testing.T) {
	assert.NoError(t, Validate(Default()))
}

func TestValidateRejectsAnUnknownAlgorithm(t *testing.T) {
	o := Default()
	o.SaturationAlgorithm = Algorithm("bogus")
	err := Validate(o)
	require.Error(t, err)
	assert.True(t, saterr.Is(err, saterr.ConfigError))
}

func TestValidateRejectsMismatchedSplitQueueLengths(t *testing.T) {
	o := Default()
	o.SplitQueueRatios = []int{1, 2, 3}
	o.SplitQueueCutoffs = []float64{0.5, 1.0}
	assert.Error(t, Validate(o))
}

func TestValidateRejectsNonIncreasingCutoffs(t *testing.T) {
	o := Default()
	o.SplitQueueRatios = []int{1, 1}
	o.SplitQueueCutoffs = []float64{0.5, 0.5}
	assert.Error(t, Validate(o))
}

func TestValidateRejectsACutoffListNotEndingAtOne(t *testing.T) {
	o := Default()
	o.SplitQueueRatios = []int{1, 1}
	o.SplitQueueCutoffs = []float64{0.3, 0.9}
	assert.Error(t, Validate(o))
}

func TestValidateAcceptsAWellFormedSplitQueue(t *testing.T) {
	o := Default()
	o.SplitQueueRatios = []int{1, 2, 1}
	o.SplitQueueCutoffs = []float64{0.25, 0.75, 1.0}
	assert.NoError(t, Validate(o))
}

func TestValidateRejectsCompleteWithPreorderedBackwardDemodulation(t *testing.T) {
	o := Default()
	o.Complete = true
	o.BackwardDemodulation = Preordered
	err := Validate(o)
	require.Error(t, err)
	assert.True(t, saterr.Is(err, saterr.ConfigError))
}

func TestValidateAcceptsIncompleteWithPreorderedBackwardDemodulation(t *testing.T) {
	o := Default()
	o.Complete = false
	o.BackwardDemodulation = Preordered
	assert.NoError(t, Validate(o))
}

func TestLoadReadsAndValidatesAYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strategy.yaml")
	yamlBody := "saturation_algorithm: lrs\nage_weight_ratio_age: 3\nage_weight_ratio_weight: 2\ncomplete: false\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))

	o, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, LRS, o.SaturationAlgorithm)
	assert.Equal(t, 3, o.AgeWeightRatioAge)
	assert.Equal(t, 2, o.AgeWeightRatioWeight)
	assert.False(t, o.Complete)
}

func TestLoadReportsAConfigErrorForAMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, saterr.Is(err, saterr.ConfigError))
}

func TestLoadReportsAConfigErrorForMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("saturation_algorithm: [unterminated"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, saterr.Is(err, saterr.ConfigError))
}

func TestLoadReportsAConfigErrorWhenValidationFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("saturation_algorithm: not-a-real-one\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, saterr.Is(err, saterr.ConfigError))
}
