package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearMeasurer pretends glyph width grows linearly with point size, which
// is close enough to reality to exercise the search.
type linearMeasurer struct{}

func (linearMeasurer) Measure(text string, size int) (int, int, error) {
	return len(text) * size / 2, size, nil
}

func TestFitStopsOnWidth(t *testing.T) {
	cfg := DefaultFit()
	got, err := cfg.Fit(linearMeasurer{}, "LONDON", 500, 200)
	require.NoError(t, err)

	// The accepted size must fit the available width and sit strictly
	// below the forced stop.
	w, _, err := linearMeasurer{}.Measure("LONDON", got)
	require.NoError(t, err)
	assert.LessOrEqual(t, w, 500)
	assert.Less(t, got, cfg.MaxSize-1-cfg.Backoff)
	assert.GreaterOrEqual(t, got, cfg.MinSize-cfg.Backoff)
}

func TestFitForcedStop(t *testing.T) {
	// A short label in a huge box never trips the width condition; the
	// scan runs to the forced stop.
	cfg := DefaultFit()
	got, err := cfg.Fit(linearMeasurer{}, "OK", 100000, 100000)
	require.NoError(t, err)
	assert.Equal(t, cfg.MaxSize-1-cfg.Backoff, got)
}

func TestFitRespectsOverrides(t *testing.T) {
	cfg := FitConfig{MinSize: 10, MaxSize: 30, Backoff: 5, UsableArea: 0.8}
	got, err := cfg.Fit(linearMeasurer{}, "WIDE LABEL TEXT", 100000, 100000)
	require.NoError(t, err)
	assert.Equal(t, 24, got)
}

func TestFitHeightConstraintBlocksEarlyExit(t *testing.T) {
	// When the height is already saturated the width trigger must not
	// fire; only the forced stop ends the scan.
	cfg := DefaultFit()
	got, err := cfg.Fit(linearMeasurer{}, "VERY LONG PLACE NAME", 100, 10)
	require.NoError(t, err)
	assert.Equal(t, cfg.MaxSize-1-cfg.Backoff, got)
}
