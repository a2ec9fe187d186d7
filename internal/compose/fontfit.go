package compose

// FitConfig holds the knobs of the font-size search. The defaults are the
// reference values; they are fields rather than constants so callers can
// override any of them.
type FitConfig struct {
	// MinSize is where the scan starts.
	MinSize int
	// MaxSize bounds the scan; MaxSize-1 is the forced stop.
	MaxSize int
	// Backoff is subtracted from the accepted size for breathing room.
	Backoff int
	// UsableArea is the fraction of the available box text may occupy;
	// the rest is reserved as readability margin.
	UsableArea float64
}

// DefaultFit returns the reference search configuration.
func DefaultFit() FitConfig {
	return FitConfig{MinSize: 20, MaxSize: 150, Backoff: 10, UsableArea: 0.8}
}

// Fit scans point sizes upward from MinSize and returns the largest size,
// less Backoff, that keeps text legible inside the available box. The scan
// stops as soon as the measured width outgrows the usable fraction of
// availWidth while the height still fits (the width constraint binds
// first), or when it reaches the forced stop at MaxSize-1.
func (c FitConfig) Fit(m Measurer, text string, availWidth, availHeight int) (int, error) {
	usableW := c.UsableArea * float64(availWidth)
	usableH := c.UsableArea * float64(availHeight)

	for size := c.MinSize; size < c.MaxSize; size++ {
		w, h, err := m.Measure(text, size)
		if err != nil {
			return 0, err
		}
		if (float64(w) > usableW && float64(h) < usableH) || size == c.MaxSize-1 {
			return size - c.Backoff, nil
		}
	}
	return c.MaxSize - 1 - c.Backoff, nil
}
