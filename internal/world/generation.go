// World generation using layered simplex noise. The sky is air down to the
// surface level; below it, dirt strata are threaded with sand veins and
// buried food pockets so fresh colonies have something worth digging for.
package world

import (
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Width        int
	Height       int
	SurfaceLevel int
	Seed         int64

	SandThreshold float64 // noise level above which dirt becomes a sand vein
	FoodThreshold float64 // noise level above which a cell hides food
	FoodMinDepth  int     // cells below the surface before food can appear
}

// DefaultGenConfig returns the standard crater strata mix.
func DefaultGenConfig(width, height, surfaceLevel int, seed int64) GenConfig {
	return GenConfig{
		Width:         width,
		Height:        height,
		SurfaceLevel:  surfaceLevel,
		Seed:          seed,
		SandThreshold: 0.72,
		FoodThreshold: 0.88,
		FoodMinDepth:  4,
	}
}

// Generate fills a new grid: air above the surface, noise-derived strata
// below. Every in-bounds cell receives exactly one element.
func Generate(cfg GenConfig) (*Grid, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("degenerate world size %dx%d", cfg.Width, cfg.Height)
	}

	// Independent noise layers for strata and food placement.
	sandNoise := opensimplex.NewNormalized(cfg.Seed)
	foodNoise := opensimplex.NewNormalized(cfg.Seed + 1)

	g := NewGrid(cfg.Width, cfg.Height, cfg.SurfaceLevel)

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			p := Position{X: x, Y: y}

			kind := Air
			if y > cfg.SurfaceLevel {
				kind = Dirt
				if octaveNoise(sandNoise, float64(x), float64(y), 3, 0.08, 0.5) > cfg.SandThreshold {
					kind = Sand
				}
				depth := y - cfg.SurfaceLevel
				if depth >= cfg.FoodMinDepth &&
					octaveNoise(foodNoise, float64(x), float64(y), 2, 0.15, 0.5) > cfg.FoodThreshold {
					kind = Food
				}
			}

			if _, err := g.Place(kind, p); err != nil {
				return nil, fmt.Errorf("generate: %w", err)
			}
		}
	}

	g.RefreshExposure()
	return g, nil
}

// octaveNoise sums several noise octaves for a less uniform distribution.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxValue := 0.0
	freq := frequency

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*freq, y*freq) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		freq *= 2
	}

	return total / maxValue
}
