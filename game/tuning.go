package game

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTuning is returned by Validate and LoadTuning.
var ErrInvalidTuning = errors.New("invalid tuning")

// Range is a closed interval drawn from uniformly.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Tuning holds every gameplay constant. Item speeds and particle motion are per
// logic tick; the spawn interval is wall clock.
type Tuning struct {
	MouthOpenThreshold float64 `yaml:"mouthOpenThreshold"`

	SpawnInterval time.Duration `yaml:"spawnInterval"`
	SpawnX        Range         `yaml:"spawnX"`
	SpawnY        float64       `yaml:"spawnY"`
	FallSpeed     Range         `yaml:"fallSpeed"`
	RemoveBelow   float64       `yaml:"removeBelow"`
	Glyphs        []string      `yaml:"glyphs"`
	ItemValue     int           `yaml:"itemValue"`

	// HitRadius is in screen pixels.
	HitRadius float64 `yaml:"hitRadius"`
	FatStep   float64 `yaml:"fatStep"`
	FatMax    float64 `yaml:"fatMax"`

	BurstSize  int      `yaml:"burstSize"`
	ParticleVX Range    `yaml:"particleVX"`
	ParticleVY Range    `yaml:"particleVY"`
	Gravity    float64  `yaml:"gravity"`
	LifeDecay  float64  `yaml:"lifeDecay"`
	Palette    []string `yaml:"palette"`

	MouthMarkerRadius float64 `yaml:"mouthMarkerRadius"`
}

// DefaultTuning returns the stock game constants.
func DefaultTuning() Tuning {
	return Tuning{
		MouthOpenThreshold: 0.05,

		SpawnInterval: time.Second,
		SpawnX:        Range{Min: 0.1, Max: 0.9},
		SpawnY:        -0.1,
		FallSpeed:     Range{Min: 0.005, Max: 0.010},
		RemoveBelow:   1.1,
		Glyphs:        []string{"🟩", "🍖", "🥓", "🥮"},
		ItemValue:     1,

		HitRadius: 60,
		FatStep:   0.05,
		FatMax:    2.0,

		BurstSize:  10,
		ParticleVX: Range{Min: -5, Max: 5},
		ParticleVY: Range{Min: -10, Max: 0},
		Gravity:    0.5,
		LifeDecay:  0.02,
		Palette:    []string{"#FFD700", "#FF0000", "#00FF00", "#00FFFF", "#FF00FF"},

		MouthMarkerRadius: 20,
	}
}

// LoadTuning reads a YAML file over DefaultTuning, so the file only needs the keys
// it changes, and validates the result.
func LoadTuning(path string) (Tuning, error) {
	tuning := DefaultTuning()

	data, err := os.ReadFile(path)
	if err != nil {
		return tuning, fmt.Errorf("failed to read tuning: %w", err)
	}

	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return tuning, fmt.Errorf("failed to parse tuning %s: %w", path, err)
	}

	if err := tuning.Validate(); err != nil {
		return tuning, fmt.Errorf("%s: %w", path, err)
	}

	return tuning, nil
}

// Validate checks that every value is usable.
func (t Tuning) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidTuning}, args...)...))
		}
	}

	check(t.MouthOpenThreshold > 0, "mouthOpenThreshold must be positive, got %v", t.MouthOpenThreshold)
	check(t.SpawnInterval > 0, "spawnInterval must be positive, got %v", t.SpawnInterval)
	check(t.SpawnX.Min <= t.SpawnX.Max, "spawnX min(%v) > max(%v)", t.SpawnX.Min, t.SpawnX.Max)
	check(t.FallSpeed.Min <= t.FallSpeed.Max, "fallSpeed min(%v) > max(%v)", t.FallSpeed.Min, t.FallSpeed.Max)
	check(t.FallSpeed.Min > 0, "fallSpeed must be positive, got %v", t.FallSpeed.Min)
	check(t.RemoveBelow > t.SpawnY, "removeBelow(%v) must be below spawnY(%v)", t.RemoveBelow, t.SpawnY)
	check(len(t.Glyphs) > 0, "glyphs must not be empty")
	check(t.ItemValue >= 0, "itemValue must not be negative, got %d", t.ItemValue)
	check(t.HitRadius > 0, "hitRadius must be positive, got %v", t.HitRadius)
	check(t.FatStep > 0, "fatStep must be positive, got %v", t.FatStep)
	check(t.FatMax > 1, "fatMax must be above 1, got %v", t.FatMax)
	check(t.BurstSize >= 0, "burstSize must not be negative, got %d", t.BurstSize)
	check(t.ParticleVX.Min <= t.ParticleVX.Max, "particleVX min(%v) > max(%v)", t.ParticleVX.Min, t.ParticleVX.Max)
	check(t.ParticleVY.Min <= t.ParticleVY.Max, "particleVY min(%v) > max(%v)", t.ParticleVY.Min, t.ParticleVY.Max)
	check(t.LifeDecay > 0, "lifeDecay must be positive, got %v", t.LifeDecay)
	check(len(t.Palette) > 0, "palette must not be empty")

	for _, hex := range t.Palette {
		if _, err := ParseColor(hex); err != nil {
			errs = append(errs, fmt.Errorf("%w: palette: %w", ErrInvalidTuning, err))
		}
	}

	return errors.Join(errs...)
}

// Colors parses the palette. It assumes Validate passed.
func (t Tuning) Colors() []color.RGBA {
	colors := make([]color.RGBA, 0, len(t.Palette))
	for _, hex := range t.Palette {
		c, _ := ParseColor(hex)
		colors = append(colors, c)
	}
	return colors
}

// ParseColor parses an opaque "#RRGGBB" colour.
func ParseColor(hex string) (color.RGBA, error) {
	digits, ok := strings.CutPrefix(hex, "#")
	if !ok || len(digits) != 6 {
		return color.RGBA{}, fmt.Errorf("colour %q is not #RRGGBB", hex)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("colour %q: %w", hex, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
