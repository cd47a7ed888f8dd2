package host

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the interactive host settings.
type Config struct {
	Seed        int64
	Recipe      string
	Width       int
	Height      int
	Speed       float64 // simulation seconds per wall second
	TraceTrails bool
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Seed:        1,
		Recipe:      "classic",
		Width:       1280,
		Height:      720,
		Speed:       1,
		TraceTrails: true,
	}
}

// LoadConfig reads KEY=VALUE pairs from path (a missing file is fine), then
// lets process environment variables override them.
func LoadConfig(path string) (Config, error) {
	vals := map[string]string{}
	if path != "" {
		file, err := godotenv.Read(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		for k, v := range file {
			vals[k] = v
		}
	}
	for _, k := range []string{envSeed, envRecipe, envWidth, envHeight, envSpeed, envTrail} {
		if v, ok := os.LookupEnv(k); ok {
			vals[k] = v
		}
	}
	return parseConfig(vals)
}

const (
	envSeed   = "FIREWORKS_SEED"
	envRecipe = "FIREWORKS_RECIPE"
	envWidth  = "FIREWORKS_WIDTH"
	envHeight = "FIREWORKS_HEIGHT"
	envSpeed  = "FIREWORKS_SPEED"
	envTrail  = "FIREWORKS_TRAIL"
)

func parseConfig(vals map[string]string) (Config, error) {
	cfg := DefaultConfig()
	var err error
	if v, ok := vals[envSeed]; ok {
		if cfg.Seed, err = strconv.ParseInt(strings.TrimSpace(v), 10, 64); err != nil {
			return Config{}, fmt.Errorf("%s: %w", envSeed, err)
		}
	}
	if v, ok := vals[envRecipe]; ok && strings.TrimSpace(v) != "" {
		cfg.Recipe = strings.TrimSpace(v)
	}
	if v, ok := vals[envWidth]; ok {
		if cfg.Width, err = parseDim(envWidth, v); err != nil {
			return Config{}, err
		}
	}
	if v, ok := vals[envHeight]; ok {
		if cfg.Height, err = parseDim(envHeight, v); err != nil {
			return Config{}, err
		}
	}
	if v, ok := vals[envSpeed]; ok {
		if cfg.Speed, err = strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			return Config{}, fmt.Errorf("%s: %w", envSpeed, err)
		}
		if cfg.Speed < 0 {
			return Config{}, fmt.Errorf("%s: negative speed %v", envSpeed, cfg.Speed)
		}
	}
	if v, ok := vals[envTrail]; ok {
		if cfg.TraceTrails, err = strconv.ParseBool(strings.TrimSpace(v)); err != nil {
			return Config{}, fmt.Errorf("%s: %w", envTrail, err)
		}
	}
	return cfg, nil
}

func parseDim(key, v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %d", key, n)
	}
	return n, nil
}

// ToWorld maps a screen pixel to simulation coordinates: origin at the
// screen centre, y up.
func (c Config) ToWorld(sx, sy float64) (float64, float64) {
	return sx - float64(c.Width)/2, float64(c.Height)/2 - sy
}

// ToScreen is the inverse of ToWorld.
func (c Config) ToScreen(wx, wy float64) (float64, float64) {
	return wx + float64(c.Width)/2, float64(c.Height)/2 - wy
}
