// Package config loads the planner settings file. The schema matches the
// /build request body of the HTTP API so the same JSON serves both startup
// defaults and runtime builds.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/MaastrichtU-BISS/roadmap-planner/internal/planner"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/sampler"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/session"
)

const maxFileSize = 1 << 20

// Default values for fields that are nil.
const (
	DefaultStepsPerProceed = 100
	DefaultAddr            = ":8080"
)

// Config holds optional planner and server settings. Nil fields fall back to
// defaults through the Get methods.
type Config struct {
	// Roadmap construction
	Points      *int     `json:"points,omitempty"`
	RMulti      *float64 `json:"rMulti,omitempty"`
	FixedRadius *float64 `json:"fixedRadius,omitempty"`
	Seed        *uint64  `json:"seed,omitempty"`
	Variant     *string  `json:"variant,omitempty"` // "prm" or "sprm"

	// Host
	StepsPerProceed *int    `json:"stepsPerProceed,omitempty"`
	Addr            *string `json:"addr,omitempty"`
	ObstacleDir     *string `json:"obstacleDir,omitempty"` // directory of *.geojson obstacle files
}

func ptrInt(v int) *int             { return &v }
func ptrFloat64(v float64) *float64 { return &v }
func ptrUint64(v uint64) *uint64    { return &v }
func ptrString(v string) *string    { return &v }

// Defaults returns a Config with every construction field set.
func Defaults() *Config {
	return &Config{
		Points:          ptrInt(planner.DefaultPoints),
		RMulti:          ptrFloat64(planner.DefaultRadiusMultiplier),
		FixedRadius:     ptrFloat64(0),
		Seed:            ptrUint64(sampler.DefaultSeed),
		Variant:         ptrString(planner.PRM.String()),
		StepsPerProceed: ptrInt(DefaultStepsPerProceed),
		Addr:            ptrString(DefaultAddr),
	}
}

// Load reads a Config from a JSON file. Omitted fields stay nil.
func Load(path string) (*Config, error) {
	clean := filepath.Clean(path)
	if ext := filepath.Ext(clean); ext != ".json" {
		return nil, errors.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(clean)
	if err != nil {
		return nil, errors.Wrap(err, "stat config file")
	}
	if info.Size() > maxFileSize {
		return nil, errors.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config JSON")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var err error
	if c.Points != nil && *c.Points <= 0 {
		err = multierr.Append(err, errors.Errorf("points must be positive, got %d", *c.Points))
	}
	if c.RMulti != nil && *c.RMulti <= 0 {
		err = multierr.Append(err, errors.Errorf("rMulti must be positive, got %g", *c.RMulti))
	}
	if c.FixedRadius != nil && *c.FixedRadius < 0 {
		err = multierr.Append(err, errors.Errorf("fixedRadius must be non-negative, got %g", *c.FixedRadius))
	}
	if c.Variant != nil {
		if _, verr := planner.ParseVariant(*c.Variant); verr != nil {
			err = multierr.Append(err, verr)
		}
	}
	if c.StepsPerProceed != nil && *c.StepsPerProceed <= 0 {
		err = multierr.Append(err, errors.Errorf("stepsPerProceed must be positive, got %d", *c.StepsPerProceed))
	}
	if c.ObstacleDir != nil && *c.ObstacleDir != "" {
		if info, serr := os.Stat(*c.ObstacleDir); serr != nil || !info.IsDir() {
			err = multierr.Append(err, errors.Errorf("obstacleDir %q is not a directory", *c.ObstacleDir))
		}
	}
	return err
}

// Merge returns a copy of c with every non-nil field of o applied on top.
func (c *Config) Merge(o *Config) *Config {
	out := *c
	if o == nil {
		return &out
	}
	if o.Points != nil {
		out.Points = o.Points
	}
	if o.RMulti != nil {
		out.RMulti = o.RMulti
	}
	if o.FixedRadius != nil {
		out.FixedRadius = o.FixedRadius
	}
	if o.Seed != nil {
		out.Seed = o.Seed
	}
	if o.Variant != nil {
		out.Variant = o.Variant
	}
	if o.StepsPerProceed != nil {
		out.StepsPerProceed = o.StepsPerProceed
	}
	if o.Addr != nil {
		out.Addr = o.Addr
	}
	if o.ObstacleDir != nil {
		out.ObstacleDir = o.ObstacleDir
	}
	return &out
}

// GetPoints returns the vertex count or the default.
func (c *Config) GetPoints() int {
	if c.Points == nil {
		return planner.DefaultPoints
	}
	return *c.Points
}

// GetRMulti returns the radius multiplier or the default.
func (c *Config) GetRMulti() float64 {
	if c.RMulti == nil {
		return planner.DefaultRadiusMultiplier
	}
	return *c.RMulti
}

// GetFixedRadius returns the fixed connection radius, 0 when unset.
func (c *Config) GetFixedRadius() float64 {
	if c.FixedRadius == nil {
		return 0
	}
	return *c.FixedRadius
}

// GetSeed returns the sampler seed or the default.
func (c *Config) GetSeed() uint64 {
	if c.Seed == nil {
		return sampler.DefaultSeed
	}
	return *c.Seed
}

// GetVariant returns the construction rule, PRM when unset or unknown.
func (c *Config) GetVariant() planner.Variant {
	if c.Variant == nil {
		return planner.PRM
	}
	v, err := planner.ParseVariant(*c.Variant)
	if err != nil {
		return planner.PRM
	}
	return v
}

// GetStepsPerProceed returns the default step batch of /proceed.
func (c *Config) GetStepsPerProceed() int {
	if c.StepsPerProceed == nil {
		return DefaultStepsPerProceed
	}
	return *c.StepsPerProceed
}

// GetAddr returns the listen address.
func (c *Config) GetAddr() string {
	if c.Addr == nil || *c.Addr == "" {
		return DefaultAddr
	}
	return *c.Addr
}

// GetObstacleDir returns the obstacle directory, empty when unset.
func (c *Config) GetObstacleDir() string {
	if c.ObstacleDir == nil {
		return ""
	}
	return *c.ObstacleDir
}

// Params converts the construction fields to session parameters.
func (c *Config) Params() session.Params {
	return session.Params{
		Points:      c.GetPoints(),
		RMulti:      c.GetRMulti(),
		FixedRadius: c.GetFixedRadius(),
		Variant:     c.GetVariant(),
		Seed:        c.GetSeed(),
	}
}
