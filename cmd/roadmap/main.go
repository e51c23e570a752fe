// Package main is the roadmap planner command.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/MaastrichtU-BISS/roadmap-planner/internal/config"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/cspace"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/path"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/roadmap"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/server"
	"github.com/MaastrichtU-BISS/roadmap-planner/internal/session"
)

const (
	// Flags.
	flagConfig      = "config"
	flagDebug       = "debug"
	flagAddr        = "addr"
	flagSystem      = "system"
	flagObstacles   = "obstacles"
	flagPoints      = "points"
	flagRMulti      = "r-multi"
	flagFixedRadius = "fixed-radius"
	flagVariant     = "variant"
	flagSeed        = "seed"
	flagRoadmap     = "roadmap"
	flagOut         = "out"
	flagGeoJSON     = "geojson"
	flagPathGeoJSON = "path-geojson"
)

func main() {
	var logger *zap.SugaredLogger

	app := &cli.App{
		Name:  "roadmap",
		Usage: "build probabilistic roadmaps and plan paths through them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load planner settings from `FILE`",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			var (
				l   *zap.Logger
				err error
			)
			if c.Bool(flagDebug) {
				l, err = zap.NewDevelopment()
			} else {
				l, err = zap.NewProduction()
			}
			if err != nil {
				return errors.Wrap(err, "creating logger")
			}
			logger = l.Sugar()
			return nil
		},
		After: func(c *cli.Context) error {
			if logger != nil {
				_ = logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "serve a planning session over HTTP",
				Flags: append(buildFlags(),
					&cli.StringFlag{
						Name:  flagAddr,
						Usage: "listen `ADDRESS`",
					},
					&cli.StringFlag{
						Name:  flagSystem,
						Usage: "load the initial problem from `FILE`",
					},
					&cli.StringFlag{
						Name:  flagObstacles,
						Usage: "add the obstacles of every *.geojson file in `DIR`",
					},
				),
				Action: func(c *cli.Context) error {
					return serve(c, logger)
				},
			},
			{
				Name:  "plan",
				Usage: "build a roadmap for a system file and print the path from start to finish",
				Flags: append(buildFlags(),
					&cli.StringFlag{
						Name:     flagSystem,
						Usage:    "system description `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:  flagObstacles,
						Usage: "add the obstacles of every *.geojson file in `DIR`",
					},
					&cli.StringFlag{
						Name:  flagRoadmap,
						Usage: "query a saved roadmap `FILE` instead of building one",
					},
					&cli.StringFlag{
						Name:  flagOut,
						Usage: "save the roadmap to `FILE`",
					},
					&cli.StringFlag{
						Name:  flagGeoJSON,
						Usage: "write the roadmap edges as GeoJSON to `FILE`",
					},
					&cli.StringFlag{
						Name:  flagPathGeoJSON,
						Usage: "write the path as GeoJSON to `FILE`",
					},
				),
				Action: func(c *cli.Context) error {
					return plan(c, logger)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  flagPoints,
			Usage: "number of vertices to sample",
		},
		&cli.Float64Flag{
			Name:  flagRMulti,
			Usage: "multiplier of the base connection radius",
		},
		&cli.Float64Flag{
			Name:  flagFixedRadius,
			Usage: "fixed connection radius, overrides the multiplier",
		},
		&cli.StringFlag{
			Name:  flagVariant,
			Usage: "construction rule, prm or sprm",
		},
		&cli.Uint64Flag{
			Name:  flagSeed,
			Usage: "sampler seed",
		},
	}
}

// loadConfig reads the settings file, when given, and applies explicitly set
// flags on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Defaults()
	if path := c.String(flagConfig); path != "" {
		fileCfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = cfg.Merge(fileCfg)
	}

	flags := &config.Config{}
	if c.IsSet(flagPoints) {
		v := c.Int(flagPoints)
		flags.Points = &v
	}
	if c.IsSet(flagRMulti) {
		v := c.Float64(flagRMulti)
		flags.RMulti = &v
	}
	if c.IsSet(flagFixedRadius) {
		v := c.Float64(flagFixedRadius)
		flags.FixedRadius = &v
	}
	if c.IsSet(flagVariant) {
		v := c.String(flagVariant)
		flags.Variant = &v
	}
	if c.IsSet(flagSeed) {
		v := c.Uint64(flagSeed)
		flags.Seed = &v
	}
	if c.IsSet(flagAddr) {
		v := c.String(flagAddr)
		flags.Addr = &v
	}
	if c.IsSet(flagObstacles) {
		v := c.String(flagObstacles)
		flags.ObstacleDir = &v
	}

	cfg = cfg.Merge(flags)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid settings")
	}
	return cfg, nil
}

// newSession builds a session from the settings, loading the system file and
// obstacle directory when given.
func newSession(c *cli.Context, cfg *config.Config, logger *zap.SugaredLogger) (*session.Session, error) {
	sess := session.New(logger, cfg.Params())
	if file := c.String(flagSystem); file != "" {
		sp, err := cspace.LoadFile(file)
		if err != nil {
			return nil, err
		}
		sess.SetProblem(sp)
	}
	if dir := cfg.GetObstacleDir(); dir != "" {
		if _, err := cspace.LoadObstacleDir(logger, dir, sess.Problem().Obstacles()); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

func serve(c *cli.Context, logger *zap.SugaredLogger) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	sess, err := newSession(c, cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(sess, cfg, logger).ListenAndServe(ctx, cfg.GetAddr())
}

func plan(c *cli.Context, logger *zap.SugaredLogger) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	sess, err := newSession(c, cfg, logger)
	if err != nil {
		return err
	}

	if file := c.String(flagRoadmap); file != "" {
		g, err := roadmap.LoadFile(file)
		if err != nil {
			return err
		}
		if err := sess.UseRoadmap(g); err != nil {
			return err
		}
	} else {
		sess.Build()
		if err := sess.Complete(); err != nil {
			return err
		}
	}

	if file := c.String(flagOut); file != "" {
		if err := sess.Graph().SaveFile(file); err != nil {
			return err
		}
		logger.Infow("roadmap saved", "file", file)
	}
	if file := c.String(flagGeoJSON); file != "" {
		fc, err := sess.Graph().EdgeFeatures()
		if err != nil {
			return err
		}
		if err := writeJSONFile(file, fc); err != nil {
			return err
		}
	}

	p, err := sess.FindPath()
	if err != nil {
		return err
	}
	if p.Empty() {
		return errors.New("no path between start and finish")
	}

	if file := c.String(flagPathGeoJSON); file != "" {
		f, err := p.Feature()
		if err != nil {
			return err
		}
		if err := writeJSONFile(file, f); err != nil {
			return err
		}
	}

	printPath(c, p)
	return nil
}

func printPath(c *cli.Context, p path.Path) {
	for _, q := range p {
		fields := make([]string, len(q))
		for i, v := range q {
			fields[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		fmt.Fprintln(c.App.Writer, strings.Join(fields, " "))
	}
}

func writeJSONFile(file string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding JSON")
	}
	return errors.Wrapf(os.WriteFile(file, data, 0o644), "writing %s", file)
}
