package cspace

import (
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/MaastrichtU-BISS/roadmap-planner/internal/geometry"
)

// RadiusProperty is the feature property holding an obstacle radius.
const RadiusProperty = "radius"

// ParseGeoJSONObstacles reads a FeatureCollection of Point features, each
// carrying a numeric radius property, as obstacle circles. Features of any
// other geometry, or without a positive radius, are skipped.
func ParseGeoJSONObstacles(data []byte) ([]geometry.Circle, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse feature collection")
	}

	circles := make([]geometry.Circle, 0, len(fc.Features))
	for _, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		r, ok := f.Properties[RadiusProperty].(float64)
		if !ok || r <= 0 {
			continue
		}
		circles = append(circles, geometry.Circle{Center: p, Radius: r})
	}
	return circles, nil
}

// LoadObstacleDir appends the obstacles of every *.geojson file in dir to s.
// Unreadable files are logged and skipped. It returns the number of circles
// added.
func LoadObstacleDir(logger *zap.SugaredLogger, dir string, s *ObstacleSet) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.geojson"))
	if err != nil {
		return 0, errors.Wrap(err, "listing obstacle files")
	}

	logger.Infow("loading obstacles", "dir", dir, "files", len(files))

	added := 0
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			logger.Warnw("failed to read obstacle file", "file", file, "error", err)
			continue
		}
		circles, err := ParseGeoJSONObstacles(data)
		if err != nil {
			logger.Warnw("failed to parse obstacle file", "file", file, "error", err)
			continue
		}
		for _, c := range circles {
			s.Add(c)
		}
		added += len(circles)
		logger.Debugw("loaded obstacles", "file", filepath.Base(file), "count", len(circles))
	}

	logger.Infow("obstacles loaded", "count", added)
	return added, nil
}

// ObstacleFeatures renders the committed obstacles as Point features with a
// radius property, the inverse of ParseGeoJSONObstacles.
func ObstacleFeatures(s *ObstacleSet) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, c := range s.circles {
		f := geojson.NewFeature(c.Center)
		f.Properties[RadiusProperty] = c.Radius
		fc.Append(f)
	}
	return fc
}
