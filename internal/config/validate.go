package config

import (
	"errors"
	"fmt"

	"golang.org/x/text/encoding/htmlindex"
	"go.uber.org/zap"
)

func Validate(cfg Config) error {
	if cfg.DataDir == "" {
		return errors.New("config: data_dir not set")
	}
	if _, err := htmlindex.Get(cfg.TableEncoding); err != nil {
		return fmt.Errorf("config: table_encoding %q: %w", cfg.TableEncoding, err)
	}
	if cfg.Dataset.Name == "" {
		return errors.New("config: dataset.name not set")
	}
	if cfg.Tiles.Resolution <= 0 {
		return fmt.Errorf("config: tiles.resolution must be > 0, got %v", cfg.Tiles.Resolution)
	}
	switch cfg.Tiles.YearFrom {
	case YearFromSegment:
		if cfg.Tiles.YearSegment < 1 {
			return fmt.Errorf("config: tiles.year_segment must be >= 1, got %d", cfg.Tiles.YearSegment)
		}
	case YearFromToken:
	default:
		return fmt.Errorf("config: tiles.year_from %q is not one of %q, %q", cfg.Tiles.YearFrom, YearFromSegment, YearFromToken)
	}
	if cfg.Crop.NoData == nil {
		return errors.New("config: crop.nodata not set")
	}
	switch cfg.Crop.Format {
	case FormatGTiff, FormatArray:
	default:
		return fmt.Errorf("config: crop.format %q is not one of %q, %q", cfg.Crop.Format, FormatGTiff, FormatArray)
	}
	if cfg.Prepare.Workers < 1 {
		return fmt.Errorf("config: prepare.workers must be >= 1, got %d", cfg.Prepare.Workers)
	}
	if _, err := zap.ParseAtomicLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("config: logging.level: %w", err)
	}
	return nil
}
