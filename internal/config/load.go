package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/forest-guardian/treeindex/internal/properties"
	"github.com/joho/godotenv"
)

const EnvPrefix = "TREEINDEX_"

const (
	YearFromSegment = "segment"
	YearFromToken   = "token"

	FormatGTiff = "tif"
	FormatArray = "npy"
)

// Defaults returns the base layer. Defaults follow the NEON AOP tile layout
// (1 km grid, "_image" suffix, year eight segments from the end).
func Defaults() Config {
	nodata := -9999.0
	return Config{
		DataDir:       properties.DataPath(),
		TableEncoding: "utf-8",
		Dataset: Dataset{
			Name:        "TreePoints",
			Version:     "1.0",
			SplitScheme: "official",
		},
		Tiles: Tiles{
			Resolution:  1000,
			NameSuffix:  "_image",
			YearFrom:    YearFromSegment,
			YearSegment: 8,
		},
		Crop: Crop{
			NoData:    &nodata,
			Format:    FormatGTiff,
			OutputDir: properties.DataPath("crops"),
		},
		Prepare: Prepare{
			NameField: "id",
			Workers:   4,
		},
		Logging: Logging{Level: "info"},
	}
}

// LoadJSON parses a Config from a file path or raw JSON, rejecting unknown fields.
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Merge overlays over onto base. Empty strings and zero numbers do not override.
func Merge(base, over Config) Config {
	out := base
	if over.DataDir != "" {
		out.DataDir = over.DataDir
	}
	if over.TableEncoding != "" {
		out.TableEncoding = over.TableEncoding
	}
	if over.Dataset.Name != "" {
		out.Dataset.Name = over.Dataset.Name
	}
	if over.Dataset.Version != "" {
		out.Dataset.Version = over.Dataset.Version
	}
	if over.Dataset.SplitScheme != "" {
		out.Dataset.SplitScheme = over.Dataset.SplitScheme
	}
	if over.Tiles.Pattern != "" {
		out.Tiles.Pattern = over.Tiles.Pattern
	}
	if over.Tiles.Resolution != 0 {
		out.Tiles.Resolution = over.Tiles.Resolution
	}
	if over.Tiles.NameSuffix != "" {
		out.Tiles.NameSuffix = over.Tiles.NameSuffix
	}
	if over.Tiles.YearFrom != "" {
		out.Tiles.YearFrom = over.Tiles.YearFrom
	}
	if over.Tiles.YearSegment != 0 {
		out.Tiles.YearSegment = over.Tiles.YearSegment
	}
	// nodata 0 is meaningful, so presence is carried by the pointer
	if over.Crop.NoData != nil {
		v := *over.Crop.NoData
		out.Crop.NoData = &v
	}
	if over.Crop.Format != "" {
		out.Crop.Format = over.Crop.Format
	}
	if over.Crop.OutputDir != "" {
		out.Crop.OutputDir = over.Crop.OutputDir
	}
	if over.Prepare.Extents != "" {
		out.Prepare.Extents = over.Prepare.Extents
	}
	if over.Prepare.NameField != "" {
		out.Prepare.NameField = over.Prepare.NameField
	}
	if over.Prepare.Workers != 0 {
		out.Prepare.Workers = over.Prepare.Workers
	}
	if strings.TrimSpace(over.Logging.Level) != "" {
		out.Logging.Level = strings.TrimSpace(over.Logging.Level)
	}
	return out
}

// EnvOverlay builds an override layer from TREEINDEX_* variables.
// Malformed numbers are an error rather than being ignored.
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len(EnvPrefix) {
			continue
		}
		key := strings.TrimPrefix(kv[:eq], EnvPrefix)
		val := strings.TrimSpace(kv[eq+1:])
		switch key {
		case "DATA_DIR":
			over.DataDir = val
		case "TABLE_ENCODING":
			over.TableEncoding = val
		case "DATASET":
			over.Dataset.Name = val
		case "VERSION":
			over.Dataset.Version = val
		case "SPLIT_SCHEME":
			over.Dataset.SplitScheme = val
		case "TILE_PATTERN":
			over.Tiles.Pattern = val
		case "TILE_RESOLUTION":
			v, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return over, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
			}
			over.Tiles.Resolution = v
		case "TILE_SUFFIX":
			over.Tiles.NameSuffix = val
		case "YEAR_FROM":
			over.Tiles.YearFrom = val
		case "YEAR_SEGMENT":
			v, err := strconv.Atoi(val)
			if err != nil {
				return over, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
			}
			over.Tiles.YearSegment = v
		case "NODATA":
			v, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return over, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
			}
			over.Crop.NoData = &v
		case "CROP_FORMAT":
			over.Crop.Format = val
		case "CROP_DIR":
			over.Crop.OutputDir = val
		case "EXTENTS":
			over.Prepare.Extents = val
		case "NAME_FIELD":
			over.Prepare.NameField = val
		case "WORKERS":
			v, err := strconv.Atoi(val)
			if err != nil {
				return over, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
			}
			over.Prepare.Workers = v
		case "LOG_LEVEL":
			over.Logging.Level = val
		}
	}
	return over, nil
}

// envFiles are tried in order; the CLI is usually started from cmd/treeindex.
var envFiles = []string{".env", "../.env", "../../.env"}

// Load resolves the full configuration: defaults, then the JSON file at path
// (optional), then the environment. The first ".env" found in or above the
// working directory is loaded into the environment first; variables already
// set win.
func Load(path string) (Config, error) {
	for _, env := range envFiles {
		if _, err := os.Stat(env); err != nil {
			continue
		}
		if err := godotenv.Load(env); err != nil {
			return Config{}, fmt.Errorf("failed to load %s: %w", env, err)
		}
		break
	}
	cfg := Defaults()
	if path != "" {
		file, err := LoadJSON(path, nil)
		if err != nil {
			return Config{}, err
		}
		cfg = Merge(cfg, file)
	}
	over, err := EnvOverlay(os.Environ())
	if err != nil {
		return Config{}, err
	}
	cfg = Merge(cfg, over)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
