package config

// Config is resolved once at startup (defaults, then file, then environment)
// and never re-read. JSON keys are snake_case; unknown keys fail parsing.
type Config struct {
	DataDir       string  `json:"data_dir"`
	TableEncoding string  `json:"table_encoding"`
	Dataset       Dataset `json:"dataset"`
	Tiles         Tiles   `json:"tiles"`
	Crop          Crop    `json:"crop"`
	Prepare       Prepare `json:"prepare"`
	Logging       Logging `json:"logging"`
}

type Dataset struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	SplitScheme string `json:"split_scheme"`
}

// Tiles configures grid-key resolution and tile lookup.
type Tiles struct {
	// Pattern is the glob expanded into the candidate pool.
	Pattern    string  `json:"pattern"`
	Resolution float64 `json:"resolution"`
	NameSuffix string  `json:"name_suffix"`
	// YearFrom is "segment" (path segment counted from the end) or "token"
	// (first 19xx/20xx token in the file name).
	YearFrom    string `json:"year_from"`
	YearSegment int    `json:"year_segment"`
}

type Crop struct {
	// NoData is used when a tile band declares no sentinel of its own.
	NoData    *float64 `json:"nodata"`
	Format    string   `json:"format"`
	OutputDir string   `json:"output_dir"`
}

type Prepare struct {
	Extents   string `json:"extents"`
	NameField string `json:"name_field"`
	Workers   int    `json:"workers"`
}

type Logging struct {
	Level string `json:"level"`
}
