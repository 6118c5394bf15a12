// Package prepare crops a batch of extents out of the sensor tiles that
// cover them and records the result in a manifest.
package prepare

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/forest-guardian/treeindex/internal/cache"
	"github.com/forest-guardian/treeindex/internal/geoindex"
	"github.com/forest-guardian/treeindex/internal/log"
	"github.com/forest-guardian/treeindex/internal/notification"
	"github.com/forest-guardian/treeindex/internal/raster"
	"github.com/forest-guardian/treeindex/internal/tiles"
	"github.com/gammazero/workerpool"
	"github.com/gocarina/gocsv"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

const ManifestName = "manifest.csv"

const (
	StatusWritten = "written"
	StatusCached  = "cached"
	StatusFailed  = "failed"
)

// Record is one manifest line.
type Record struct {
	Name   string  `csv:"name" json:"name"`
	Key    string  `csv:"grid_key" json:"grid_key"`
	Tile   string  `csv:"tile" json:"tile"`
	Left   float64 `csv:"left" json:"left"`
	Bottom float64 `csv:"bottom" json:"bottom"`
	Right  float64 `csv:"right" json:"right"`
	Top    float64 `csv:"top" json:"top"`
	Output string  `csv:"output" json:"output"`
	Status string  `csv:"status" json:"status"`
	Error  string  `csv:"error" json:"-"`
}

// Notifier reports the outcome of a run.
type Notifier interface {
	Success(ctx context.Context, msg string, fields ...notification.DiscordField) error
	Error(ctx context.Context, msg string, fields ...notification.DiscordField) error
}

type Options struct {
	Resolver *geoindex.Resolver
	Locator  *tiles.Locator
	Cropper  *raster.Cropper
	Format   raster.Format
	// AllYears crops every year that covers a feature, suffixing outputs
	// with the year.
	AllYears  bool
	OutputDir string
	Workers   int
	// Cache remembers finished crops; nil disables it.
	Cache    cache.CropCache[Record]
	Notifier Notifier
	// Progress draws a progress bar on stdout.
	Progress bool
}

type Result struct {
	Records  []Record
	Written  int
	Cached   int
	Failed   int
	Manifest string
}

type runner struct {
	opts   Options
	pool   []string
	mu     sync.Mutex
	open   map[string]*raster.Tile
	logTag string
}

// Run crops every feature from the tiles of pool. A feature that cannot be
// cropped is recorded as failed and its error is part of the joined error
// returned alongside the result; the other features still run.
func Run(ctx context.Context, features []Feature, pool []string, opts Options) (*Result, error) {
	if len(features) == 0 {
		return nil, ErrNoFeatures
	}
	if opts.Resolver == nil {
		opts.Resolver = geoindex.NewResolver(0, "")
	}
	if opts.Locator == nil {
		opts.Locator = tiles.NewLocator(nil)
	}
	if opts.Cropper == nil {
		opts.Cropper = raster.NewCropper(raster.DefaultNoData)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	r := &runner{opts: opts, pool: pool, open: make(map[string]*raster.Tile), logTag: "Prepare:"}
	defer r.closeTiles()

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.Default(int64(len(features)), "Cropping features")
	} else {
		bar = progressbar.DefaultSilent(int64(len(features)))
	}

	var (
		mu      sync.Mutex
		records = make([][]Record, len(features))
		errs    = make([]error, len(features))
	)
	wp := workerpool.New(opts.Workers)
	for i, f := range features {
		wp.Submit(func() {
			recs, err := r.crop(ctx, f)
			mu.Lock()
			records[i], errs[i] = recs, err
			bar.Add(1)
			mu.Unlock()
		})
	}
	wp.StopWait()
	bar.Finish()

	res := &Result{Manifest: filepath.Join(opts.OutputDir, ManifestName)}
	for _, recs := range records {
		for _, rec := range recs {
			switch rec.Status {
			case StatusWritten:
				res.Written++
			case StatusCached:
				res.Cached++
			case StatusFailed:
				res.Failed++
			}
			res.Records = append(res.Records, rec)
		}
	}
	if err := writeManifest(res.Manifest, res.Records); err != nil {
		return res, err
	}
	log.Info(r.logTag+"run finished", zap.Int("written", res.Written), zap.Int("cached", res.Cached), zap.Int("failed", res.Failed), zap.String("manifest", res.Manifest))

	runErr := errors.Join(errs...)
	r.notify(ctx, res, runErr)
	return res, runErr
}

// crop handles one feature, which yields one record per tile it is cut from.
func (r *runner) crop(ctx context.Context, f Feature) ([]Record, error) {
	base := Record{
		Name:   f.Name,
		Left:   f.Extent.Left(),
		Bottom: f.Extent.Bottom(),
		Right:  f.Extent.Right(),
		Top:    f.Extent.Top(),
	}
	fail := func(rec Record, err error) ([]Record, error) {
		rec.Status = StatusFailed
		rec.Error = err.Error()
		log.Warn(r.logTag+"feature failed", zap.String("feature", f.Name), zap.Error(err))
		return []Record{rec}, fmt.Errorf("feature %s: %w", f.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return fail(base, err)
	}

	key := r.opts.Resolver.Resolve(f.Extent)
	base.Key = string(key)
	paths, err := r.opts.Locator.Locate(r.pool, key, r.opts.AllYears)
	if err != nil {
		return fail(base, err)
	}

	var out []Record
	var errs []error
	for _, path := range paths {
		rec := base
		rec.Tile = path
		name := f.Name
		if r.opts.AllYears {
			year, err := r.opts.Locator.YearOf(path)
			if err != nil {
				recs, e := fail(rec, err)
				out, errs = append(out, recs...), append(errs, e)
				continue
			}
			name += "_" + year
		}
		rec, err = r.cropTile(f, rec, path, name)
		if err != nil {
			recs, e := fail(rec, err)
			out, errs = append(out, recs...), append(errs, e)
			continue
		}
		out = append(out, rec)
	}
	return out, errors.Join(errs...)
}

func (r *runner) cropTile(f Feature, rec Record, path, name string) (Record, error) {
	var cacheKey string
	if r.opts.Cache != nil {
		cacheKey = r.opts.Cache.Key(name, path, f.Extent.String(), r.opts.Format, r.opts.Cropper.NoData)
		if hit, ok := r.opts.Cache.Lookup(cacheKey); ok {
			hit.Status = StatusCached
			return hit, nil
		}
	}

	t, err := r.tile(path)
	if err != nil {
		return rec, err
	}
	out, err := r.opts.Cropper.Save(f.Extent, t, r.opts.OutputDir, name, r.opts.Format)
	if err != nil {
		return rec, err
	}
	rec.Output = out
	rec.Status = StatusWritten
	if r.opts.Cache != nil {
		if err := r.opts.Cache.Remember(cacheKey, out, rec); err != nil {
			log.Warn(r.logTag+"failed to cache crop", zap.String("output", out), zap.Error(err))
		}
	}
	return rec, nil
}

// tile returns a shared handle, opening path on first use.
func (r *runner) tile(path string) (*raster.Tile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.open[path]; ok {
		return t, nil
	}
	t, err := raster.OpenTile(path)
	if err != nil {
		return nil, err
	}
	r.open[path] = t
	return t, nil
}

func (r *runner) closeTiles() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for path, t := range r.open {
		if err := t.Close(); err != nil {
			log.Warn(r.logTag+"failed to close tile", zap.String("tile", path), zap.Error(err))
		}
	}
	r.open = map[string]*raster.Tile{}
}

func writeManifest(path string, records []Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	defer file.Close()
	if err := gocsv.MarshalFile(&records, file); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by Run.
func ReadManifest(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var records []Record
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return records, nil
}

func (r *runner) notify(ctx context.Context, res *Result, runErr error) {
	if r.opts.Notifier == nil {
		return
	}
	fields := []notification.DiscordField{
		{Name: "Written", Value: fmt.Sprint(res.Written), Inline: true},
		{Name: "Cached", Value: fmt.Sprint(res.Cached), Inline: true},
		{Name: "Failed", Value: fmt.Sprint(res.Failed), Inline: true},
	}
	var err error
	if runErr != nil {
		err = r.opts.Notifier.Error(ctx, fmt.Sprintf("%d crops failed, see %s", res.Failed, res.Manifest), fields...)
	} else {
		err = r.opts.Notifier.Success(ctx, fmt.Sprintf("crop preparation finished, manifest at %s", res.Manifest), fields...)
	}
	if err != nil {
		log.Warn(r.logTag+"failed to send notification", zap.Error(err))
	}
}
