package prepare

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/forest-guardian/treeindex/internal/cache"
	"github.com/forest-guardian/treeindex/internal/geoindex"
	"github.com/forest-guardian/treeindex/internal/notification"
	"github.com/forest-guardian/treeindex/internal/raster"
	"github.com/forest-guardian/treeindex/internal/tiles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const extentsJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"id": "crown 1"},
     "geometry": {"type": "Polygon", "coordinates": [[[404020, 3286020], [404060, 3286020], [404060, 3286050], [404020, 3286050], [404020, 3286020]]]}},
    {"type": "Feature", "properties": {"id": 7},
     "geometry": {"type": "Polygon", "coordinates": [[[404010, 3286070], [404030, 3286070], [404030, 3286090], [404010, 3286070]]]}},
    {"type": "Feature", "properties": {},
     "geometry": {"type": "Point", "coordinates": [500500, 4100500]}}
  ]
}`

// writeTile writes a 100x100 single band tile whose top-left corner is at
// (404000, 3286100).
func writeTile(t *testing.T, path string, fill float64) {
	t.Helper()
	godal.RegisterAll()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float32, 100, 100)
	require.NoError(t, err)
	require.NoError(t, ds.SetGeoTransform([6]float64{404000, 1, 0, 3286100, 0, -1}))
	buf := make([]float64, 100*100)
	for i := range buf {
		buf[i] = fill + float64(i%100)
	}
	band := ds.Bands()[0]
	require.NoError(t, band.SetNoData(raster.DefaultNoData))
	require.NoError(t, band.Write(0, 0, buf, 100, 100))
	require.NoError(t, ds.Close())
}

func fixture(t *testing.T) ([]Feature, []string) {
	t.Helper()
	dir := t.TempDir()
	extents := filepath.Join(dir, "crowns.geojson")
	require.NoError(t, os.WriteFile(extents, []byte(extentsJSON), 0o644))
	features, err := LoadExtents(extents, "id")
	require.NoError(t, err)

	older := filepath.Join(dir, "tiles", "2019_404000_3286000_image.tif")
	newer := filepath.Join(dir, "tiles", "2021_404000_3286000_image.tif")
	writeTile(t, older, 0)
	writeTile(t, newer, 1000)
	return features, []string{older, newer}
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(_ context.Context, msg string, _ ...notification.DiscordField) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
	return nil
}

func (n *recordingNotifier) Error(_ context.Context, msg string, _ ...notification.DiscordField) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
	return nil
}

func TestLoadExtents(t *testing.T) {
	features, _ := fixture(t)
	require.Len(t, features, 3)
	assert.Equal(t, "crown_1", features[0].Name)
	assert.Equal(t, "7", features[1].Name)
	assert.Equal(t, "feature_2", features[2].Name)
	assert.Equal(t, geoindex.NewExtent(404020, 3286020, 404060, 3286050), features[0].Extent)
}

func TestLoadExtentsDuplicateNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.geojson")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"id":"a"},"geometry":{"type":"Point","coordinates":[1,1]}},
		{"type":"Feature","properties":{"id":"a"},"geometry":{"type":"Point","coordinates":[2,2]}}]}`), 0o644))
	features, err := LoadExtents(path, "id")
	require.NoError(t, err)
	assert.Equal(t, "a", features[0].Name)
	assert.Equal(t, "a_1", features[1].Name)

	clash := filepath.Join(t.TempDir(), "clash.geojson")
	require.NoError(t, os.WriteFile(clash, []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"id":"a_1"},"geometry":{"type":"Point","coordinates":[1,1]}},
		{"type":"Feature","properties":{"id":"a"},"geometry":{"type":"Point","coordinates":[2,2]}},
		{"type":"Feature","properties":{"id":"a"},"geometry":{"type":"Point","coordinates":[3,3]}},
		{"type":"Feature","properties":{"id":"a"},"geometry":{"type":"Point","coordinates":[4,4]}},
		{"type":"Feature","properties":{"id":"a_2"},"geometry":{"type":"Point","coordinates":[5,5]}}]}`), 0o644))
	features, err = LoadExtents(clash, "id")
	require.NoError(t, err)
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"a_1", "a", "a_2", "a_3", "a_2_1"}, names)

	empty := filepath.Join(t.TempDir(), "empty.geojson")
	require.NoError(t, os.WriteFile(empty, []byte(`{"type":"FeatureCollection","features":[]}`), 0o644))
	_, err = LoadExtents(empty, "id")
	require.ErrorIs(t, err, ErrNoFeatures)
}

func TestRunLatest(t *testing.T) {
	features, pool := fixture(t)
	out := t.TempDir()
	notifier := &recordingNotifier{}

	res, err := Run(context.Background(), features, pool, Options{
		Locator:   tiles.NewLocator(tiles.TokenYear()),
		Format:    raster.GTiff,
		OutputDir: out,
		Workers:   2,
		Notifier:  notifier,
	})
	require.Error(t, err)
	require.ErrorIs(t, err, tiles.ErrNoMatch)
	assert.Equal(t, 2, res.Written)
	assert.Equal(t, 1, res.Failed)
	assert.Len(t, notifier.errors, 1)
	assert.Empty(t, notifier.successes)

	require.Len(t, res.Records, 3)
	first := res.Records[0]
	assert.Equal(t, "404000_3286000", first.Key)
	assert.Equal(t, pool[1], first.Tile)
	assert.Equal(t, filepath.Join(out, "crown_1.tif"), first.Output)

	px, err := raster.Load(first.Output)
	require.NoError(t, err)
	assert.Equal(t, [3]int{1, 30, 40}, px.Shape())
	assert.Equal(t, 1000.0+20, px.At(0, 0, 0))

	manifest, err := ReadManifest(res.Manifest)
	require.NoError(t, err)
	require.Len(t, manifest, 3)
	assert.Equal(t, StatusFailed, manifest[2].Status)
	assert.Contains(t, manifest[2].Error, "no tile matches")
}

func TestRunAllYearsArray(t *testing.T) {
	features, pool := fixture(t)
	out := t.TempDir()

	res, err := Run(context.Background(), features[:2], pool, Options{
		Locator:   tiles.NewLocator(tiles.TokenYear()),
		Format:    raster.Array,
		AllYears:  true,
		OutputDir: out,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Written)
	for _, name := range []string{"crown_1_2019.npy", "crown_1_2021.npy", "7_2019.npy", "7_2021.npy"} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	px, err := raster.ReadArray(filepath.Join(out, "crown_1_2019.npy"))
	require.NoError(t, err)
	assert.Equal(t, 20.0, px.At(0, 0, 0))
}

func TestRunUsesCache(t *testing.T) {
	features, pool := fixture(t)
	out := t.TempDir()
	opts := Options{
		Locator:   tiles.NewLocator(tiles.TokenYear()),
		OutputDir: out,
		Cache:     cache.NewFileCache[Record](filepath.Join(out, ".cache")),
	}

	res, err := Run(context.Background(), features[:2], pool, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Written)

	notifier := &recordingNotifier{}
	opts.Notifier = notifier
	res, err = Run(context.Background(), features[:2], pool, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Written)
	assert.Equal(t, 2, res.Cached)
	assert.Len(t, notifier.successes, 1)

	require.NoError(t, os.Remove(filepath.Join(out, "crown_1.tif")))
	res, err = Run(context.Background(), features[:2], pool, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Written)
	assert.Equal(t, 1, res.Cached)
}

func TestRunCanceled(t *testing.T) {
	features, pool := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, features[:2], pool, Options{Locator: tiles.NewLocator(tiles.TokenYear()), OutputDir: t.TempDir()})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, res.Failed)
}

func TestRunNoFeatures(t *testing.T) {
	_, err := Run(context.Background(), nil, nil, Options{OutputDir: t.TempDir()})
	require.ErrorIs(t, err, ErrNoFeatures)
}
