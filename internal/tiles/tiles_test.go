package tiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/forest-guardian/treeindex/internal/geoindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatest(t *testing.T) {
	l := NewLocator(TokenYear())
	pool := []string{"t/2019_500500_image.tif", "t/2021_500500_image.tif"}

	got, err := l.Latest(pool, "500500")
	require.NoError(t, err)
	assert.Equal(t, "t/2021_500500_image.tif", got)
}

func TestLatestIgnoresOtherKeys(t *testing.T) {
	l := NewLocator(TokenYear())
	pool := []string{
		"t/2018_404000_3286000_image.tif",
		"t/2022_405000_3286000_image.tif",
		"t/2020_404000_3286000_image.tif",
	}
	got, err := l.Latest(pool, "404000_3286000")
	require.NoError(t, err)
	assert.Equal(t, "t/2020_404000_3286000_image.tif", got)
}

func TestNoMatch(t *testing.T) {
	l := NewLocator(TokenYear())
	pool := []string{"t/2019_500500_image.tif"}

	_, err := l.Latest(pool, "257000_4106000")
	require.ErrorIs(t, err, ErrNoMatch)
	_, err = l.AllYears(pool, "257000_4106000")
	require.ErrorIs(t, err, ErrNoMatch)
	_, err = l.Latest(nil, "257000_4106000")
	require.ErrorIs(t, err, ErrNoMatch)
}

func TestAllYearsOnePerYear(t *testing.T) {
	l := NewLocator(TokenYear())
	pool := []string{
		"a/2021_500500_image.tif",
		"a/2019_500500_image.tif",
		"b/2019_500500_image.tif",
		"a/2020_500500_image.tif",
		"b/2021_500500_image.tif",
		"a/2019_600600_image.tif",
	}
	got, err := l.AllYears(pool, "500500")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"a/2019_500500_image.tif",
		"a/2020_500500_image.tif",
		"a/2021_500500_image.tif",
	}, got)

	years := map[string]bool{}
	for _, p := range got {
		y, err := l.YearOf(p)
		require.NoError(t, err)
		assert.False(t, years[y], "year %s returned twice", y)
		years[y] = true
	}

	again, err := l.AllYears(pool, "500500")
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestSegmentYear(t *testing.T) {
	path := "/neon/2019/FullSite/D17/2019_SJER_4/L3/Camera/Mosaic/2019_SJER_4_257000_4106000_image.tif"
	year, err := SegmentYear(8)(path)
	require.NoError(t, err)
	assert.Equal(t, "2019", year)

	_, err = SegmentYear(8)("Mosaic/2019_SJER_4_257000_4106000_image.tif")
	require.ErrorIs(t, err, ErrYearMissing)
}

func TestAllYearsNEONLayout(t *testing.T) {
	l := NewLocator(SegmentYear(8))
	pool := []string{
		"/neon/2018/FullSite/D17/2018_SJER_3/L3/Camera/Mosaic/2018_SJER_3_257000_4106000_image.tif",
		"/neon/2019/FullSite/D17/2019_SJER_4/L3/Camera/Mosaic/2019_SJER_4_257000_4106000_image.tif",
		"/neon/2019/FullSite/D17/2019_SJER_4/L3/Camera/Mosaic/2019_SJER_4_258000_4106000_image.tif",
	}
	got, err := l.AllYears(pool, geoindex.Key("257000_4106000"))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	latest, err := l.Locate(pool, "257000_4106000", false)
	require.NoError(t, err)
	assert.Equal(t, []string{pool[1]}, latest)
}

func TestAllYearsMissingYear(t *testing.T) {
	l := NewLocator(TokenYear())
	_, err := l.AllYears([]string{"t/latest_500500_image.tif"}, "500500")
	require.ErrorIs(t, err, ErrYearMissing)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2019_500500_image.tif", "2021_500500_image.tif", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	pool, err := Discover(filepath.Join(dir, "*_image.tif"))
	require.NoError(t, err)
	assert.Len(t, pool, 2)
}
