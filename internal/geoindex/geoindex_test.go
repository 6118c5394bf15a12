package geoindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	r := NewResolver(1000, "")
	tests := []struct {
		name   string
		extent Extent
		want   Key
	}{
		{"whole cell", NewExtent(257000, 4106000, 258000, 4107000), "257000_4106000"},
		{"small crown", NewExtent(257410.2, 4106870.5, 257422.8, 4106881.1), "257000_4106000"},
		{"midpoint on cell edge", NewExtent(257500, 4106500, 258500, 4107500), "258000_4107000"},
		{"straddles cells", NewExtent(256900, 4105900, 257300, 4106300), "257000_4106000"},
		{"negative coordinates", NewExtent(-1500, -1500, -1400, -1400), "-2000_-2000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.extent))
		})
	}
}

func TestResolveSameCell(t *testing.T) {
	r := NewResolver(1000, "")
	base := r.Resolve(NewExtent(400100, 3280100, 400200, 3280200))
	for _, e := range []Extent{
		NewExtent(400000, 3280000, 400999, 3280999),
		NewExtent(400400, 3280400, 400600, 3280600),
		NewExtent(399800, 3279900, 401000, 3281000),
		ExtentFromBounds([4]float64{400010, 3280010, 400020, 3280020}),
	} {
		assert.Equal(t, base, r.Resolve(e), "extent %s", e)
	}
}

func TestResolveFromName(t *testing.T) {
	r := NewResolver(1000, "")
	key, err := r.ResolveFromName("/neon/2019/FullSite/D17/2019_SJER_4/L3/Camera/Mosaic/2019_SJER_4_257000_4106000_image.tif")
	require.NoError(t, err)
	assert.Equal(t, Key("257000_4106000"), key)

	_, err = r.ResolveFromName("/neon/tiles/SJER_mosaic.tif")
	require.ErrorIs(t, err, ErrPatternMismatch)

	_, err = r.ResolveFromName("/neon/tiles/257000_4106000.tif")
	require.ErrorIs(t, err, ErrPatternMismatch)
}

func TestResolveFromNameCustomSuffix(t *testing.T) {
	r := NewResolver(1000, "_CHM")
	key, err := r.ResolveFromName("NEON_D03_OSBS_DP3_404000_3286000_CHM.tif")
	require.NoError(t, err)
	assert.Equal(t, Key("404000_3286000"), key)
}

func TestNameAndExtentAgree(t *testing.T) {
	r := NewResolver(1000, "")
	tiles := map[string]Extent{
		"2018_OSBS_4_404000_3286000_image.tif": NewExtent(404000, 3286000, 405000, 3287000),
		"2021_TEAK_5_315000_4091000_image.tif": NewExtent(315000, 4091000, 316000, 4092000),
		"2019_SJER_3_257000_4106000_image.tif": NewExtent(257000, 4106000, 258000, 4107000),
	}
	for name, extent := range tiles {
		fromName, err := r.ResolveFromName(name)
		require.NoError(t, err)
		assert.Equal(t, r.Resolve(extent), fromName, name)
	}
}
