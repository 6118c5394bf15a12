package mask

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle() orb.Polygon {
	return orb.Polygon{{{10, 10}, {80, 20}, {40, 90}, {10, 10}}}
}

func TestRasterizeTriangle(t *testing.T) {
	m, err := Rasterize(triangle(), 100, 100)
	require.NoError(t, err)

	n := m.Count()
	assert.Positive(t, n)
	assert.LessOrEqual(t, n, 100*100)
	assert.True(t, m.At(40, 40))
	assert.False(t, m.At(90, 90))

	box, ok := m.Box()
	require.True(t, ok)
	for _, v := range box {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
	assert.InDelta(t, 10, box[0], 1)
	assert.InDelta(t, 10, box[1], 1)
	assert.InDelta(t, 80, box[2], 1)
	assert.InDelta(t, 90, box[3], 1)
}

func TestRasterizeClipsToCanvas(t *testing.T) {
	m, err := Rasterize(orb.Polygon{{{-20, -20}, {50, -20}, {50, 50}, {-20, 50}}}, 30, 30)
	require.NoError(t, err)
	assert.Equal(t, 30*30, m.Count())
	box, ok := m.Box()
	require.True(t, ok)
	assert.Equal(t, [4]float64{0, 0, 29, 29}, box)
}

func TestRasterizeDegenerate(t *testing.T) {
	tests := []struct {
		name string
		p    orb.Polygon
	}{
		{"no rings", orb.Polygon{}},
		{"two vertices", orb.Polygon{{{1, 1}, {5, 5}, {1, 1}}}},
		{"collinear", orb.Polygon{{{1, 1}, {5, 5}, {9, 9}, {1, 1}}}},
		{"off canvas", orb.Polygon{{{200, 200}, {250, 200}, {220, 260}, {200, 200}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Rasterize(tt.p, 100, 100)
			require.ErrorIs(t, err, ErrDegeneratePolygon)
		})
	}
}

func TestDecode(t *testing.T) {
	masks, boxes, err := Decode([]orb.Polygon{triangle(), {{{0, 0}, {20, 0}, {20, 20}, {0, 20}, {0, 0}}}}, 100, 100)
	require.NoError(t, err)
	require.Len(t, masks, 2)
	require.Len(t, boxes, 2)
	assert.InDelta(t, 20, boxes[1][2], 1)

	_, _, err = Decode([]orb.Polygon{triangle(), {{{1, 1}, {2, 2}, {1, 1}}}}, 100, 100)
	require.ErrorIs(t, err, ErrDegeneratePolygon)
}

func TestEmptyMaskBox(t *testing.T) {
	m := &Mask{Width: 2, Height: 2, Bits: make([]bool, 4)}
	_, ok := m.Box()
	assert.False(t, ok)
}
