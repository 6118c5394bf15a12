package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/forest-guardian/treeindex/internal/dataset"
	"github.com/forest-guardian/treeindex/internal/geoindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtent(t *testing.T) {
	e, err := ParseExtent("404020, 3286020,404060 3286050")
	require.NoError(t, err)
	assert.Equal(t, geoindex.NewExtent(404020, 3286020, 404060, 3286050), e)

	for _, bad := range []string{"", "1,2,3", "a,b,c,d", "10,0,0,10"} {
		_, err := ParseExtent(bad)
		assert.Error(t, err, bad)
	}
}

func TestResolveInput(t *testing.T) {
	r := geoindex.NewResolver(1000, "_image")

	key, err := resolveInput(r, "404020,3286020,404060,3286050")
	require.NoError(t, err)
	assert.Equal(t, geoindex.Key("404000_3286000"), key)

	key, err = resolveInput(r, "2019_HARV_6_404000_3286000_image.tif")
	require.NoError(t, err)
	assert.Equal(t, geoindex.Key("404000_3286000"), key)

	_, err = resolveInput(r, "mosaic.tif")
	require.ErrorIs(t, err, geoindex.ErrPatternMismatch)
}

func TestReadHelpers(t *testing.T) {
	SetInput(strings.NewReader("3\n\nyes\nlater\n"))

	n, err := ReadInt("", 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "fallback", ReadStringDefault("", "fallback"))
	assert.True(t, ReadYesNo(""))
	assert.False(t, ReadYesNo(""))
}

func TestReadIntClosedInput(t *testing.T) {
	SetInput(strings.NewReader("4"))
	n, err := ReadInt("", 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = ReadInt("", 1, 5)
	require.ErrorIs(t, err, ErrInputClosed)
	assert.Equal(t, "", ReadString(""))
}

func TestShowMenuReturnsOnClosedInput(t *testing.T) {
	SetInput(strings.NewReader("9\n"))
	done := make(chan struct{})
	go func() {
		ShowMenu(&App{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("menu kept prompting after input closed")
	}
}

func TestFormatSummary(t *testing.T) {
	lines := FormatSummary(&dataset.Summary{
		Name:        "TreeBoxes",
		Version:     "1.0",
		SplitScheme: "official",
		Items:       3,
		Annotations: 9,
		Splits:      map[string]int{"train": 2, "test": 1},
		Groups:      map[string]int{"source_id = OAM": 1, "source_id = NEON": 2},
	})
	assert.Equal(t, []string{
		"TreeBoxes v1.0 (official)",
		"Items: 3",
		"Annotations: 9",
		"Splits:",
		"  test: 1",
		"  train: 2",
		"Groups:",
		"  source_id = NEON: 2",
		"  source_id = OAM: 1",
	}, lines)
}
