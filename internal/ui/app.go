package ui

import (
	"fmt"

	"github.com/forest-guardian/treeindex/internal/config"
	"github.com/forest-guardian/treeindex/internal/geoindex"
	"github.com/forest-guardian/treeindex/internal/notification"
	"github.com/forest-guardian/treeindex/internal/raster"
	"github.com/forest-guardian/treeindex/internal/tiles"
)

// App carries the resolved configuration into the menu handlers.
type App struct {
	Cfg      config.Config
	Notifier *notification.Discord
}

func NewApp(cfg config.Config) *App {
	return &App{Cfg: cfg, Notifier: notification.NewDiscord()}
}

func (a *App) resolver() *geoindex.Resolver {
	return geoindex.NewResolver(a.Cfg.Tiles.Resolution, a.Cfg.Tiles.NameSuffix)
}

func (a *App) locator() *tiles.Locator {
	if a.Cfg.Tiles.YearFrom == config.YearFromToken {
		return tiles.NewLocator(tiles.TokenYear())
	}
	return tiles.NewLocator(tiles.SegmentYear(a.Cfg.Tiles.YearSegment))
}

func (a *App) cropper() *raster.Cropper {
	nodata := float64(raster.DefaultNoData)
	if a.Cfg.Crop.NoData != nil {
		nodata = *a.Cfg.Crop.NoData
	}
	return raster.NewCropper(nodata)
}

// pool expands the configured tile pattern, asking for one when unset.
func (a *App) pool() ([]string, error) {
	pattern := ReadStringDefault("Enter the tile glob pattern: ", a.Cfg.Tiles.Pattern)
	if pattern == "" {
		return nil, fmt.Errorf("no tile pattern given")
	}
	pool, err := tiles.Discover(pattern)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("no tiles match %s", pattern)
	}
	return pool, nil
}
