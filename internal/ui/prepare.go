package ui

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/forest-guardian/treeindex/internal/cache"
	"github.com/forest-guardian/treeindex/internal/prepare"
	"github.com/forest-guardian/treeindex/internal/raster"
)

// PrepareCrops crops every feature of a GeoJSON file.
func PrepareCrops(app *App) {
	PrintWarning("Every feature's bounding box is cropped from the tile covering its grid cell.\n" +
		"Finished crops are remembered, so an interrupted run can simply be started again.")

	extents := ReadStringDefault("Enter the GeoJSON path: ", app.Cfg.Prepare.Extents)
	features, err := prepare.LoadExtents(extents, app.Cfg.Prepare.NameField)
	if err != nil {
		PrintError(err.Error())
		return
	}
	pool, err := app.pool()
	if err != nil {
		PrintError(err.Error())
		return
	}
	allYears := ReadYesNo("Crop every available year? ")

	out := app.Cfg.Crop.OutputDir
	res, err := prepare.Run(context.Background(), features, pool, prepare.Options{
		Resolver:  app.resolver(),
		Locator:   app.locator(),
		Cropper:   app.cropper(),
		Format:    raster.Format(app.Cfg.Crop.Format),
		AllYears:  allYears,
		OutputDir: out,
		Workers:   app.Cfg.Prepare.Workers,
		Cache:     cache.NewFileCache[prepare.Record](filepath.Join(out, ".cache")),
		Notifier:  app.Notifier,
		Progress:  true,
	})
	if res == nil {
		PrintError(err.Error())
		return
	}
	if err != nil {
		PrintError(fmt.Sprintf("%d of %d crops failed, see %s", res.Failed, len(res.Records), res.Manifest))
	}
	PrintSuccess(fmt.Sprintf("Crops written: %d, already present: %d, failed: %d\nManifest: %s", res.Written, res.Cached, res.Failed, res.Manifest))
}
