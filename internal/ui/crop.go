package ui

import (
	"fmt"

	"github.com/forest-guardian/treeindex/internal/raster"
)

// CropExtent cuts one extent out of the most recent covering tile.
func CropExtent(app *App) {
	PrintWarning(fmt.Sprintf("Crops are written to %s as .%s files.", app.Cfg.Crop.OutputDir, app.Cfg.Crop.Format))

	e, err := ReadExtent("Enter the extent (left,bottom,right,top): ")
	if err != nil {
		PrintError(err.Error())
		return
	}
	pool, err := app.pool()
	if err != nil {
		PrintError(err.Error())
		return
	}
	key := app.resolver().Resolve(e)
	path, err := app.locator().Latest(pool, key)
	if err != nil {
		PrintError(err.Error())
		return
	}
	basename := ReadStringDefault("Enter the output name: ", string(key))

	tile, err := raster.OpenTile(path)
	if err != nil {
		PrintError(err.Error())
		return
	}
	defer tile.Close()
	out, err := app.cropper().Save(e, tile, app.Cfg.Crop.OutputDir, basename, raster.Format(app.Cfg.Crop.Format))
	if err != nil {
		PrintError(err.Error())
		return
	}
	PrintSuccess(fmt.Sprintf("Crop of %s written to %s", path, out))
}
