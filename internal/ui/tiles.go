package ui

import (
	"fmt"
	"strings"

	"github.com/forest-guardian/treeindex/internal/geoindex"
)

// ResolveKey prints the grid key of an extent or of a tile file name.
func ResolveKey(app *App) {
	input := ReadString("Enter an extent (left,bottom,right,top) or a tile file name: ")
	key, err := resolveInput(app.resolver(), input)
	if err != nil {
		PrintError(err.Error())
		return
	}
	PrintSuccess(fmt.Sprintf("Grid key: %s", key))
}

func resolveInput(r *geoindex.Resolver, input string) (geoindex.Key, error) {
	if strings.ContainsAny(input, ",") || len(strings.Fields(input)) == 4 {
		e, err := ParseExtent(input)
		if err != nil {
			return "", err
		}
		return r.Resolve(e), nil
	}
	return r.ResolveFromName(input)
}

// LocateTile finds the most recent tile, or one per year, for an extent.
func LocateTile(app *App) {
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
	allYears := ReadYesNo("List every year? ")

	key := app.resolver().Resolve(e)
	paths, err := app.locator().Locate(pool, key, allYears)
	if err != nil {
		PrintError(err.Error())
		return
	}
	fmt.Printf("\n%sTiles for %s:%s\n", ColorGreen, key, ColorReset)
	for _, p := range paths {
		fmt.Printf("%s- %s%s\n", ColorGreen, p, ColorReset)
	}
}
