package ui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/forest-guardian/treeindex/internal/dataset"
)

// ListDatasets prints the registered dataset variants.
func ListDatasets(app *App) {
	fmt.Printf("\n%sAvailable datasets:%s\n", ColorGreen, ColorReset)
	for _, name := range dataset.Names() {
		info, _ := dataset.Lookup(name)
		kind := "labeled"
		if !info.Labeled {
			kind = "unlabeled"
		}
		fmt.Printf("%s- %s (%s %s, versions %s, splits %s)%s\n", ColorGreen, name, kind, info.Geometry,
			strings.Join(info.Versions, ","), strings.Join(info.SplitSchemes(), ","), ColorReset)
	}
}

// SummarizeDataset opens a dataset and prints its split and group counts.
func SummarizeDataset(app *App) {
	PrintWarning(fmt.Sprintf("The dataset tables are read from %s.", app.Cfg.DataDir))
	name := ReadStringDefault("Enter the dataset name: ", app.Cfg.Dataset.Name)
	scheme := app.Cfg.Dataset.SplitScheme
	if info, err := dataset.Lookup(name); err == nil && info.Labeled {
		scheme = ReadStringDefault("Enter the split scheme: ", scheme)
	}

	ds, err := dataset.Open(name, app.Cfg.DataDir, dataset.Options{
		Version:     app.Cfg.Dataset.Version,
		SplitScheme: scheme,
		Encoding:    app.Cfg.TableEncoding,
	})
	if err != nil {
		PrintError(err.Error())
		return
	}
	s, err := ds.Summary()
	if err != nil {
		PrintError(err.Error())
		return
	}
	fmt.Println()
	for _, line := range FormatSummary(s) {
		fmt.Printf("%s%s%s\n", ColorGreen, line, ColorReset)
	}
}

// FormatSummary renders a summary as lines, splits and groups sorted by name.
func FormatSummary(s *dataset.Summary) []string {
	lines := []string{
		fmt.Sprintf("%s v%s (%s)", s.Name, s.Version, s.SplitScheme),
		fmt.Sprintf("Items: %d", s.Items),
	}
	if s.Annotations > 0 {
		lines = append(lines, fmt.Sprintf("Annotations: %d", s.Annotations))
	}
	lines = append(lines, "Splits:")
	for _, k := range slices.Sorted(maps.Keys(s.Splits)) {
		lines = append(lines, fmt.Sprintf("  %s: %d", k, s.Splits[k]))
	}
	lines = append(lines, "Groups:")
	for _, k := range slices.Sorted(maps.Keys(s.Groups)) {
		lines = append(lines, fmt.Sprintf("  %s: %d", k, s.Groups[k]))
	}
	return lines
}
