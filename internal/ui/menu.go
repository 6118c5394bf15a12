package ui

import (
	"errors"
	"fmt"
	"os"
)

type menuOption struct {
	title   string
	handler func(*App)
}

// ShowMenu displays the main menu and handles user input
func ShowMenu(app *App) {
	menuOptions := []menuOption{
		{"Summarize a dataset", SummarizeDataset},
		{"View the list of available datasets", ListDatasets},
		{"Resolve the grid key of an extent or tile name", ResolveKey},
		{"Locate the sensor tile covering an extent", LocateTile},
		{"Crop an extent out of its sensor tile", CropExtent},
		{"Prepare crops for every feature of a GeoJSON", PrepareCrops},
		{"Exit the application", func(*App) { fmt.Println("Exiting..."); os.Exit(0) }},
	}

	for {
		fmt.Println("\033[34m===================\033[0m")
		for i, opt := range menuOptions {
			fmt.Printf("\033[34m%d. %s\033[0m\n", i+1, opt.title)
		}

		choice, err := ReadInt("Please enter your choice: ", 1, len(menuOptions))
		if errors.Is(err, ErrInputClosed) {
			fmt.Println("\nExiting...")
			return
		}
		if err != nil {
			PrintError(err.Error())
			continue
		}

		menuOptions[choice-1].handler(app)
	}
}
