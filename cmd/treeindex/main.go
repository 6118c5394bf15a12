package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/forest-guardian/treeindex/internal/config"
	"github.com/forest-guardian/treeindex/internal/log"
	"github.com/forest-guardian/treeindex/internal/ui"
	"go.uber.org/zap"
)

func printBanner() {
	figure1 := figure.NewFigure("Tree", "isometric1", true)
	figure2 := figure.NewFigure("Index", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

func initCLI(app *ui.App) {
	defer func() {
		if r := recover(); r != nil {
			pc, file, line, ok := runtime.Caller(3)
			var location string
			if ok {
				fn := runtime.FuncForPC(pc)
				location = fmt.Sprintf("%s:%d in %s", file, line, fn.Name())
			} else {
				location = "Unknown location"
			}

			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			fmt.Printf("\033[31mLocation: %s\033[0m\n", location)
			fmt.Printf("\033[31mPlease check the input and try again.\033[0m\n")
			fmt.Printf("\033[31mExiting...\033[0m\n")
			log.Error("CLI:panic", zap.Any("panic", r), zap.String("location", location))

			stack := debug.Stack()
			errMessage := fmt.Sprintf("TreeIndex CLI panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, stack)
			if err := app.Notifier.Error(context.Background(), errMessage); err != nil {
				fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
			log.Sync()
			os.Exit(1)
		}
	}()
	printBanner()
	ui.ShowMenu(app)
}

func main() {
	var configPath string
	for i, arg := range os.Args {
		if strings.HasPrefix(arg, "--config=") {
			configPath = strings.TrimPrefix(arg, "--config=")
			break
		} else if arg == "--config" && i+1 < len(os.Args) {
			configPath = os.Args[i+1]
			break
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("\033[31mInvalid configuration: %s\033[0m\n", err.Error())
		os.Exit(1)
	}
	if err := log.Init(cfg.Logging.Level); err != nil {
		fmt.Printf("\033[31mInvalid log level: %s\033[0m\n", err.Error())
		os.Exit(1)
	}
	defer log.Sync()

	if configPath == "" {
		fmt.Printf("\033[33mNo config file specified. Using defaults and environment, data at %s\033[0m\n", cfg.DataDir)
	} else {
		fmt.Printf("\033[32mUsing config file: %s\033[0m\n", configPath)
	}

	initCLI(ui.NewApp(cfg))
}
