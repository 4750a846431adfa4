package main

import (
	"embed"
	"flag"
	"fmt"
	"os"

	"github.com/chazu/bezel/pkg/config"
	"github.com/chazu/bezel/pkg/logging"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	dir := flag.String("dir", ".", "directory containing "+config.FileName)
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	logging.SetLogger(logging.NewText(os.Stderr, *verbose))

	cfg, err := config.Resolve(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bezel: %v\n", err)
		os.Exit(1)
	}

	app := NewApp(cfg)
	bg := cfg.Background.RGBA()
	err = wails.Run(&options.App{
		Title:  cfg.Title,
		Width:  cfg.Width,
		Height: cfg.Height,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: bg.R, G: bg.G, B: bg.B, A: 255},
		OnStartup:        app.startup,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		logging.Logger().Error("wails exited", "err", err)
		os.Exit(1)
	}
}
