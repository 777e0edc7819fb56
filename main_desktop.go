//go:build desktop

package main

import (
	"context"
	"embed"
	"log/slog"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/chazu/feasible/pkg/polytope"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	polytope.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	app := NewApp()
	err := wails.Run(&options.App{
		Title:  "Feasible",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 17, G: 17, B: 17, A: 1},
		OnStartup: func(ctx context.Context) {
			app.startup(ctx)
			app.SetEmitter(func(event string, data any) {
				runtime.EventsEmit(ctx, event, data)
			})
			runtime.EventsEmit(ctx, EventResult, app.Current())
		},
		OnShutdown: app.shutdown,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		slog.Error("wails", "err", err)
		os.Exit(1)
	}
}
