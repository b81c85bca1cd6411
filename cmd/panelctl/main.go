// Command panelctl prints the recorder's channel table and counters once,
// using the same backend client and locale tables as the web panel.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/chzzk-recorder-panel/internal/backend"
	"github.com/kapu/chzzk-recorder-panel/internal/config"
	"github.com/kapu/chzzk-recorder-panel/internal/i18n"
	"github.com/kapu/chzzk-recorder-panel/internal/render"
	"github.com/kapu/chzzk-recorder-panel/internal/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	backendURL := flag.String("backend", cfg.Backend.BaseURL, "recorder backend base URL")
	locale := flag.String("lang", cfg.Locale.Default, "display language (en, zh, ko)")
	noColor := flag.Bool("no-color", false, "disable colored output")
	timeout := flag.Duration("timeout", cfg.Backend.Timeout, "request timeout")
	flag.Parse()

	logger, err := util.NewLogger("warn", "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	catalog, err := i18n.LoadBundledCatalog()
	if err != nil {
		logger.Fatal("Failed to load locale catalog", zap.Error(err))
	}
	code, ok := i18n.ParseCode(*locale)
	if !ok {
		code = i18n.Fallback
	}
	dict, _ := catalog.Dictionary(code)
	l := i18n.NewLocalizer(code, dict)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+5*time.Second)
	defer cancel()

	client := backend.NewClient(*backendURL, *timeout, logger)

	channels, err := client.GetChannels(ctx)
	if err != nil {
		logger.Fatal("Failed to fetch channels", zap.Error(err))
	}
	snap, err := client.GetStatus(ctx)
	if err != nil {
		logger.Warn("Status unavailable, counting from channel list", zap.Error(err))
	}

	console := render.NewConsole(os.Stdout, *noColor)
	if err := console.Stats(l, snap, channels); err != nil {
		logger.Fatal("Failed to print stats", zap.Error(err))
	}
	if err := console.Channels(l, channels); err != nil {
		logger.Fatal("Failed to print channels", zap.Error(err))
	}
}
