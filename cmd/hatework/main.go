// Command hatework runs the Hatework Station interlocking: the tick
// loop, the panel HTTP server (SSE snapshots + operator commands), and
// optionally a terminal operator console.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Lilyrua/hatework/config"
	"github.com/Lilyrua/hatework/journal"
	"github.com/Lilyrua/hatework/layout"
	"github.com/Lilyrua/hatework/panel"
	"github.com/Lilyrua/hatework/tower"
	"github.com/Lilyrua/hatework/ui"
)

func main() {
	level := zap.LevelFlag("log-level", zap.InfoLevel, "set log level")
	configPath := flag.String("config", "", "config file path (defaults apply when empty)")
	console := flag.Bool("console", false, "run the terminal operator console")
	flag.Parse()
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(*level)
	if *console {
		// the console owns the terminal
		cfg.OutputPaths = []string{"hatework.log"}
	}
	dev, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(dev)
	defer zap.S().Sync()

	c := config.Default()
	if *configPath != "" {
		c, err = config.Load(*configPath)
		if err != nil {
			zap.S().Fatalf("load config: %s", err)
		}
	}

	y, routes, zones := layout.Hatework()
	var j *journal.Journal
	var rec tower.Recorder
	if c.JournalPath != "" {
		j, err = journal.Open(c.JournalPath)
		if err != nil {
			zap.S().Fatalf("open journal: %s", err)
		}
		defer j.Close()
		rec = j
	}
	t := tower.New(tower.Conf{
		Layout:    y,
		Routes:    routes,
		Platforms: zones,
		Timing:    c.Timing(),
		Recorder:  rec,
	})

	zap.S().Infof("starting panel on %s…", c.Listen)
	panelServer := panel.NewServer(t, j)
	go func() {
		err := http.ListenAndServe(c.Listen, panelServer.Handler())
		zap.S().Fatalf("panel: %s", err)
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	go t.Run(ctx)

	if *console {
		if err := ui.Main(t); err != nil {
			zap.S().Fatalf("console: %s", err)
		}
		return
	}
	<-ctx.Done()
}
