/*
Orrery draws a field of orbiting primitives through the engine package.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/orrery/engine"
	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/testbed"
)

func main() {
	configPath := flag.String("config", "orrery.toml", "path to the TOML configuration")
	flag.Parse()

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		core.LogFatal("failed to load the configuration: %s", err)
	}
	cfg.ApplyLogging()

	tb := testbed.NewTestGame()

	engine, err := engine.New(tb.Game, cfg)
	if err != nil {
		core.LogFatal("failed to create the engine: %s", err)
	}

	if err := engine.Initialize(); err != nil {
		core.LogFatal("failed to initialize the engine: %s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		engine.Shutdown()
	}()

	// run engine
	if err := engine.Run(); err != nil {
		core.LogFatal("engine stopped: %s", err)
	}
}
