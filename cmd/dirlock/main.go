package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bashhack/dirlock/internal/config"
	"github.com/bashhack/dirlock/internal/lock"
)

// Version information - injected at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	versionInfo := config.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	app := NewDefaultApp(versionInfo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		sig := <-c
		_, _ = fmt.Fprintf(app.Stderr, "\nReceived signal %v, stopping dirlock...\n", sig)

		// Cancel the context so the lock wait or the guarded command stops
		cancel()

		// If the command ignores the interrupt, release our locks and leave
		time.Sleep(5 * time.Second)
		app.CleanupOnSignal()
		app.exit(ExitInterrupted)
	}()

	code := app.Execute(ctx, os.Args[1:])

	// Locks still registered here were never released by their command
	lock.FinalizeAll()

	app.exit(code)
}
