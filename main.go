package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nconklindev/sweeper/internal/config"
	"github.com/nconklindev/sweeper/internal/logging"
	"github.com/nconklindev/sweeper/internal/pipeline"
	"github.com/nconklindev/sweeper/internal/ui"
	"github.com/nconklindev/sweeper/internal/web"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle --version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("sweeper %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 && os.Args[1] == "serve" {
		if err := serve(cfg); err != nil {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := runTUI(cfg); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// serve runs the web server until SIGINT or SIGTERM, then shuts it down
// within the configured timeout.
func serve(cfg *config.Config) error {
	logging.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	proc := pipeline.NewProcessor(pipeline.OptionsFromConfig(cfg))
	server := web.NewServer(proc, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// runTUI runs the terminal UI. Logs go to a file since the terminal belongs
// to the UI.
func runTUI(cfg *config.Config) error {
	f, err := tea.LogToFile(cfg.Logging.File, "sweeper")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	logging.Setup(f, cfg.Logging.Level, cfg.Logging.Format)

	proc := pipeline.NewProcessor(pipeline.OptionsFromConfig(cfg))
	p := tea.NewProgram(ui.InitialModel(proc, cfg.Output.Dir), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
