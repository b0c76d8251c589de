package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/michael-i-mclean/toggle/internal/adapters/repository"
	"github.com/michael-i-mclean/toggle/internal/infrastructure/config"
	"github.com/michael-i-mclean/toggle/internal/infrastructure/logger"
	"github.com/michael-i-mclean/toggle/internal/infrastructure/persistence"
	"github.com/michael-i-mclean/toggle/internal/infrastructure/server"
)

// shutdownTimeout bounds the drain of in-flight requests. The final snapshot
// flush that follows has no bound: it must complete before the process exits.
const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Toggle Service API server",
		Long:  "Load the persisted toggle snapshot, then serve the toggle API until interrupted",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewSnapshotCommand creates the snapshot file tooling command
func NewSnapshotCommand() *cobra.Command {
	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Snapshot file commands",
		Long:  "Inspect the JSON snapshot file the service persists toggles to",
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print a summary of the snapshot file",
		Long: "Read the snapshot file and print toggle counts by state. The running " +
			"service swallows a corrupt snapshot and starts empty; inspect instead " +
			"fails loudly, so damage is visible to an operator.",
		Run: func(cmd *cobra.Command, args []string) {
			file, _ := cmd.Flags().GetString("file")
			inspectSnapshot(file)
		},
	}
	inspectCmd.Flags().String("file", "", "Snapshot file path (default: configured store path)")
	snapshotCmd.AddCommand(inspectCmd)

	return snapshotCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Toggle Service version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Toggle Service v1.0.0")
			fmt.Println("Build Date: 2024-01-01")
			fmt.Println("Git Commit: development")
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	store := persistence.NewFileStore(cfg.Store.Path, appLogger)
	repo := repository.NewToggleRepository(store, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The snapshot must be in memory before the listener opens; no request
	// may observe the store mid-load.
	if err := repo.Load(ctx); err != nil {
		appLogger.Fatalw("Failed to load toggle snapshot", "error", err)
	}

	srv, err := server.New(cfg, repo, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	appLogger.Infow("Starting Toggle Service API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"store_path", cfg.Store.Path,
	)

	go func() {
		if err := srv.Start(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalw("Server failed to start", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	appLogger.Info("Shutting down")

	// Drain in-flight requests first so no mutation can arrive after the
	// final flush below.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorw("Server shutdown failed", "error", err)
	}

	// Final flush, under the same mutation lock as ordinary requests. This is
	// the last operation to touch the store and runs without a deadline.
	if err := repo.Flush(context.Background()); err != nil {
		appLogger.Errorw("Final snapshot flush failed", "error", err)
	}

	appLogger.Info("Toggle service stopped")
}

func inspectSnapshot(path string) {
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		path = cfg.Store.Path
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read snapshot: %v", err)
	}

	// Strict decode: any value that is not a plain boolean is an error here,
	// even though the service itself would coerce it.
	var snap map[string]bool
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Fatalf("Snapshot is not a valid toggle mapping: %v", err)
	}

	on := 0
	for _, state := range snap {
		if state {
			on++
		}
	}

	fmt.Printf("Snapshot: %s\n", path)
	fmt.Printf("  Toggles: %d\n", len(snap))
	fmt.Printf("  On:      %d\n", on)
	fmt.Printf("  Off:     %d\n", len(snap)-on)
}
