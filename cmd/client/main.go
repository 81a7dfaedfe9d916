package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"checkbook/internal/client/api"
	"checkbook/internal/client/cli"
	"checkbook/internal/client/data"
	"checkbook/internal/client/netmon"
	"checkbook/internal/client/queue"
	"checkbook/internal/client/storage/boltdb"
	"checkbook/internal/client/syncer"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// probeInterval период опроса сервера монитором связи
const probeInterval = 2 * time.Minute

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	dbPath := flag.String("db", "checkbook-client.db", "Path to local database")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}

	command := args[0]

	ctx := context.Background()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	// Открываем BoltDB storage
	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	apiClient := api.NewClient(*serverURL)

	// Очередь мутаций поверх того же BoltDB файла
	mutationQueue, err := queue.New(ctx, boltStorage, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load mutation queue: %v\n", err)
		os.Exit(1)
	}

	dataService := data.NewService(boltStorage, mutationQueue, logger)

	monitor := netmon.New(apiClient, probeInterval, logger)
	syncService := syncer.NewService(
		apiClient, mutationQueue, boltStorage, boltStorage,
		monitor, syncer.DefaultConfig(), logger,
	)

	// Новая мутация при живом соединении уходит сразу, не дожидаясь probe
	dataService.OnMutation(func() {
		syncService.NudgeDrain(ctx)
	})

	cli.New(dataService, syncService).Run(ctx, command, args[1:])
}

func printVersion() {
	fmt.Printf("Checkbook Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
