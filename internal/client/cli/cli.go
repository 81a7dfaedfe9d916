// Package cli реализует команды консольного клиента
package cli

import (
	"context"
	"fmt"
	"os"

	"checkbook/internal/client/data"
	"checkbook/internal/client/syncer"
)

type Cli struct {
	dataService *data.Service
	syncService *syncer.Service
}

func New(dataService *data.Service, syncService *syncer.Service) *Cli {
	return &Cli{
		dataService: dataService,
		syncService: syncService,
	}
}

func (c *Cli) Run(ctx context.Context, command string, args []string) {
	var err error

	switch command {
	case "add-shop":
		err = c.runAddShop(ctx, args)
	case "shops":
		err = c.runShops(ctx)
	case "add-check":
		err = c.runAddCheck(ctx, args)
	case "checks":
		err = c.runChecks(ctx, args)
	case "months":
		err = c.runMonths(ctx)
	case "pending":
		err = c.runPending(ctx)
	case "sync":
		err = c.runSync(ctx)
	case "watch":
		err = c.runWatch(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		PrintUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func PrintUsage() {
	fmt.Println("Usage: checkbook [flags] <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  add-shop <name>        Add a shop to the local reference")
	fmt.Println("  shops                  List known shops")
	fmt.Println("  add-check              Add a check (-date, -shop, -item name:price:count[:unit])")
	fmt.Println("  checks                 List checks for a month (-month YYYY-MM)")
	fmt.Println("  months                 List months with stored checks and their totals")
	fmt.Println("  pending                Show the number of unsynced mutations")
	fmt.Println("  sync                   Synchronize with the server now")
	fmt.Println("  watch                  Run in foreground, syncing on connectivity changes")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -server <url>          Server URL (default http://localhost:8080)")
	fmt.Println("  -db <path>             Path to local database (default checkbook-client.db)")
	fmt.Println("  -version               Show version information")
}
