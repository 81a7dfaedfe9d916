package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"checkbook/internal/client/syncer"
)

func (c *Cli) runSync(ctx context.Context) error {
	fmt.Println("Synchronizing with server...")

	pending := c.syncService.PendingCount()

	if err := c.syncService.SyncNow(ctx); err != nil {
		if errors.Is(err, syncer.ErrOffline) {
			return fmt.Errorf("server is unreachable, try again later. %d mutation(s) remain queued", pending)
		}
		return fmt.Errorf("synchronization failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Synchronization completed.")
	fmt.Printf("Pushed %d mutation(s), %d remaining in queue.\n",
		pending-c.syncService.PendingCount(), c.syncService.PendingCount())

	return nil
}

func (c *Cli) runPending(_ context.Context) error {
	n := c.syncService.PendingCount()
	if n == 0 {
		fmt.Println("Queue is empty, everything is synced.")
		return nil
	}

	fmt.Printf("%d mutation(s) waiting for sync.\n", n)
	fmt.Println("Run 'checkbook sync' or wait for connectivity to be restored.")

	return nil
}

// runWatch держит клиент в foreground: монитор связи периодически
// опрашивает сервер и запускает синхронизацию при восстановлении сети
func (c *Cli) runWatch(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c.syncService.Start(ctx)
	defer c.syncService.Stop()

	fmt.Println("Watching connectivity, press Ctrl+C to stop.")

	<-ctx.Done()

	fmt.Println()
	fmt.Printf("Stopped. %d mutation(s) remain in queue.\n", c.syncService.PendingCount())

	return nil
}
