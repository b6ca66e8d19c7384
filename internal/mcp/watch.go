package mcp

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// WatchParent cancels ctx through cancelFn when the parent process goes
// away, so an orphaned stdio server does not linger after the editor exits.
//
// It must not read stdin: StdioTransport owns it.
func WatchParent(ctx context.Context, logger *slog.Logger, cancelFn context.CancelFunc) {
	watchParent(ctx, logger, cancelFn, os.Getppid, 2*time.Second)
}

func watchParent(ctx context.Context, logger *slog.Logger, cancelFn context.CancelFunc, getppid func() int, every time.Duration) {
	ppid := getppid()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(every):
				if getppid() != ppid {
					logger.Warn("parent process exited, shutting down", "ppid", ppid)
					cancelFn()
					return
				}
			}
		}
	}()
}
