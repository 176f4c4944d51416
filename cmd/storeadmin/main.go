// Command storeadmin administers the tables of an online store database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mesh-intelligence/storeadmin/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
