package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/api-sage/bank-ledger/src/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := cli.DefaultLoader(ctx)
	if err != nil {
		log.Fatalf("start bank ledger: %v", err)
	}
	defer container.Close()

	if err := cli.Serve(ctx, container); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
