package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cmd "github.com/ethan2004g/interactive-web-novels/cmd/novels"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
