package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/cryptosafe/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	c := newCLI(
		newTerminal(os.Stdin, os.Stderr),
		models.NewAppBuildInfo(buildVersion, buildDate, buildCommit),
	)
	if err := c.execute(ctx, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
