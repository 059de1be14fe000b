package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/adapters/filter"
	"github.com/mikey/lateral-phish-detector/internal/core"
	"github.com/mikey/lateral-phish-detector/internal/di"
	"github.com/mikey/lateral-phish-detector/internal/factory"
)

func main() {
	flags, err := di.ParseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags, os.Stdout)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	loader *core.SnapshotLoader,
	snapshots *core.SnapshotHandle,
	sources *factory.SourceFactory,
	cliFilter *filter.CLIFilter,
) error {
	defer logger.Sync()
	defer sources.Close()

	req, err := readRequest(flags, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := loader.Reload(ctx, snapshots); err != nil {
		return fmt.Errorf("failed to load indexes: %w", err)
	}

	_, err = cliFilter.ScoreEmail(ctx, req)
	return err
}

// readRequest builds the request from the input file when given, otherwise
// from the message flags
func readRequest(flags *di.CLIFlags, logger *zap.Logger) (*core.ScoreRequest, error) {
	if flags.InputFile == "" {
		return &core.ScoreRequest{
			Subject: flags.Subject,
			Body:    flags.Body,
			From:    flags.From,
			To:      flags.To,
			Date:    flags.Date,
		}, nil
	}

	file, err := os.Open(flags.InputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	logger.Info("Reading email from file", zap.String("file", flags.InputFile))

	parsed, err := filter.ParseMessage(file)
	if err != nil {
		return nil, err
	}

	req := parsed.Request(time.Now())
	if flags.Date != "" {
		req.Date = flags.Date
	}
	return req, nil
}
