package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"editzen-backend/internal/client"
	"editzen-backend/internal/config"
	"editzen-backend/internal/logging"
	"editzen-backend/internal/models"
)

const usage = `Usage: editzen [flags] <command> [args]

Commands:
  chat [-transformation TYPE] [-stream]   open the assistant chat
                                          (/transformation TYPE switches context)
  analyze IMAGE_URL                       describe an image and suggest edits
  suggest IMAGE_URL remove|recolor        list smart prompts for a tool

Flags:
`

func main() {
	cfg := config.Load()

	var (
		apiURL  string
		timeout time.Duration
	)
	flag.StringVar(&apiURL, "api", cfg.APIBaseURL, "EditZen API base URL")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "per-request timeout")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	// Terminal output belongs to the UI; logs only go to a file.
	logger := zap.NewNop()
	if cfg.LogFile != "" {
		l, syncLogs, err := logging.New(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: %v\n", err)
			os.Exit(1)
		}
		defer syncLogs()
		logger = l
	}

	api := client.New(apiURL, timeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	args := flag.Args()
	var err error
	switch args[0] {
	case "chat":
		err = runChat(ctx, api, logger, args[1:])
	case "analyze":
		if len(args) != 2 {
			flag.Usage()
			os.Exit(2)
		}
		err = runAnalyze(ctx, api, os.Stdout, args[1])
	case "suggest":
		if len(args) != 3 {
			flag.Usage()
			os.Exit(2)
		}
		err = runSuggest(ctx, api, os.Stdout, args[1], models.SuggestionType(args[2]))
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", args[0]), zap.Error(err))
		fmt.Fprintf(os.Stderr, "editzen: %v\n", err)
		os.Exit(1)
	}
}
