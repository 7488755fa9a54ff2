package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/clipsift/clipsift/internal"
	"github.com/clipsift/clipsift/pkg/logger"
	"github.com/joho/godotenv"
)

var log = logger.Get("Main")

// main is the entry point to the program. Configuration comes from
// the environment (optionally seeded by a .env file) or a YAML
// config file; with -input the resolved pipeline runs once against
// the given share text and prints the result, otherwise the REST
// gateway is started.
func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	input := flag.String("input", "", "run a single ingestion against this share text and exit")
	debug := flag.Bool("debug", false, "enable verbose logging")
	flag.Parse()

	if *debug {
		logger.SetMinLoggingLevel(logger.DEBUG.Level())
	}

	if err := godotenv.Load(); err != nil {
		log.Emit(logger.DEBUG, "No .env file loaded: %s\n", err.Error())
	}

	config := internal.ClipsiftConfig{}
	var err error
	if *configPath != "" {
		err = config.LoadFromFile(*configPath)
	} else {
		err = config.LoadFromEnv()
	}
	if err != nil {
		log.Emit(logger.FATAL, "Failed to load configuration: %s\n", err.Error())
		os.Exit(1)
	}

	clipsift := internal.New(config)

	if *input != "" {
		result := clipsift.IngestContent(context.Background(), *input)
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Emit(logger.FATAL, "Failed to marshal result: %s\n", err.Error())
			os.Exit(1)
		}

		fmt.Println(string(output))
		if !result.Success {
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := clipsift.Run(ctx); err != nil {
		log.Emit(logger.FATAL, "Clipsift exited with error: %s\n", err.Error())
		os.Exit(1)
	}
}
