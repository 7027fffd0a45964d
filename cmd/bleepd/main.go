package main

import (
	"context"
	"log"

	"bleep/internal/config"
	"bleep/internal/daemonrun"
)

func main() {
	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, runOptions(cfg)); err != nil {
		log.Fatalf("run daemon: %v", err)
	}
}
