package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"maqua-crm/internal/common/config"
	"maqua-crm/internal/common/logger"
	"maqua-crm/internal/crm"
	"maqua-crm/internal/server"
	"maqua-crm/internal/submission"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)

	tokens := crm.NewTokenService(cfg.CRM, log)
	client := crm.NewClient(cfg.CRM, tokens, log)
	rawText := submission.NewRawTextStore(cfg.Redis, 0, log)
	service := submission.NewService(cfg, client, rawText, log)

	handlers, err := server.NewHandlers(service, log)
	if err != nil {
		log.Error("building handlers", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	router := server.NewRouter(handlers, cfg.Logging)
	srv := server.New(cfg.Server, router, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Error("server exited", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}
