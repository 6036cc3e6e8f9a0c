package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	httpadapter "cv-site/internal/adapter/http"
	"cv-site/internal/config"
	"cv-site/internal/usecase"
	"cv-site/pkg/cvapi"
	infra "cv-site/pkg/infrastructure"
)

func main() {
	cfg, err := config.Load("3000")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.Logger()

	client := cvapi.NewClient(cfg.APIURL, cfg.HTTPTimeout)
	consoles := usecase.NewConsoles(func(token string) usecase.CVStore {
		return client.WithToken(token)
	}, cfg.ConsoleIdle)

	site, err := httpadapter.NewSite(httpadapter.Options{
		Client:    client,
		Consoles:  consoles,
		Renderer:  infra.NewChromedpRenderer(cfg.ChromePath),
		AuthURL:   cfg.AuthURL,
		AccessLog: true,
	})
	if err != nil {
		log.Fatalf("site: %v", err)
	}
	app := site.App()

	go func() {
		slog.Info("site listening", "port", cfg.Port, "api", cfg.APIURL)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	if err := app.Shutdown(); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}
