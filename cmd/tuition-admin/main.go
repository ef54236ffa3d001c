package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/tuition-center-api/internal/repository"
	"github.com/noah-isme/tuition-center-api/internal/service"
	"github.com/noah-isme/tuition-center-api/pkg/config"
	"github.com/noah-isme/tuition-center-api/pkg/database"
	"github.com/noah-isme/tuition-center-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	if err := database.SetupMigrations(logr); err != nil {
		log.Fatalf("failed to set up migrations: %v", err)
	}

	cli := &commandLine{
		db:        db.DB,
		users:     service.NewUserService(repository.NewUserRepository(db), validator.New(), logr),
		promotion: service.NewPromotionService(repository.NewClassRepository(db), logr),
		out:       os.Stdout,
	}

	if err := cli.run(ctx, os.Args); err != nil {
		if errors.Is(err, errHelp) {
			os.Exit(2)
		}
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}
