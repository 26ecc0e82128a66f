package main

import (
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"
	"alidayu/internal/pkg/logger"
	"alidayu/internal/platform/auth"
	"alidayu/internal/platform/config"
	"alidayu/internal/platform/database"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	hashSecret := flag.String("hash-secret", "", "Print the bcrypt hash of a client secret and exit")

	flag.Parse()

	if *hashSecret != "" {
		hash, err := auth.HashSecret(*hashSecret)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to hash secret")
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging, "alidayu-migrate")

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open dispatch database")
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database.MigrationsDir, *direction); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	fmt.Println("Migration completed successfully")
}
