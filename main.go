package main

import (
	"github.com/wfunc/yatzyserver/config"
	"github.com/wfunc/yatzyserver/logger"
	"github.com/wfunc/yatzyserver/persistence"
	"github.com/wfunc/yatzyserver/server"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize match store. Rooms are ephemeral either way; the database
	// only keeps finished-match history.
	var db persistence.Database = persistence.NewNoop()
	if cfg.Database.Enabled {
		gormDB, err := persistence.NewGormPostgreSQL(
			cfg.Database.Postgres.Host,
			cfg.Database.Postgres.Port,
			cfg.Database.Postgres.User,
			cfg.Database.Postgres.Password,
			cfg.Database.Postgres.DBName,
		)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		logger.Log.Info("Database connection successful.")
		db = gormDB
	}

	// Initialize Game Server
	gameServer := server.NewGameServer(cfg, db)

	// Start Server
	logger.Log.Infof("Starting yatzy server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
