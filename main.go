package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/wfunc/spellchain/config"
	"github.com/wfunc/spellchain/dictionary"
	"github.com/wfunc/spellchain/logger"
	"github.com/wfunc/spellchain/persistence"
	"github.com/wfunc/spellchain/server"
)

func main() {
	// Local overrides, ignored when no .env file exists
	godotenv.Load()

	logger.Init()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	dict, err := dictionary.Load(cfg.Dictionary.Path, cfg.Dictionary.Format)
	if err != nil {
		logger.Log.Fatalf("Failed to load dictionary %s: %v", cfg.Dictionary.Path, err)
	}
	logger.Log.Infof("Dictionary loaded: %d words from %s", dict.Len(), cfg.Dictionary.Path)

	db, err := persistence.Open(cfg.Database)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	if db != nil {
		logger.Log.Info("Database connection successful.")
		defer db.Close()
	}

	gameServer := server.NewGameServer(cfg.Server, dict, db)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Log.Infof("Received signal %s, shutting down.", sig)
		gameServer.Shutdown()
	}()

	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
