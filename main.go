package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Shekhu04/Whispr/internal/config"
	"github.com/Shekhu04/Whispr/internal/database"
	"github.com/Shekhu04/Whispr/internal/presence"
	"github.com/Shekhu04/Whispr/internal/router"
	"github.com/Shekhu04/Whispr/internal/upload"
	"github.com/Shekhu04/Whispr/internal/ws"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// ensure basic directories exist
	if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		log.Fatalf("create data dir: %v", err)
	}
	if err := ensureDir(filepath.Dir(cfg.Log.File)); err != nil {
		log.Fatalf("create log dir: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// blob storage for chat images and avatars
	storage, err := upload.NewLocalStorage(cfg.Upload.Dir, cfg.Upload.BaseURL)
	if err != nil {
		log.Fatalf("init upload storage: %v", err)
	}

	// realtime hub on top of the presence registry
	hub := ws.NewHub(presence.NewRegistry())

	// setup router
	r := router.SetupRouter(cfg, db, hub, storage)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
