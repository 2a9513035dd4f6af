package main

import (
	"log"

	"github.com/LoganWeir/muni-predict/internal/config"
	"github.com/LoganWeir/muni-predict/internal/database"
	"github.com/LoganWeir/muni-predict/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer database.Close()

	p := pipeline.New(cfg, database.GetDB())
	if _, err := p.RunChunking(); err != nil {
		log.Fatal("Chunking failed: ", err)
	}
}
