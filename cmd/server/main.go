package main

import (
	"log"

	"github.com/LoganWeir/muni-predict/internal/api"
	"github.com/LoganWeir/muni-predict/internal/config"
	"github.com/LoganWeir/muni-predict/internal/database"
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

	router := api.SetupRouter(database.GetDB())

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
