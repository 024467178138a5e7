package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gravitas-games/hexlands/internal/config"
	"github.com/gravitas-games/hexlands/internal/server"
)

func main() {
	log.Println("Starting hexlands map service...")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/server.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load map service configuration: %v", err)
	}
	log.Printf("Map settings from %s: seed %d, view radius up to %d, weights %+v",
		configPath, cfg.Map.Seed, cfg.Map.MaxViewRadius, cfg.Map.Weights)
	if names, _ := cfg.Map.ResourceKinds(); len(names) > 0 {
		log.Printf("Resource kinds: %v (respawn after %s)", names, cfg.RespawnDelay())
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to start map session: %v", err)
	}
	log.Printf("Map session %s ready", srv.Session().ID)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			log.Fatalf("Map service stopped serving %s: %v", addr, err)
		}
	case sig := <-stop:
		log.Printf("Received %v, closing map session...", sig)
	}

	status := srv.Session().NetworkStatus()
	if err := srv.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Printf("Map service stopped with %d nodes generated over %d ticks", status.MapSize, status.ServerTick)
}
