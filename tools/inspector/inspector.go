package main

import (
	"flag"
	"log"
	"time"

	"github.com/mogaika/cubism_renderer/config"
	"github.com/mogaika/cubism_renderer/gfx/gltrace"
	"github.com/mogaika/cubism_renderer/status"
	"github.com/mogaika/cubism_renderer/web"
)

func main() {
	var cfgPath, addr, modelPath, webPath string
	flag.StringVar(&cfgPath, "config", "", "Path to yaml config")
	flag.StringVar(&addr, "i", "", "Address of server, overrides config")
	flag.StringVar(&modelPath, "model", "", "Model file (.yaml, .gltf, .glb), random model if empty")
	flag.StringVar(&webPath, "web", "", "Directory with static files to serve")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if addr != "" {
		cfg.Listen = addr
	}
	if modelPath != "" {
		cfg.Model = modelPath
	}

	m, err := cfg.LoadModel()
	if err != nil {
		log.Fatal(err)
	}

	hub := status.NewHub()
	defer hub.Close()

	opts, err := cfg.RenderOptions(hub.Log)
	if err != nil {
		log.Fatal(err)
	}
	scene, err := web.NewScene(gltrace.New(), opts, m, cfg.FallbackColor)
	if err != nil {
		log.Fatal(err)
	}
	defer scene.Close()
	scene.Status = hub

	go func() {
		ticker := time.NewTicker(time.Second / time.Duration(cfg.FrameRate))
		defer ticker.Stop()
		for range ticker.C {
			if err := scene.Step(); err != nil {
				log.Printf("[cubism] %v", err)
			}
		}
	}()

	if err := web.StartServer(cfg.Listen, scene, webPath); err != nil {
		log.Fatal(err)
	}
}
