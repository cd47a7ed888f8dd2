package main

import (
	"flag"
	"log"

	"github.com/Garsondee/Fireworks/internal/game"
	"github.com/Garsondee/Fireworks/internal/host"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", ".env", "KEY=VALUE settings file (optional)")
	flag.Parse()

	cfg, err := host.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	g, err := game.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	w, h := g.Layout(0, 0)
	ebiten.SetWindowTitle("Fireworks")
	ebiten.SetWindowSize(w, h)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
