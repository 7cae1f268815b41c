package main

import (
	"log"
	"math/rand"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/krishanu7/battleship-engine/config"
	"github.com/krishanu7/battleship-engine/internal/console"
	"github.com/krishanu7/battleship-engine/internal/game"
)

func main() {
	cfg := config.LoadConfig()

	difficulty, err := game.ParseDifficulty(cfg.Difficulty)
	if err != nil {
		log.Fatalf("Invalid DIFFICULTY: %v", err)
	}
	if len(os.Args) > 1 {
		if difficulty, err = game.ParseDifficulty(os.Args[1]); err != nil {
			log.Fatalf("Usage: battleship [EASY|MEDIUM|HARD]: %v", err)
		}
	}

	g, err := game.NewGame(difficulty, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		log.Fatalf("Failed to start game: %v", err)
	}

	// audio failures are logged before the screen takes over the terminal
	sound := console.NewSpeaker(cfg.Audio)

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("Failed to create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("Failed to init screen: %v", err)
	}

	app := console.New(screen, g, sound)
	app.Run()

	sound.Close()
	screen.Fini()
	log.Printf("Game over: winner=%q after %d shots (seed %d)", g.Winner(), len(g.Player1.PlayerMoves), cfg.Seed)
}
