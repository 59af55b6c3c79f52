package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/sh3ldr0id/Ameryd/server"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	lockStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("215"))
)

func main() {
	addr := flag.String("addr", ":2021", "listen address")
	dataDir := flag.String("data", "data", "data directory (events.json, event folders)")
	ffmpegPath := flag.String("ffmpeg", "", "ffmpeg binary for video thumbnails (default: from PATH)")
	genThumbs := flag.Bool("generate-thumbs", false, "generate missing per-event thumbnails before serving")
	sync := flag.Bool("sync", false, "sync events.json with the data directory (discover new folders, drop missing ones, refresh thumbnails) before serving")
	flag.Parse()

	if _, err := os.Stat(*dataDir); err != nil {
		log.Fatalf("data directory: %v", err)
	}

	srv := server.New(*dataDir)
	store := server.NewEventStore(*dataDir)

	if *sync {
		gen := server.NewThumbGenerator(*ffmpegPath)
		lib := server.NewLibrary(*dataDir)
		if err := server.SyncEvents(store, lib, gen); err != nil {
			log.Fatalf("sync: %v", err)
		}
	} else if *genThumbs {
		gen := server.NewThumbGenerator(*ffmpegPath)
		lib := server.NewLibrary(*dataDir)
		for path, ev := range store.Load() {
			log.Printf("generating thumbnails for %s", path)
			gen.GenerateEvent(lib, ev)
		}
	}

	events := store.Load()

	fmt.Println(titleStyle.Render("Ameryd"))
	fmt.Printf("%s %s\n", keyStyle.Render("listen:"), valStyle.Render(*addr))
	fmt.Printf("%s %s\n", keyStyle.Render("data:"), valStyle.Render(*dataDir))
	for path, ev := range events {
		line := valStyle.Render(ev.Name)
		if ev.Locked() {
			line += " " + lockStyle.Render("(locked)")
		}
		fmt.Printf("%s %s\n", keyStyle.Render("/e/"+path), line)
	}

	log.Fatal(http.ListenAndServe(*addr, srv))
}
