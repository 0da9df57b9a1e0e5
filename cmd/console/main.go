package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type ConsoleConfig struct {
	APIBaseURL string
	PlayerID   string
	Timeout    time.Duration
}

// NPC is a selectable conversation partner.
type NPC struct {
	Name        string
	Description string
}

// defaultNPCs seed the picker. NPC_NAME / NPC_DESCRIPTION override them
// with a single custom character.
var defaultNPCs = []NPC{
	{Name: "Elena", Description: "A cheerful village guide who loves helping newcomers learn the game"},
	{Name: "Grimbold", Description: "A gruff dwarven blacksmith with a soft spot for brave adventurers"},
	{Name: "Seraphine", Description: "A cryptic forest oracle who speaks in riddles and remembers everything"},
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		PlayerID:   os.Getenv("PLAYER_ID"),
		Timeout:    90 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	npcs := defaultNPCs
	if name := os.Getenv("NPC_NAME"); name != "" {
		npcs = []NPC{{Name: name, Description: os.Getenv("NPC_DESCRIPTION")}}
	}

	p := tea.NewProgram(NewConsoleUI(cfg, client, npcs),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
