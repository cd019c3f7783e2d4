package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/mosaic/internal/account"
	"github.com/abelbrown/mosaic/internal/browse"
	"github.com/abelbrown/mosaic/internal/config"
	"github.com/abelbrown/mosaic/internal/favorites"
	"github.com/abelbrown/mosaic/internal/logging"
	"github.com/abelbrown/mosaic/internal/media"
	"github.com/abelbrown/mosaic/internal/session"
	"github.com/abelbrown/mosaic/internal/source/booru"
	"github.com/abelbrown/mosaic/internal/source/reddit"
	"github.com/abelbrown/mosaic/internal/source/youtube"
	"github.com/abelbrown/mosaic/internal/store"
	"github.com/abelbrown/mosaic/internal/ui"
)

func main() {
	if err := logging.Init(); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.AutoPopulateFromEnv()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}
	dbPath := filepath.Join(homeDir, ".mosaic", "mosaic.db")

	st, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	// Build an adapter per configured source; unconfigured sources stay
	// nil and their queries fail with a validation error.
	var redditAdapter *reddit.Adapter
	if cfg.HasReddit() {
		redditAdapter = reddit.New(cfg.Sources.Reddit.ClientID, cfg.Sources.Reddit.ClientSecret)
	}
	var booruAdapter *booru.Adapter
	if cfg.HasBooru() {
		booruAdapter = booru.New(cfg.Sources.Booru.APIKey, cfg.Sources.Booru.UserID)
	}
	var youtubeAdapter *youtube.Adapter
	if cfg.HasYouTube() {
		youtubeAdapter = youtube.New(cfg.Sources.YouTube.APIKey)
	}
	if redditAdapter == nil && booruAdapter == nil && youtubeAdapter == nil {
		fmt.Fprintln(os.Stderr, "No sources configured. Edit", config.ConfigPath(),
			"or set REDDIT_CLIENT_ID/REDDIT_CLIENT_SECRET, BOORU_API_KEY/BOORU_USER_ID, or YOUTUBE_API_KEY.")
		os.Exit(1)
	}

	var remote account.Client
	if cfg.HasAccount() {
		remote = account.NewRESTClient(cfg.Account.BaseURL, cfg.Account.Token)
	}

	favs, err := favorites.New(st, remote)
	if err != nil {
		log.Fatalf("Failed to load favorites: %v", err)
	}

	sessions := session.NewStore()
	browser := browse.New(sessions, redditAdapter, booruAdapter, youtubeAdapter)

	logging.Info("mosaic starting",
		"reddit", redditAdapter != nil,
		"booru", booruAdapter != nil,
		"youtube", youtubeAdapter != nil)

	model := ui.New(browser, favs, cfg.UI.DefaultSort, media.Filter(cfg.UI.MediaFilter))
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
