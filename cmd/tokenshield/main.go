package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/tokenshield/internal/api"
	"github.com/jask/tokenshield/internal/config"
	"github.com/jask/tokenshield/internal/customer"
	"github.com/jask/tokenshield/internal/lifecycle"
	"github.com/jask/tokenshield/internal/logging"
	"github.com/jask/tokenshield/internal/notify"
	"github.com/jask/tokenshield/internal/secrets"
	"github.com/jask/tokenshield/internal/tui"
)

func main() {
	login := flag.String("login", "", "store a session token and exit")
	logout := flag.Bool("logout", false, "forget the stored session token and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := secrets.Default()
	if err != nil {
		log.Fatalf("session store: %v", err)
	}
	switch {
	case *login != "":
		if err := store.SaveToken(*login); err != nil {
			log.Fatalf("login: %v", err)
		}
		fmt.Println("session token saved")
		return
	case *logout:
		if err := store.Clear(); err != nil {
			log.Fatalf("logout: %v", err)
		}
		fmt.Println("session token cleared")
		return
	}

	logger, closer, err := logging.Open(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		log.Fatalf("log: %v", err)
	}
	defer closer.Close()

	naming, err := customer.ParseNaming(cfg.API.FieldNaming)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	client, err := api.New(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
		Naming:    naming,
		Tokens:    store,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("api client: %v", err)
	}

	if _, err := store.Token(); err != nil {
		fmt.Fprintln(os.Stderr, "warn: no session token stored, run with -login <token>")
	}

	mgr := notify.New(notify.WithDefaultDuration(cfg.UI.ToastDuration))
	defer mgr.Close()

	logger.Info("starting", "env", cfg.Env, "base_url", cfg.API.BaseURL, "id_lookup", cfg.Search.IDLookup)
	p := tea.NewProgram(tui.New(tui.Options{
		Client:          client,
		Notifier:        mgr,
		Tracker:         lifecycle.NewTracker(),
		IDLookup:        cfg.Search.IDLookup,
		Timeout:         cfg.API.Timeout,
		ToastDuration:   cfg.UI.ToastDuration,
		SuccessDuration: cfg.UI.SuccessDuration,
		Logger:          logger,
	}), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
