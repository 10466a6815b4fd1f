package main

import (
	"flag"
	"fmt"
	"os"
	_ "time/tzdata"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sadopc/agenda/internal/api"
	"github.com/sadopc/agenda/internal/config"
	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/logger"
	"github.com/sadopc/agenda/internal/session"
	"github.com/sadopc/agenda/internal/store"
	"github.com/sadopc/agenda/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: user config dir)")
	apiURL := flag.String("api", "", "backend base URL, overrides the config file")
	dbPath := flag.String("db", "", "path to the local SQLite database")
	flag.Parse()

	if *configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			fail("error: %v", err)
		}
		*configPath = p
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail("error loading config: %v", err)
	}
	if err := cfg.ApplyEnv(".env"); err != nil {
		fail("error: %v", err)
	}
	if *apiURL != "" {
		cfg.APIURL = *apiURL
		cfg.Normalize()
	}
	if cfg.Log.File == "" {
		if p, err := config.DefaultLogPath(); err == nil {
			cfg.Log.File = p
		}
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fail("error creating logger: %v", err)
	}
	defer log.Sync()

	zone, err := datekey.NewZone(cfg.Timezone)
	if err != nil {
		fail("error: unknown time zone %q: %v", cfg.Timezone, err)
	}

	if *dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			fail("error: %v", err)
		}
		*dbPath = p
	}
	s, err := store.New(*dbPath)
	if err != nil {
		fail("error opening database: %v", err)
	}
	defer s.Close()

	sess := session.New(s)
	if ok, err := sess.Restore(); err != nil {
		log.Warn("restore session", zap.Error(err))
	} else if ok {
		u, _ := sess.User()
		log.Info("session restored", zap.String("user", u.Username))
	}

	client := api.New(cfg.APIURL, api.WithSession(sess), api.WithLogger(log))
	log.Info("starting", zap.String("api", client.BaseURL()), zap.String("timezone", zone.Name()))

	app := tui.NewApp(tui.Deps{
		Config:     cfg,
		ConfigPath: *configPath,
		Store:      s,
		Session:    sess,
		Backend:    client,
		Zone:       zone,
		Log:        log,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		log.Error("program exited", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
