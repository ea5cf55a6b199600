package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/mathverbal/internal/config"
	"github.com/jask/mathverbal/internal/database"
	"github.com/jask/mathverbal/internal/database/repository"
	"github.com/jask/mathverbal/internal/metrics"
	"github.com/jask/mathverbal/internal/service"
	"github.com/jask/mathverbal/internal/translator"
	"github.com/jask/mathverbal/internal/tui"
)

const usage = `usage: mathverbal [command] [flags]

commands:
  tui                          interactive translator and practice (default)
  translate <phrase>           translate one phrase
  serve [-addr host:port]      run the HTTP API
  selftest [-file cases.yaml]  check the translator against a case corpus
  stats                        show mistake counts
  history [-n 10]              show recent translations
  feedback -phrase -expected -issue
                               report a wrong translation
  reset [-all]                 clear mistake stats (or everything)
  init                         write the default config and create the database
`

// app bundles the wiring shared by the subcommands.
type app struct {
	cfg    config.Config
	db     *sql.DB
	logger *slog.Logger

	translations *service.TranslationService
	practice     *service.PracticeService
	stats        *service.StatsService
	feedback     *service.FeedbackService
	maintenance  *service.MaintenanceService
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	cmd, args := "tui", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "translate":
		os.Exit(runTranslate(ctx, openApp(cfg, logger), args))
	case "selftest":
		os.Exit(runSelftest(args))
	case "serve":
		os.Exit(runServe(openApp(cfg, logger), args))
	case "stats":
		os.Exit(runStats(ctx, openApp(cfg, logger)))
	case "history":
		os.Exit(runHistory(ctx, openApp(cfg, logger), args))
	case "feedback":
		os.Exit(runFeedback(ctx, openApp(cfg, logger), args))
	case "reset":
		os.Exit(runReset(ctx, openApp(cfg, logger), args))
	case "init":
		os.Exit(runInit(cfg))
	case "tui":
		a := openApp(cfg, logger)
		defer a.db.Close()
		p := tea.NewProgram(tui.New(ctx, tui.Services{
			Translations: a.translations,
			Practice:     a.practice,
			Stats:        a.stats,
			Feedback:     a.feedback,
			Maintenance:  a.maintenance,
		}), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
}

// openApp migrates and opens the database and builds the services.
func openApp(cfg config.Config, logger *slog.Logger) *app {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}
	db, err := database.OpenMigrated(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	history := repository.NewHistoryRepo(db)
	mistakes := repository.NewMistakeRepo(db)
	feedback := repository.NewFeedbackRepo(db)
	m := metrics.New()
	tr := translator.Default()

	return &app{
		cfg:    cfg,
		db:     db,
		logger: logger,
		translations: &service.TranslationService{
			Translator: tr,
			History:    history,
			Metrics:    m,
			Logger:     logger,
			Keep:       cfg.Practice.HistoryLimit,
		},
		practice: &service.PracticeService{
			Translator: tr,
			Sink:       &service.MistakeSink{Mistakes: mistakes, Keep: cfg.Practice.MistakeLimit},
			Metrics:    m,
			Choices:    cfg.Practice.Choices,
		},
		stats:       &service.StatsService{Mistakes: mistakes},
		feedback:    &service.FeedbackService{Feedback: feedback, Keep: cfg.Practice.FeedbackLimit},
		maintenance: &service.MaintenanceService{DB: db},
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
