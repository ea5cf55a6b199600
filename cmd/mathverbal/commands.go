package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jask/mathverbal/internal/config"
	"github.com/jask/mathverbal/internal/database"
	"github.com/jask/mathverbal/internal/server"
	"github.com/jask/mathverbal/internal/service"
	"github.com/jask/mathverbal/internal/translator"
)

func runTranslate(ctx context.Context, a *app, args []string) int {
	defer a.db.Close()
	phrase := strings.Join(args, " ")
	res, ok := a.translations.Translate(ctx, phrase)
	if !ok {
		return 0
	}
	printResult(os.Stdout, res)
	return 0
}

func printResult(w io.Writer, res translator.Result) {
	fmt.Fprintf(w, "%s\n", res.Expression)
	fmt.Fprintf(w, "  latex:   %s\n", res.MathForm)
	fmt.Fprintf(w, "  pattern: %s (%s)\n", res.Label, res.PatternID)
	for _, line := range res.Explanation {
		fmt.Fprintf(w, "  - %s\n", line)
	}
	for _, trap := range res.Traps {
		fmt.Fprintf(w, "  ! %s\n", trap)
	}
}

func runSelftest(args []string) int {
	fs := flag.NewFlagSet("selftest", flag.ExitOnError)
	file := fs.String("file", "", "YAML case file (default: built-in corpus)")
	_ = fs.Parse(args)

	var (
		cases []translator.Case
		err   error
	)
	if *file == "" {
		cases, err = translator.BuiltinCases()
	} else {
		var f *os.File
		if f, err = os.Open(*file); err == nil {
			cases, err = translator.LoadCases(f)
			_ = f.Close()
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "selftest: %v\n", err)
		return 1
	}

	rep := translator.Default().Check(cases)
	for _, m := range rep.Failed {
		fmt.Printf("FAIL %q\n  want %s", m.Case.Phrase, m.Case.Expect)
		if m.Case.Pattern != "" {
			fmt.Printf(" (%s)", m.Case.Pattern)
		}
		fmt.Printf("\n  got  %s (%s)\n", m.Expression, m.PatternID)
	}
	fmt.Printf("%d/%d passed\n", rep.Passed, rep.Total)
	if len(rep.Failed) > 0 {
		return 1
	}
	return 0
}

func runServe(a *app, args []string) int {
	defer a.db.Close()
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", a.cfg.Server.Addr, "listen address")
	_ = fs.Parse(args)

	reg := prometheus.NewRegistry()
	if err := a.translations.Metrics.Register(reg); err != nil {
		fmt.Fprintf(os.Stderr, "register metrics: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &server.Server{
		Translations: a.translations,
		Practice:     a.practice,
		Stats:        a.stats,
		Gatherer:     reg,
		Logger:       a.logger,
	}
	a.logger.Info("listening", "addr", *addr)
	if err := s.Run(ctx, *addr); err != nil {
		a.logger.Error("serve", "err", err)
		return 1
	}
	return 0
}

func runStats(ctx context.Context, a *app) int {
	defer a.db.Close()
	sum, err := a.stats.Summary(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stats: %v\n", err)
		return 1
	}
	for _, c := range service.Categories {
		fmt.Printf("%-12s %d\n", c, sum.Counts[c])
	}
	if len(sum.Recent) > 0 {
		fmt.Println("\nrecent:")
		for _, m := range sum.Recent {
			fmt.Printf("  %s  %-12s %s\n", m.CreatedAt.Local().Format("2006-01-02 15:04"), m.Category, m.Detail)
		}
	}
	return 0
}

func runHistory(ctx context.Context, a *app, args []string) int {
	defer a.db.Close()
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	n := fs.Int("n", 10, "number of translations to show")
	_ = fs.Parse(args)

	list, err := a.translations.Recent(ctx, *n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
		return 1
	}
	for _, t := range list {
		fmt.Printf("%s  %-32s %s\n", t.CreatedAt.Local().Format("2006-01-02 15:04"), t.Phrase, t.Expression)
	}
	return 0
}

func runFeedback(ctx context.Context, a *app, args []string) int {
	defer a.db.Close()
	fs := flag.NewFlagSet("feedback", flag.ExitOnError)
	phrase := fs.String("phrase", "", "phrase that translated badly")
	expected := fs.String("expected", "", "expression you expected")
	issue := fs.String("issue", "", "what went wrong")
	_ = fs.Parse(args)

	fb, err := a.feedback.Submit(ctx, *phrase, *expected, *issue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "feedback: %v\n", err)
		return 1
	}
	fmt.Printf("saved feedback %s\n", fb.ID)
	return 0
}

func runReset(ctx context.Context, a *app, args []string) int {
	defer a.db.Close()
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	all := fs.Bool("all", false, "also clear feedback and history")
	_ = fs.Parse(args)

	reset, what := a.maintenance.ResetStats, "mistake stats"
	if *all {
		reset, what = a.maintenance.Reset, "all data"
	}
	if err := reset(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "reset: %v\n", err)
		return 1
	}
	fmt.Printf("cleared %s\n", what)
	return 0
}

func runInit(cfg config.Config) int {
	path, err := config.Save(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		return 1
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "init: mkdir db dir: %v\n", err)
		return 1
	}
	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		return 1
	}
	fmt.Printf("config: %s\ndatabase: %s\n", path, cfg.Database.Path)
	return 0
}
