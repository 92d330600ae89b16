package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"beertime/internal/calendar"
	"beertime/internal/cmdlog"
	"beertime/internal/config"
	"beertime/internal/logging"
	"beertime/internal/model"
	"beertime/internal/prefs"
	"beertime/internal/stats"
	"beertime/internal/store/beerdb"
	"beertime/internal/theme"
)

const defaultConfigPath = "./beertime.yaml"

var commands = map[string]func(args []string) error{
	"init":          cmdInit,
	"add":           cmdAdd,
	"undo":          cmdUndo,
	"today":         cmdToday,
	"week":          cmdWeek,
	"month":         cmdMonth,
	"history":       cmdHistory,
	"graph":         cmdGraph,
	"rhythm":        cmdRhythm,
	"edit-day":      cmdEditDay,
	"delete-day":    cmdDeleteDay,
	"delete-record": cmdDeleteRecord,
	"reset":         cmdReset,
	"price":         cmdPrice,
	"language":      cmdLanguage,
	"ads":           cmdAds,
	"serve":         cmdServe,
}

func main() {
	logging.SetOutput(os.Stderr)
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	run, ok := commands[cmd]
	if !ok {
		printHelp()
		return
	}
	if err := cmdlog.Run(cmd, func() error { return run(os.Args[2:]) }); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func printHelp() {
	theme.PrintBanner(os.Stdout)
	fmt.Println("Usage: beertime <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init           Write a config file and create the database")
	fmt.Println("  add            Record a drink now (-amount to override)")
	fmt.Println("  undo           Remove the most recent drink")
	fmt.Println("  today          Today's count and cost")
	fmt.Println("  week           This week so far")
	fmt.Println("  month          Calendar view of a month")
	fmt.Println("  history        Drinks of one day with intervals")
	fmt.Println("  graph          Monthly totals of a year")
	fmt.Println("  rhythm         Weekly average interval between drinks")
	fmt.Println("  edit-day       Set the total of a day")
	fmt.Println("  delete-day     Remove every drink of a day")
	fmt.Println("  delete-record  Remove one drink by id")
	fmt.Println("  reset          Remove all drinks")
	fmt.Println("  price          Show or set the price per unit")
	fmt.Println("  language       Show or set the app language")
	fmt.Println("  ads            Ad frequency cap state")
	fmt.Println("  serve          Run the local JSON API")
}

// app is what every command needs: config, the open store and the day rule.
type app struct {
	cfg   config.Config
	db    *beerdb.DB
	prefs *prefs.Repository
	clock calendar.Clock
	rule  calendar.Rule
}

func openApp(cfgPath string) (*app, error) {
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	db, err := beerdb.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:   cfg,
		db:    db,
		prefs: prefs.New(db),
		clock: calendar.RealClock{},
		rule:  calendar.Rule{CutoffHour: cfg.Day.CutoffHour, Location: loc},
	}, nil
}

func (a *app) Close() { _ = a.db.Close() }

func (a *app) snapshot(ctx context.Context) ([]model.Record, stats.Params, error) {
	records, err := a.db.All(ctx)
	if err != nil {
		return nil, stats.Params{}, err
	}
	price, err := a.prefs.Price(ctx)
	if err != nil {
		return nil, stats.Params{}, err
	}
	return records, stats.Params{Now: a.clock.Now(), Rule: a.rule, Price: price}, nil
}

// withApp parses fs and opens the app; extra flags must be defined on fs first.
func withApp(fs *flag.FlagSet, args []string, f func(ctx context.Context, a *app) error) error {
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	_ = fs.Parse(args)
	a, err := openApp(*cfgPath)
	if err != nil {
		return err
	}
	defer a.Close()
	return f(context.Background(), a)
}

func cmdInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", defaultConfigPath, "path to write config")
	_ = fs.Parse(args)
	cfg := config.Default()
	cfg.ResolveEnv()
	if err := config.Save(*path, cfg); err != nil {
		return err
	}
	db, err := beerdb.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner(os.Stdout)
	fmt.Println("Config written to:", abs)
	fmt.Println("Database ready at:", cfg.Storage.DBPath)
	return nil
}
