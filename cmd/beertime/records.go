package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"beertime/internal/calendar"
	"beertime/internal/stats"
	"beertime/internal/util"
)

func cmdAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	amount := fs.String("amount", "", "amount in units, default from config")
	custom := fs.Bool("custom", false, "use the configured custom amount")
	return withApp(fs, args, func(ctx context.Context, a *app) error {
		fallback := a.cfg.Entry.DefaultAmount
		if *custom {
			fallback = a.cfg.Entry.CustomAmount
		}
		v, err := util.ParseAmount(*amount, fallback)
		if err != nil {
			return err
		}
		now := a.clock.Now()
		rec, err := a.db.Insert(ctx, now.UnixMilli(), v)
		if err != nil {
			return err
		}
		fmt.Printf("Recorded %.1f at %s (id %s)\n", rec.Amount, rec.Time(a.rule.Loc()).Format("15:04"), rec.ID)
		return printToday(ctx, a)
	})
}

func cmdUndo(args []string) error {
	fs := flag.NewFlagSet("undo", flag.ExitOnError)
	return withApp(fs, args, func(ctx context.Context, a *app) error {
		rec, ok, err := a.db.DeleteLatest(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Nothing to undo")
			return nil
		}
		fmt.Printf("Removed %.1f from %s\n", rec.Amount, rec.Time(a.rule.Loc()).Format("2006-01-02 15:04"))
		return printToday(ctx, a)
	})
}

func requireDate(s string) (calendar.Date, error) {
	if s == "" {
		return calendar.Date{}, errors.New("-date is required (YYYY-MM-DD)")
	}
	return calendar.ParseDate(s)
}

func cmdEditDay(args []string) error {
	fs := flag.NewFlagSet("edit-day", flag.ExitOnError)
	date := fs.String("date", "", "logical date YYYY-MM-DD")
	amount := fs.String("amount", "", "new total for the day")
	return withApp(fs, args, func(ctx context.Context, a *app) error {
		d, err := requireDate(*date)
		if err != nil {
			return err
		}
		total, err := util.ParseDayTotal(*amount)
		if err != nil {
			return err
		}
		total, err = stats.EditDayAmount(ctx, a.db, d, total, a.rule)
		if err != nil {
			return err
		}
		fmt.Printf("%s total set to %.1f\n", d, total)
		return nil
	})
}

func cmdDeleteDay(args []string) error {
	fs := flag.NewFlagSet("delete-day", flag.ExitOnError)
	date := fs.String("date", "", "logical date YYYY-MM-DD")
	return withApp(fs, args, func(ctx context.Context, a *app) error {
		d, err := requireDate(*date)
		if err != nil {
			return err
		}
		n, err := stats.DeleteDay(ctx, a.db, d, a.rule)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d record(s) from %s\n", n, d)
		return nil
	})
}

func cmdDeleteRecord(args []string) error {
	fs := flag.NewFlagSet("delete-record", flag.ExitOnError)
	id := fs.String("id", "", "record id (see history)")
	return withApp(fs, args, func(ctx context.Context, a *app) error {
		if *id == "" {
			return errors.New("-id is required")
		}
		ok, err := a.db.DeleteByID(ctx, *id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no record with id %s", *id)
		}
		fmt.Println("Record removed")
		return nil
	})
}

func cmdReset(args []string) error {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	yes := fs.Bool("yes", false, "confirm deleting every record")
	before := fs.String("before", "", "only remove records of logical dates before YYYY-MM-DD")
	return withApp(fs, args, func(ctx context.Context, a *app) error {
		if !*yes {
			return errors.New("pass -yes to confirm")
		}
		var n int64
		var err error
		if *before != "" {
			d, perr := calendar.ParseDate(*before)
			if perr != nil {
				return perr
			}
			n, err = a.db.DeleteRange(ctx, 0, a.rule.Start(d).Add(-time.Millisecond).UnixMilli())
		} else {
			n, err = a.db.DeleteAll(ctx)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d record(s)\n", n)
		return nil
	})
}
