package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"beertime/internal/adgate"
	"beertime/internal/locale"
	"beertime/internal/theme"
	"beertime/internal/util"
)

func cmdPrice(args []string) error {
	fs := flag.NewFlagSet("price", flag.ExitOnError)
	set := fs.String("set", "", "new price per unit")
	return withApp(fs, args, func(ctx context.Context, a *app) error {
		if *set != "" {
			p, err := util.ParsePrice(*set)
			if err != nil {
				return err
			}
			if err := a.prefs.SetPrice(ctx, p); err != nil {
				return err
			}
		}
		p, err := a.prefs.Price(ctx)
		if err != nil {
			return err
		}
		fmt.Println(theme.KV("Price", labelWidth, a.language(ctx).FormatCost(p)))
		return nil
	})
}

func cmdLanguage(args []string) error {
	fs := flag.NewFlagSet("language", flag.ExitOnError)
	set := fs.String("set", "", "language tag, e.g. ja or pt-BR")
	list := fs.Bool("list", false, "list supported languages")
	return withApp(fs, args, func(ctx context.Context, a *app) error {
		if *list {
			for _, l := range locale.Languages() {
				fmt.Printf("%-7s %s\n", l, l.CurrencySymbol())
			}
			return nil
		}
		if *set != "" {
			l, ok := locale.Parse(*set)
			if !ok {
				return fmt.Errorf("unsupported language %q (see -list)", *set)
			}
			if err := a.prefs.SetLanguage(ctx, l); err != nil {
				return err
			}
		}
		l := a.language(ctx)
		fmt.Println(theme.KV("Language", labelWidth, string(l)))
		fmt.Println(theme.KV("Currency", labelWidth, l.CurrencySymbol()))
		return nil
	})
}

func cmdAds(args []string) error {
	fs := flag.NewFlagSet("ads", flag.ExitOnError)
	shown := fs.Bool("shown", false, "mark an ad as shown in the current slot")
	adFree := fs.String("ad-free", "", "set ad-free state (true or false)")
	return withApp(fs, args, func(ctx context.Context, a *app) error {
		now := a.clock.Now()
		loc := a.rule.Loc()
		if *adFree != "" {
			v, err := strconv.ParseBool(*adFree)
			if err != nil {
				return fmt.Errorf("-ad-free: %w", err)
			}
			if err := a.prefs.SetAdFree(ctx, v); err != nil {
				return err
			}
		}
		if *shown {
			if err := adgate.MarkShown(ctx, a.prefs, now, loc); err != nil {
				return err
			}
		}
		show, err := adgate.ShouldShow(ctx, a.prefs, now, loc)
		if err != nil {
			return err
		}
		last, err := a.prefs.LastAdSlot(ctx)
		if err != nil {
			return err
		}
		fmt.Println(theme.KV("Slot", labelWidth, string(adgate.CurrentSlot(now, loc))))
		fmt.Println(theme.KV("Last shown", labelWidth, string(last)))
		fmt.Println(theme.KV("Show ad", labelWidth, strconv.FormatBool(show)))
		return nil
	})
}
