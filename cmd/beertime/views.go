package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"beertime/internal/calendar"
	"beertime/internal/interval"
	"beertime/internal/locale"
	"beertime/internal/stats"
	"beertime/internal/theme"
)

const labelWidth = 12

func (a *app) language(ctx context.Context) locale.Language {
	l, err := a.prefs.Language(ctx)
	if err != nil {
		return locale.System
	}
	return l
}

func printToday(ctx context.Context, a *app) error {
	records, p, err := a.snapshot(ctx)
	if err != nil {
		return err
	}
	lang := a.language(ctx)
	t := stats.Today(records, p)
	fmt.Println(theme.Title("Today " + t.Date.String()))
	fmt.Println(theme.KV("Drinks", labelWidth, fmt.Sprintf("%.1f", t.Count)))
	fmt.Println(theme.KV("Cost", labelWidth, lang.FormatCost(t.Cost)))
	if t.First != nil {
		first := time.UnixMilli(*t.First)
		fmt.Println(theme.KV("First", labelWidth, first.In(a.rule.Loc()).Format("15:04")))
		fmt.Println(theme.KV("Since first", labelWidth, interval.FormatHoursMinutes(p.Now.Sub(first))))
	}
	return nil
}

func cmdToday(args []string) error {
	fs := flag.NewFlagSet("today", flag.ExitOnError)
	return withApp(fs, args, printToday)
}

func cmdWeek(args []string) error {
	fs := flag.NewFlagSet("week", flag.ExitOnError)
	return withApp(fs, args, func(ctx context.Context, a *app) error {
		records, p, err := a.snapshot(ctx)
		if err != nil {
			return err
		}
		lang := a.language(ctx)
		w := stats.Week(records, p)
		fmt.Println(theme.Title(fmt.Sprintf("Week %s to %s", w.From, w.To)))
		fmt.Println(theme.KV("Drinks", labelWidth, fmt.Sprintf("%.1f", w.Count)))
		fmt.Println(theme.KV("Per day", labelWidth, fmt.Sprintf("%.1f over %d day(s)", w.AvgPerDay, w.DaysPassed)))
		fmt.Println(theme.KV("Cost", labelWidth, lang.FormatCost(w.CostTotal)))
		fmt.Println(theme.KV("Cost per day", labelWidth, lang.FormatCost(w.CostAvgPerDay)))
		var top float64
		for _, d := range w.Days {
			if d.Count > top {
				top = d.Count
			}
		}
		for _, d := range w.Days {
			fmt.Printf("%s %-20s %.1f\n", d.Date.Weekday().String()[:3], theme.Bar(d.Count, top, 20), d.Count)
		}
		return nil
	})
}

func cmdMonth(args []string) error {
	fs := flag.NewFlagSet("month", flag.ExitOnError)
	year := fs.Int("year", 0, "year, default current")
	month := fs.Int("month", 0, "month 1-12, default current")
	return withApp(fs, args, func(ctx context.Context, a *app) error {
		records, p, err := a.snapshot(ctx)
		if err != nil {
			return err
		}
		today := p.Today()
		y, m := today.Year, today.Month
		if *year > 0 {
			y = *year
		}
		if *month != 0 {
			if *month < 1 || *month > 12 {
				return fmt.Errorf("month must be within 1..12, got %d", *month)
			}
			m = time.Month(*month)
		}
		v := stats.Month(records, y, m, p)
		fmt.Println(theme.Title(fmt.Sprintf("%s %d", m, y)))
		fmt.Println(renderGrid(v))
		lang := a.language(ctx)
		fmt.Println(theme.KV("Total", labelWidth, fmt.Sprintf("%.1f", v.Total)))
		fmt.Println(theme.KV("Per day", labelWidth, fmt.Sprintf("%.2f", v.AvgPerDay)))
		fmt.Println(theme.KV("Cost", labelWidth, lang.FormatCost(v.TotalCost)))
		fmt.Println(theme.KV("Cost per day", labelWidth, lang.FormatCost(v.AvgCostPerDay)))
		return nil
	})
}

// renderGrid lays cells out Monday to Sunday, one "dd:count" per column.
func renderGrid(v stats.MonthView) string {
	var b strings.Builder
	for _, h := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		b.WriteString(theme.Muted(fmt.Sprintf("%-9s", h)))
	}
	for i, c := range v.Cells {
		if i%7 == 0 {
			b.WriteString("\n")
		}
		if c.Date == nil {
			b.WriteString(strings.Repeat(" ", 9))
			continue
		}
		cell := fmt.Sprintf("%2d", c.Date.Day)
		if c.Today {
			cell = theme.Highlight(cell)
		}
		count := "    "
		if c.Count > 0 {
			count = fmt.Sprintf("%4.1f", c.Count)
		}
		b.WriteString(cell + ":" + count + "  ")
	}
	return b.String()
}

func cmdHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	date := fs.String("date", "", "logical date YYYY-MM-DD, default today")
	return withApp(fs, args, func(ctx context.Context, a *app) error {
		records, p, err := a.snapshot(ctx)
		if err != nil {
			return err
		}
		d := p.Today()
		if *date != "" {
			if d, err = calendar.ParseDate(*date); err != nil {
				return err
			}
		}
		h := stats.History(records, d, p)
		fmt.Println(theme.Title("History " + d.String()))
		if len(h.Items) == 0 {
			fmt.Println(theme.Muted("no drinks"))
			return nil
		}
		ids := make(map[int64][]string)
		for _, r := range records {
			ids[r.Timestamp] = append(ids[r.Timestamp], r.ID)
		}
		loc := a.rule.Loc()
		for _, it := range h.Items {
			gap := "--"
			if it.Interval != nil {
				gap = "+" + interval.FormatHoursMinutes(*it.Interval)
			}
			id := ""
			if list := ids[it.Current]; len(list) > 0 {
				id, ids[it.Current] = list[0], list[1:]
			}
			fmt.Printf("#%-3d %s  %-9s %s\n", it.Index, time.UnixMilli(it.Current).In(loc).Format("15:04"), gap, theme.Muted(id))
		}
		fmt.Println(theme.KV("Total", labelWidth, fmt.Sprintf("%.1f", h.Total)))
		if h.Summary.Average != nil {
			fmt.Println(theme.KV("Avg gap", labelWidth, interval.FormatHoursMinutes(*h.Summary.Average)))
			fmt.Println(theme.KV("Longest gap", labelWidth, interval.FormatHoursMinutes(*h.Summary.Longest)))
		}
		return nil
	})
}

func cmdGraph(args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	year := fs.Int("year", 0, "year, default current")
	return withApp(fs, args, func(ctx context.Context, a *app) error {
		records, p, err := a.snapshot(ctx)
		if err != nil {
			return err
		}
		y := p.Today().Year
		if *year > 0 {
			y = *year
		}
		months := stats.YearGraph(records, y, p)
		var top float64
		for _, m := range months {
			if m.Total > top {
				top = m.Total
			}
		}
		fmt.Println(theme.Title(fmt.Sprintf("Monthly totals %d", y)))
		for _, m := range months {
			fmt.Printf("%s %-30s %.1f\n", m.Month.String()[:3], theme.Bar(m.Total, top, 30), m.Total)
		}
		return nil
	})
}

func cmdRhythm(args []string) error {
	fs := flag.NewFlagSet("rhythm", flag.ExitOnError)
	weeks := fs.Int("weeks", 0, "weeks to show, default from config")
	return withApp(fs, args, func(ctx context.Context, a *app) error {
		records, p, err := a.snapshot(ctx)
		if err != nil {
			return err
		}
		n := a.cfg.Graph.WeeksPerPage
		if *weeks > 0 {
			n = *weeks
		}
		fmt.Println(theme.Title("Average time between drinks"))
		for _, pt := range stats.Rhythm(records, n, p) {
			value := theme.Muted("--")
			if pt.Meaningful {
				value = interval.FormatHoursMinutes(pt.Average)
				if !pt.Label {
					value = theme.Muted(value)
				}
			}
			fmt.Printf("%-6s %-24s %s\n", pt.LabelText, theme.Bar(pt.Hours, interval.MaxWeekly.Hours(), 24), value)
		}
		return nil
	})
}
