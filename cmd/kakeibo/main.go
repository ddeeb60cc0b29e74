// Command kakeibo prints a dashboard snapshot for one ledger user: month
// totals, account balances, the spending comparison against last month,
// category composition and savings goal progress. It stands in for the
// interactive presentation layer and only reads through the core query
// surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"kakeibo/internal/cli"
	"kakeibo/internal/core"
	"kakeibo/internal/report"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(slog.LevelInfo)
	cfg := cli.LoadAndValidateConfig(logger)
	if level, err := cfg.SlogLevel(); err == nil && level != slog.LevelInfo {
		logger = cli.SetupLogger(level)
	}

	user := flag.String("user", cfg.DashboardUser, "ledger user to render")
	flag.Parse()
	if *user == "" {
		logger.Error("No user given: set -user or KAKEIBO_USER")
		os.Exit(1)
	}

	store := cli.InitStore(logger, cfg.DBPath)
	defer store.Close()

	ctx := context.Background()
	ledger, err := store.ReadLedger(ctx, *user)
	if err != nil {
		logger.Error("Failed to read ledger", "error", err, "username", *user)
		os.Exit(1)
	}

	views := report.NewMemo()
	now := time.Now()

	totals := views.Totals(ledger, now)
	fmt.Printf("%s — %s %d\n\n", *user, totals.Month, totals.Year)
	fmt.Printf("income this month:  %s\n", amount(totals.Income))
	fmt.Printf("expense this month: %s\n", amount(totals.Expense))
	fmt.Printf("total balance:      %s\n\n", amount(report.TotalBalance(ledger)))

	balances := views.AccountBalances(ledger)
	for _, a := range ledger.Accounts {
		fmt.Printf("  %-20s %s\n", a.Name, amount(balances[a.ID]))
	}

	cmp := views.CompareSpending(ledger, now)
	verb := "under"
	if cmp.Diff > 0 {
		verb = "over"
	}
	fmt.Printf("\nspending vs last month (day %d): %s %s (%d%%)\n",
		now.Day(), amount(abs(cmp.Diff)), verb, abs(int64(cmp.Percent)))

	for _, kind := range []core.TransactionType{core.Income, core.Expense} {
		breakdown := report.ByCategory(ledger, kind, now)
		if len(breakdown) == 0 {
			continue
		}
		fmt.Printf("\n%s by category:\n", kind)
		for _, c := range breakdown {
			fmt.Printf("  %-20s %s\n", c.Name, amount(c.Amount))
		}
	}

	if len(ledger.Savings) > 0 {
		fmt.Println("\nsavings goals:")
		for _, g := range ledger.Savings {
			fmt.Printf("  %-20s %s / %s (%d%%)\n",
				g.Purpose, amount(g.CurrentAmount), amount(g.TargetAmount), report.GoalProgress(g))
		}
	}
}

func amount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
