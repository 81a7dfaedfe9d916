package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"checkbook/internal/client/storage"
	"checkbook/internal/models"
)

// itemFlags собирает повторяющиеся флаги -item
type itemFlags []string

func (f *itemFlags) String() string {
	return strings.Join(*f, ", ")
}

func (f *itemFlags) Set(value string) error {
	*f = append(*f, value)
	return nil
}

func (c *Cli) runAddCheck(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-check", flag.ContinueOnError)
	date := fs.String("date", time.Now().Format("2006-01-02"), "Purchase date (YYYY-MM-DD)")
	shopRef := fs.String("shop", "", "Shop ID or name")
	var items itemFlags
	fs.Var(&items, "item", "Check item as name:price:count[:unit], repeatable")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *shopRef == "" {
		return fmt.Errorf("missing -shop. Usage: checkbook add-check -shop <id|name> -item name:price:count[:unit]")
	}
	if len(items) == 0 {
		return fmt.Errorf("missing -item. A check needs at least one item")
	}

	month, err := monthOfDate(*date)
	if err != nil {
		return err
	}

	shop, err := c.resolveShop(ctx, *shopRef)
	if err != nil {
		return err
	}

	checkItems := make([]models.CheckItem, 0, len(items))
	for _, raw := range items {
		item, err := parseItem(raw)
		if err != nil {
			return err
		}
		checkItems = append(checkItems, item)
	}

	check, err := c.dataService.AddCheck(ctx, month, *date, shop.ID, checkItems)
	if err != nil {
		return fmt.Errorf("failed to add check: %w", err)
	}

	fmt.Printf("Check #%d added for %s at %s, total %s\n",
		check.CheckNumber, check.Date, check.ShopName, check.Total)
	fmt.Println("The check will be pushed to the server on the next sync.")

	return nil
}

func (c *Cli) runChecks(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checks", flag.ContinueOnError)
	monthStr := fs.String("month", time.Now().Format("2006-01"), "Month to list (YYYY-MM)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	month, err := parseMonth(*monthStr)
	if err != nil {
		return err
	}

	checks := c.dataService.ListChecks(ctx, month)
	if len(checks) == 0 {
		fmt.Printf("No checks found for %s.\n", *monthStr)
		return nil
	}

	fmt.Printf("=== Checks for %s ===\n", *monthStr)
	fmt.Println()
	for _, check := range checks {
		fmt.Printf("#%d  %s  %s  total %s\n", check.CheckNumber, check.Date, check.ShopName, check.Total)
		for _, item := range check.Items {
			fmt.Printf("    %d. %s  %s x %s %s = %s\n",
				item.SerialNumber, item.ProductName, item.Price, item.Count, item.Unit, item.Total)
		}
		fmt.Printf("    ID: %s\n", check.ID)
		fmt.Println()
	}
	fmt.Printf("Month total: %s\n", c.dataService.MonthTotal(ctx, month))

	return nil
}

func (c *Cli) runMonths(ctx context.Context) error {
	months := c.dataService.AvailableMonths(ctx)

	if len(months) == 0 {
		fmt.Println("No checks stored yet.")
		return nil
	}

	for _, m := range months {
		fmt.Printf("%04d-%02d  total %s\n", m.Year, m.Month, c.dataService.MonthTotal(ctx, m))
	}

	return nil
}

// parseItem разбирает позицию чека вида name:price:count[:unit]
func parseItem(raw string) (models.CheckItem, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return models.CheckItem{}, fmt.Errorf("bad item %q, expected name:price:count[:unit]", raw)
	}

	price, err := decimal.NewFromString(parts[1])
	if err != nil {
		return models.CheckItem{}, fmt.Errorf("bad price in item %q: %w", raw, err)
	}
	count, err := decimal.NewFromString(parts[2])
	if err != nil {
		return models.CheckItem{}, fmt.Errorf("bad count in item %q: %w", raw, err)
	}

	unit := models.UnitPcs
	if len(parts) == 4 {
		unit = models.UnitOfMeasure(parts[3])
	}

	return models.NewCheckItem(parts[0], price, count, unit)
}

func monthOfDate(date string) (storage.Month, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return storage.Month{}, fmt.Errorf("bad date %q, expected YYYY-MM-DD", date)
	}
	return storage.Month{Year: t.Year(), Month: int(t.Month())}, nil
}

func parseMonth(s string) (storage.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return storage.Month{}, fmt.Errorf("bad month %q, expected YYYY-MM", s)
	}
	return storage.Month{Year: t.Year(), Month: int(t.Month())}, nil
}
