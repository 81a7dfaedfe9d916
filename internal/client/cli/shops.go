package cli

import (
	"context"
	"fmt"
	"strings"

	"checkbook/internal/models"
)

func (c *Cli) runAddShop(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing shop name. Usage: checkbook add-shop <name>")
	}

	name := strings.Join(args, " ")

	shop, err := c.dataService.AddShop(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to add shop: %w", err)
	}

	fmt.Printf("Shop %q added (id %s)\n", shop.Name, shop.ID)
	fmt.Println("The shop will be pushed to the server on the next sync.")

	return nil
}

func (c *Cli) runShops(ctx context.Context) error {
	shops := c.dataService.ListShops(ctx)

	if len(shops) == 0 {
		fmt.Println("No shops found.")
		fmt.Println()
		fmt.Println("Use 'checkbook add-shop <name>' to add your first shop.")
		return nil
	}

	fmt.Printf("Found %d shop(s):\n", len(shops))
	fmt.Println()
	for i, shop := range shops {
		fmt.Printf("%d. %s\n", i+1, shop.Name)
		fmt.Printf("   ID: %s\n", shop.ID)
	}

	return nil
}

// resolveShop ищет магазин по ID, а если не нашёл — по имени без учёта
// регистра
func (c *Cli) resolveShop(ctx context.Context, ref string) (models.Shop, error) {
	shops := c.dataService.ListShops(ctx)

	for _, shop := range shops {
		if shop.ID == ref {
			return shop, nil
		}
	}
	for _, shop := range shops {
		if strings.EqualFold(shop.Name, ref) {
			return shop, nil
		}
	}

	return models.Shop{}, fmt.Errorf("unknown shop %q. Use 'checkbook shops' to list known shops", ref)
}
