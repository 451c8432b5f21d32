// Package main provides menuctl, the menu and order administration CLI.
// It works directly against the same database as the webhook service.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"foodbot/internal/config"
	"foodbot/internal/database"
	"foodbot/internal/logger"
	"foodbot/internal/models"
	"foodbot/internal/services/order"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "menuctl",
		Short:         "Menu and order administration for the food ordering backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")

	cmd.AddCommand(seedCmd(&configPath))
	cmd.AddCommand(menuCmd(&configPath))
	cmd.AddCommand(ordersCmd(&configPath))

	return cmd
}

// withDB connects, runs fn and closes the pool
func withDB(configPath string, fn func(ctx context.Context, db *database.DB) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := database.New(cfg, logger.New("menuctl"))
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(context.Background(), db)
}

func seedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Apply migrations and populate the menu with sample items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(*configPath, func(ctx context.Context, db *database.DB) error {
				if err := db.RunMigrations(ctx, "migrations"); err != nil {
					return err
				}

				var count int
				if err := db.QueryRow(ctx, database.CountMenuItemsSQL).Scan(&count); err != nil {
					return err
				}
				if count > 0 {
					fmt.Printf("Menu already has %d items. Skipping population.\n", count)
					return nil
				}

				for _, item := range sampleMenu {
					err := db.Exec(ctx, database.InsertMenuItemSQL,
						item.name, decimal.RequireFromString(item.price), item.category)
					if err != nil {
						return fmt.Errorf("failed to seed %q: %w", item.name, err)
					}
				}
				fmt.Printf("Added %d menu items.\n", len(sampleMenu))
				return nil
			})
		},
	}
}

func menuCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Manage menu items",
	}

	var category string
	list := &cobra.Command{
		Use:   "list",
		Short: "List menu items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(*configPath, func(ctx context.Context, db *database.DB) error {
				sql := database.ListMenuItemsSQL
				var queryArgs []interface{}
				if category != "" {
					sql = database.ListMenuItemsByCategorySQL
					queryArgs = append(queryArgs, category)
				}

				rows, err := db.Query(ctx, sql, queryArgs...)
				if err != nil {
					return err
				}
				defer rows.Close()

				count := 0
				for rows.Next() {
					var item models.MenuItem
					if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Category, &item.Available); err != nil {
						return err
					}
					marker := "x"
					if item.Available {
						marker = "+"
					}
					itemCategory := ""
					if item.Category != nil {
						itemCategory = *item.Category
					}
					fmt.Printf("%s %-30s $%8s  [%s]\n", marker, item.Name, item.Price.StringFixed(2), itemCategory)
					count++
				}
				fmt.Printf("Total items: %d\n", count)
				return rows.Err()
			})
		},
	}
	list.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name> <price> [category]",
		Short: "Add a new menu item",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", args[1], err)
			}
			var category *string
			if len(args) == 3 {
				category = &args[2]
			}
			return withDB(*configPath, func(ctx context.Context, db *database.DB) error {
				var id int
				err := db.QueryRow(ctx, database.InsertMenuItemSQL, args[0], price, category).Scan(&id)
				if err != nil {
					return fmt.Errorf("menu item %q already exists or insert failed: %w", args[0], err)
				}
				fmt.Printf("Added menu item: %s - $%s\n", args[0], price.StringFixed(2))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-price <name> <price>",
		Short: "Update the price of a menu item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", args[1], err)
			}
			return withDB(*configPath, func(ctx context.Context, db *database.DB) error {
				tag, err := db.Pool.Exec(ctx, database.UpdateMenuItemPriceSQL, price, args[0])
				if err != nil {
					return err
				}
				if tag.RowsAffected() == 0 {
					return fmt.Errorf("menu item %q not found", args[0])
				}
				fmt.Printf("Updated %s -> $%s\n", args[0], price.StringFixed(2))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <name>",
		Short: "Toggle availability of a menu item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(*configPath, func(ctx context.Context, db *database.DB) error {
				var available bool
				err := db.QueryRow(ctx, database.ToggleMenuItemAvailabilitySQL, args[0]).Scan(&available)
				if err != nil {
					return fmt.Errorf("menu item %q not found", args[0])
				}
				state := "unavailable"
				if available {
					state = "available"
				}
				fmt.Printf("%s is now %s\n", args[0], state)
				return nil
			})
		},
	})

	return cmd
}

func ordersCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect and manage placed orders",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <order_id>",
		Short: "Show details of an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			return withDB(*configPath, func(ctx context.Context, db *database.DB) error {
				repo := order.NewPostgresRepository(db)
				o, err := repo.GetOrder(ctx, orderID)
				if err != nil {
					return err
				}
				fmt.Printf("Order %d\nStatus: %s\nDate:   %s\nTotal:  $%s\nItems:\n",
					o.ID, o.Status, o.CreatedAt.Format("2006-01-02 15:04:05"), o.TotalAmount.StringFixed(2))
				for _, line := range o.Items {
					fmt.Printf("  - %-30s x%d  $%s\n", line.ItemName, line.Quantity, line.Subtotal().StringFixed(2))
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-status <order_id> <status>",
		Short: "Update the lifecycle status of an order",
		Long:  `Valid statuses: Placed, Preparing, "Out for Delivery", Delivered, Cancelled.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			status, err := models.ParseOrderStatus(args[1])
			if err != nil {
				return err
			}
			return withDB(*configPath, func(ctx context.Context, db *database.DB) error {
				repo := order.NewPostgresRepository(db)
				if err := repo.UpdateStatus(ctx, orderID, status); err != nil {
					return err
				}
				fmt.Printf("Order %d status -> %s\n", orderID, status)
				return nil
			})
		},
	})

	var limit int
	recent := &cobra.Command{
		Use:   "recent",
		Short: "List recent orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(*configPath, func(ctx context.Context, db *database.DB) error {
				repo := order.NewPostgresRepository(db)
				orders, err := repo.ListRecent(ctx, limit)
				if err != nil {
					return err
				}
				fmt.Printf("%-6s %-18s %-10s %s\n", "ID", "Status", "Total", "Date")
				for _, o := range orders {
					fmt.Printf("%-6d %-18s $%-9s %s\n", o.ID, o.Status, o.TotalAmount.StringFixed(2), o.CreatedAt.Format("2006-01-02 15:04:05"))
				}
				return nil
			})
		},
	}
	recent.Flags().IntVar(&limit, "limit", 10, "Number of orders to show")
	cmd.AddCommand(recent)

	cmd.AddCommand(&cobra.Command{
		Use:   "summary",
		Short: "Show sales summary statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(*configPath, func(ctx context.Context, db *database.DB) error {
				repo := order.NewPostgresRepository(db)
				summary, err := repo.GetSalesSummary(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Total Orders:  %d\n", summary.TotalOrders)
				fmt.Printf("Total Revenue: $%s\n", summary.TotalRevenue.StringFixed(2))
				if summary.TotalOrders > 0 {
					average := summary.TotalRevenue.Div(decimal.NewFromInt(int64(summary.TotalOrders)))
					fmt.Printf("Average Order: $%s\n", average.StringFixed(2))
				}
				fmt.Println("Orders by status:")
				for _, status := range []models.OrderStatus{
					models.StatusPlaced, models.StatusPreparing, models.StatusOutForDelivery,
					models.StatusDelivered, models.StatusCancelled,
				} {
					fmt.Printf("  %-18s %d\n", status, summary.ByStatus[status])
				}
				return nil
			})
		},
	})

	return cmd
}

var sampleMenu = []struct {
	name     string
	price    string
	category string
}{
	{"Margherita Pizza", "8.99", "Pizza"},
	{"Pepperoni Pizza", "10.99", "Pizza"},
	{"Veggie Pizza", "9.99", "Pizza"},
	{"BBQ Chicken Pizza", "11.99", "Pizza"},
	{"Classic Burger", "7.99", "Burger"},
	{"Cheese Burger", "8.99", "Burger"},
	{"Veggie Burger", "7.49", "Burger"},
	{"Bacon Burger", "9.99", "Burger"},
	{"Spaghetti Carbonara", "12.99", "Pasta"},
	{"Penne Arrabbiata", "11.99", "Pasta"},
	{"Fettuccine Alfredo", "13.99", "Pasta"},
	{"French Fries", "3.99", "Sides"},
	{"Garlic Bread", "4.99", "Sides"},
	{"Onion Rings", "4.49", "Sides"},
	{"Caesar Salad", "5.99", "Sides"},
	{"Coca Cola", "1.99", "Drinks"},
	{"Pepsi", "1.99", "Drinks"},
	{"Orange Juice", "2.99", "Drinks"},
	{"Water", "0.99", "Drinks"},
	{"Chocolate Cake", "5.99", "Desserts"},
	{"Ice Cream", "3.99", "Desserts"},
	{"Cheesecake", "6.99", "Desserts"},
}
