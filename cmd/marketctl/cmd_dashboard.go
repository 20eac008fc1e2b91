package main

import (
	"github.com/Aditya2073/agrisample/internal/client"
	"github.com/Aditya2073/agrisample/internal/order"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const recentOrders = 5

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Summary of your sales or purchases",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.requireUser()
			if err != nil {
				return err
			}

			var (
				dash   *client.Dashboard
				recent []order.Order
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				var err error
				dash, err = a.client.Dashboard(ctx)
				return err
			})
			g.Go(func() error {
				var err error
				if u.IsFarmer() {
					recent, err = a.client.IncomingOrders(ctx)
				} else {
					recent, err = a.client.MyOrders(ctx)
				}
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			a.printf("Hello, %s (%s)\n\n", u.Name, u.Role)
			if s := dash.Sales; s != nil {
				a.printf("Active listings:  %d\n", s.ActiveListings)
				a.printf("Pending orders:   %d\n", s.PendingOrders)
				a.printf("Completed orders: %d\n", s.CompletedOrders)
				a.printf("Revenue:          %s\n", s.Revenue.StringFixed(2))
			}
			if p := dash.Purchases; p != nil {
				a.printf("Total orders:     %d\n", p.TotalOrders)
				a.printf("Pending orders:   %d\n", p.PendingOrders)
				a.printf("Total spent:      %s\n", p.TotalSpent.StringFixed(2))
			}

			if len(recent) > recentOrders {
				recent = recent[:recentOrders]
			}
			a.printf("\nRecent orders\n")
			a.printOrders(recent, u.IsFarmer())
			return nil
		},
	}
}
