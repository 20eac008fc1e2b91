package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/Aditya2073/agrisample/internal/order"
	"github.com/gofrs/uuid"
	"github.com/spf13/cobra"
)

func newOrdersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect and update orders",
	}
	cmd.AddCommand(
		newOrdersListCmd(a, "mine", "Orders you placed as a buyer", false),
		newOrdersListCmd(a, "incoming", "Orders placed on your listings", true),
		newOrderStatusCmd(a),
	)
	return cmd
}

func newOrdersListCmd(a *app, use, short string, incoming bool) *cobra.Command {
	var status string
	var group bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			var filter order.Status
			if status != "" {
				s, err := order.ParseStatus(status)
				if err != nil {
					return err
				}
				filter = s
			}

			var (
				orders []order.Order
				err    error
			)
			if incoming {
				orders, err = a.client.IncomingOrders(cmd.Context())
			} else {
				orders, err = a.client.MyOrders(cmd.Context())
			}
			if err != nil {
				return err
			}
			if filter != "" {
				orders = filterByStatus(orders, filter)
			}

			if !group {
				a.printOrders(orders, incoming)
				return nil
			}
			for _, g := range order.GroupByStatus(orders) {
				a.printf("\n== %s (%d) ==\n", g.Status, len(g.Orders))
				a.printOrders(g.Orders, incoming)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only orders with this status")
	cmd.Flags().BoolVar(&group, "group", false, "group orders by status")
	return cmd
}

func filterByStatus(orders []order.Order, status order.Status) []order.Order {
	out := make([]order.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

func (a *app) printOrders(orders []order.Order, incoming bool) {
	if len(orders) == 0 {
		a.printf("No orders.\n")
		return
	}
	counterparty := "SELLER"
	if incoming {
		counterparty = "BUYER"
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tPRODUCE\tQTY\tTOTAL\tSTATUS\t%s\tPLACED\n", counterparty)
	for _, o := range orders {
		name := ""
		if o.Listing != nil {
			name = o.Listing.Name
		}
		party := o.Seller
		if incoming {
			party = o.Buyer
		}
		who := ""
		if party != nil {
			who = party.Name
			if incoming && party.Phone != "" {
				who += " (" + party.Phone + ")"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			o.ID, name, o.Quantity, o.TotalPrice.StringFixed(2), o.Status, who, o.CreatedAt.Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

func newOrderStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <order-id> <status>",
		Short: "Accept, decline, complete or cancel an order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			id, err := uuid.FromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			target, err := order.ParseStatus(args[1])
			if err != nil {
				return err
			}

			o, err := a.client.SetOrderStatus(cmd.Context(), id, target)
			if err != nil {
				return explainOrderError(err)
			}
			a.printf("Order %s is now %s.\n", o.ID, o.Status)
			return nil
		},
	}
}
