package main

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/Aditya2073/agrisample/internal/order"
	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/gofrs/uuid"
	"github.com/spf13/cobra"
)

func newCatalogCmd(a *app) *cobra.Command {
	var search, sort string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List available produce",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := produce.ParseSortMode(sort)
			if err != nil {
				return err
			}
			catalog := produce.NewCatalog(a.client)
			if err := catalog.Load(cmd.Context()); err != nil {
				return err
			}
			a.printListings(catalog.View(search, mode), true)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "match name or description")
	cmd.Flags().StringVar(&sort, "sort", "none", "none|price-ascending|price-descending|available-only")
	return cmd
}

func (a *app) printListings(listings []produce.Listing, withFarmer bool) {
	if len(listings) == 0 {
		a.printf("No produce found.\n")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSTATUS\tFARMER")
	for _, l := range listings {
		farmer := ""
		if withFarmer && l.Farmer != nil {
			farmer = l.Farmer.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%d %s\t%s\t%s\t%s\n", l.ID, l.Name, l.Quantity, l.Unit, l.Price.StringFixed(2), l.Status, farmer)
	}
	_ = tw.Flush()
}

func newBuyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "buy <produce-id> <quantity>",
		Short: "Order a quantity of a listing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			id, err := uuid.FromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid produce id %q", args[0])
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}

			o, err := a.client.PlaceOrder(cmd.Context(), id, qty)
			if err != nil {
				return explainOrderError(err)
			}
			a.printf("Order %s placed: %d for %s, status %s.\n", o.ID, o.Quantity, o.TotalPrice.StringFixed(2), o.Status)
			return nil
		},
	}
}

func explainOrderError(err error) error {
	switch {
	case errors.Is(err, order.ErrPartialFailure):
		return fmt.Errorf("the listing was updated but the order was not, contact support to reconcile: %w", err)
	case errors.Is(err, order.ErrConflict):
		return fmt.Errorf("someone else just completed this transaction, refresh the catalog and try again: %w", err)
	case errors.Is(err, order.ErrNoLongerAvailable):
		return fmt.Errorf("this produce is no longer available, refresh the catalog: %w", err)
	case errors.Is(err, order.ErrInsufficientStock):
		return fmt.Errorf("not enough stock for that quantity: %w", err)
	}
	return err
}
