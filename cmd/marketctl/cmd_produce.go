package main

import (
	"fmt"

	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newProduceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "produce",
		Short: "Manage your farm listings",
	}
	cmd.AddCommand(newProduceAddCmd(a), newProduceMineCmd(a))
	return cmd
}

func newProduceAddCmd(a *app) *cobra.Command {
	var in produce.NewListing
	var price string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "List produce for sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.requireUser()
			if err != nil {
				return err
			}
			if !u.IsFarmer() {
				return fmt.Errorf("only farmers can list produce")
			}
			in.Price, err = decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("invalid price %q", price)
			}

			l, err := a.client.AddListing(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.printf("Listed %s: %d %s at %s (%s).\n", l.Name, l.Quantity, l.Unit, l.Price.StringFixed(2), l.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "produce name")
	cmd.Flags().StringVar(&in.Description, "description", "", "short description")
	cmd.Flags().IntVar(&in.Quantity, "quantity", 0, "quantity on hand")
	cmd.Flags().StringVar(&in.Unit, "unit", "kg", "unit of measure")
	cmd.Flags().StringVar(&price, "price", "", "price per unit")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newProduceMineCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "Your listings, sold ones included",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			listings, err := a.client.MyListings(cmd.Context())
			if err != nil {
				return err
			}
			a.printListings(listings, false)
			return nil
		},
	}
}
