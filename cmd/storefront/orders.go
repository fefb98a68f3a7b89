package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	auditdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/audit/domain"
	checkoutdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/checkout/domain"
	orderdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/order/domain"
	"github.com/spf13/cobra"
)

func ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect and resubmit orders",
	}
	cmd.AddCommand(ordersListCmd())
	cmd.AddCommand(ordersResubmitCmd())
	return cmd
}

func ordersListCmd() *cobra.Command {
	var (
		status string
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc orderdomain.Service
			return runApp(cmd.Context(), func() error {
				orders, err := svc.List(cmd.Context(), orderdomain.ListRequest{Status: status, Limit: limit})
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(orders)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSESSION\tSTATUS\tTOTAL\tITEMS\tFULFILLMENT\tCREATED")
				for _, o := range orders {
					fulfillmentID := "-"
					if o.FulfillmentOrderID != nil {
						fulfillmentID = *o.FulfillmentOrderID
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%d %s\t%d\t%s\t%s\n",
						o.ID, o.SessionID, o.Status, o.Total, o.Currency, len(o.Items), fulfillmentID,
						o.CreatedAt.Format("2006-01-02 15:04"))
				}
				return w.Flush()
			}, &svc)
		},
	}
	cmd.Flags().StringVar(&status, "status", "pending", "filter by status (empty for all)")
	cmd.Flags().IntVarP(&limit, "limit", "n", orderdomain.DefaultListLimit, "maximum orders")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func ordersResubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resubmit <order-id>",
		Short: "Submit a pending order to the fulfillment provider again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				svc      checkoutdomain.Service
				auditSvc auditdomain.Service
			)
			return runApp(cmd.Context(), func() error {
				order, err := svc.Resubmit(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				targetID := order.ID.String()
				recordAudit(cmd.Context(), auditSvc, cmd.ErrOrStderr(), auditdomain.ActionOrderResubmit, "order", &targetID, map[string]any{
					"fulfillment_order_id": *order.FulfillmentOrderID,
				})
				fmt.Fprintf(cmd.OutOrStdout(), "order %s submitted as %s\n", order.ID, *order.FulfillmentOrderID)
				return nil
			}, &svc, &auditSvc)
		},
	}
}
