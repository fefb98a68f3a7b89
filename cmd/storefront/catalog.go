package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	auditdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/audit/domain"
	catalogdomain "github.com/JohnConnorCode/kivett-bednar-sub000/internal/catalog/domain"
	catalogservice "github.com/JohnConnorCode/kivett-bednar-sub000/internal/catalog/service"
	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the product catalog",
	}
	cmd.AddCommand(catalogImportCmd())
	cmd.AddCommand(catalogListCmd())
	return cmd
}

func catalogImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Upsert catalog products from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			products, err := catalogservice.DecodeImport(f)
			if err != nil {
				return err
			}

			var (
				svc      catalogdomain.Service
				auditSvc auditdomain.Service
			)
			return runApp(cmd.Context(), func() error {
				n, err := svc.Import(cmd.Context(), products)
				if err != nil {
					return err
				}
				recordAudit(cmd.Context(), auditSvc, cmd.ErrOrStderr(), auditdomain.ActionCatalogImport, "catalog", nil, map[string]any{
					"file":     args[0],
					"products": n,
				})
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d products\n", n)
				return nil
			}, &svc, &auditSvc)
		},
	}
}

func catalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog products",
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc catalogdomain.Service
			return runApp(cmd.Context(), func() error {
				products, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "SLUG\tTITLE\tPRICE\tGELATO UID\tPRINT AREAS")
				for _, p := range products {
					fmt.Fprintf(w, "%s\t%s\t%d %s\t%s\t%d\n", p.Slug, p.Title, p.Price, p.Currency, p.GelatoProductUID, len(p.PrintAreas))
				}
				return w.Flush()
			}, &svc)
		},
	}
}
