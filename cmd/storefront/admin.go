package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/server"
	"github.com/spf13/cobra"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin API helpers",
	}
	cmd.AddCommand(adminHashKeyCmd())
	return cmd
}

func adminHashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key",
		Short: "Read an admin key from stdin and print its argon2id hash for admin.api_key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("no key on stdin")
			}
			encoded, err := server.HashAdminKey(strings.TrimSpace(line))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return nil
		},
	}
}
