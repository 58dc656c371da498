// Command hash-generator prints bcrypt digests for the given passwords, for
// seeding users directly in the database.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/phrazzld/task-manager-api/internal/service/auth"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:          "hash-generator <password>...",
		Short:        "Print bcrypt digests of passwords",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			hasher, err := auth.NewBcryptHasher(cost)
			if err != nil {
				return err
			}
			return printDigests(cmd.OutOrStdout(), hasher, args)
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (0 selects the default)")
	return cmd
}

func printDigests(w io.Writer, hasher auth.PasswordHasher, passwords []string) error {
	for _, password := range passwords {
		digest, err := hasher.Hash(password)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, digest); err != nil {
			return err
		}
	}
	return nil
}
