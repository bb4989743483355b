package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Show catalog size",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCount(cmd.Context(), cmd.OutOrStdout())
	},
}

func runCount(ctx context.Context, out io.Writer) error {
	count, err := app.DedupUseCase.CountProducts(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d products\n", count)
	return nil
}

func init() {
	rootCmd.AddCommand(countCmd)
}
