package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link <target-id> <source-id>...",
	Short: "Link duplicate products to a canonical product",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		return runLink(cmd.Context(), cmd.OutOrStdout(), ids[0], ids[1:])
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <id>...",
	Short: "Mark products as verified canonical entries",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		return runVerify(cmd.Context(), cmd.OutOrStdout(), ids)
	},
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, len(args))
	for i, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid product id %q", arg)
		}
		ids[i] = id
	}
	return ids, nil
}

func runLink(ctx context.Context, out io.Writer, targetID int64, sourceIDs []int64) error {
	outcomes, err := app.DedupUseCase.LinkMany(ctx, targetID, sourceIDs)
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Success {
			fmt.Fprintf(out, "  %s %d -> %d\n", green("✓"), o.SourceID, o.TargetID)
			continue
		}
		failed++
		fmt.Fprintf(out, "  %s %d: %s\n", red("✗"), o.SourceID, o.Error)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d products not linked", failed, len(outcomes))
	}
	return nil
}

func runVerify(ctx context.Context, out io.Writer, ids []int64) error {
	for _, id := range ids {
		p, err := app.DedupUseCase.Verify(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s %d %s\n", green("✓"), p.ID, deref(p.Name))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(verifyCmd)
}
