package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"foodcatalog/internal/domain/repositories"
	"foodcatalog/normalization"
)

var (
	reviewUnique bool
	exportFormat string
	exportOutput string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Show incomplete products that have alike products",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReview(cmd.Context(), cmd.OutOrStdout(), reviewUnique)
	},
}

var alikeCmd = &cobra.Command{
	Use:   "alike <id>",
	Short: "Show products in the same group as the given product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		return runAlike(cmd.Context(), cmd.OutOrStdout(), id)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the review queue to xlsx, csv or json",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := normalization.ParseExportFormat(exportFormat)
		if err != nil {
			return err
		}
		path := exportOutput
		if path == "" {
			path = "review" + format.Extension()
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()

		n, err := runExport(cmd.Context(), f, format)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d products written to %s\n", green("✓"), n, path)
		return nil
	},
}

func runReview(ctx context.Context, out io.Writer, unique bool) error {
	title := "Review queue"
	list, err := app.DedupUseCase.ListIncompleteWithCluster(ctx)
	if unique {
		title = "Incomplete unique products"
		list, err = app.DedupUseCase.ListIncompleteUnique(ctx)
	}
	if err != nil {
		return err
	}

	header(out, title)
	if len(list) == 0 {
		fmt.Fprintf(out, "  %s\n", gray("Nothing to review"))
		return nil
	}
	for _, p := range list {
		printProduct(out, p)
	}
	fmt.Fprintf(out, "\n  %d products\n", len(list))
	return nil
}

func runAlike(ctx context.Context, out io.Writer, id int64) error {
	p, err := app.DedupUseCase.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	header(out, fmt.Sprintf("Alike %d %s", p.ID, deref(p.Name)))
	if p.ClusterID == repositories.NoCluster {
		fmt.Fprintf(out, "  %s\n", gray("No alike products"))
		return nil
	}

	alike, err := app.DedupUseCase.ListAlike(ctx, p.ID, p.ClusterID)
	if err != nil {
		return err
	}
	if len(alike) == 0 {
		fmt.Fprintf(out, "  %s\n", gray("No alike products"))
		return nil
	}
	for _, a := range alike {
		printProduct(out, a)
	}
	return nil
}

func runExport(ctx context.Context, w io.Writer, format normalization.ExportFormat) (int, error) {
	list, err := app.DedupUseCase.ListIncompleteWithCluster(ctx)
	if err != nil {
		return 0, err
	}
	if err := app.Exporter.Export(w, format, list); err != nil {
		return 0, err
	}
	return len(list), nil
}

func init() {
	reviewCmd.Flags().BoolVar(&reviewUnique, "unique", false, "show incomplete products without alike products")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "xlsx", "export format: xlsx, csv or json")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default review.<ext>)")

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(alikeCmd)
	rootCmd.AddCommand(exportCmd)
}
