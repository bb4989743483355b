package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"foodcatalog/importer"
	"foodcatalog/internal/domain/repositories"
)

var (
	importRecluster bool

	seedOptions = importer.DemoOptions{Seed: 42, Size: 50, DuplicateGroups: 10, FillRate: 0.7}
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import products from an xlsx workbook or an HTML table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		products, ignored, err := parseProductFile(args[0])
		if err != nil {
			return err
		}
		if len(ignored) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s ignored columns: %s\n", yellow("!"), strings.Join(ignored, ", "))
		}
		return runImport(cmd.Context(), cmd.OutOrStdout(), products, importRecluster)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the catalog with a generated demo catalog with planted duplicates",
	RunE: func(cmd *cobra.Command, args []string) error {
		products := importer.GenerateDemoCatalog(seedOptions)
		return runImport(cmd.Context(), cmd.OutOrStdout(), products, importRecluster)
	},
}

func parseProductFile(path string) ([]repositories.Product, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return importer.ParseProductsXLSX(f)
	case ".html", ".htm":
		return importer.ParseProductsHTML(f, "")
	default:
		return nil, nil, fmt.Errorf("unsupported file type %q, expected .xlsx or .html", filepath.Ext(path))
	}
}

func runImport(ctx context.Context, out io.Writer, products []repositories.Product, recluster bool) error {
	result, err := app.Importer.Import(ctx, products)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "  %s %d of %d products imported in %s\n",
		green("✓"), result.Success, result.Total, result.Duration.Round(time.Millisecond))
	for _, e := range result.Errors {
		fmt.Fprintf(out, "  %s %s\n", red("✗"), e)
	}

	if !recluster || result.Success == 0 {
		return nil
	}
	return runRecluster(ctx, out)
}

func init() {
	importCmd.Flags().BoolVar(&importRecluster, "recluster", false, "run a clustering pass after import")

	seedCmd.Flags().Int64Var(&seedOptions.Seed, "seed", seedOptions.Seed, "random seed")
	seedCmd.Flags().IntVar(&seedOptions.Size, "size", seedOptions.Size, "number of unique products")
	seedCmd.Flags().IntVar(&seedOptions.DuplicateGroups, "duplicates", seedOptions.DuplicateGroups, "products that get two duplicates")
	seedCmd.Flags().Float64Var(&seedOptions.FillRate, "fill-rate", seedOptions.FillRate, "share of filled nutrients, 0..1")
	seedCmd.Flags().BoolVar(&importRecluster, "recluster", false, "run a clustering pass after seeding")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(seedCmd)
}
