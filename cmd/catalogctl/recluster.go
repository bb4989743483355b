package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	dedupapp "foodcatalog/internal/application/dedup"
)

var reclusterCmd = &cobra.Command{
	Use:   "recluster",
	Short: "Run a clustering pass over the whole catalog",
	Long: `Run a clustering pass and list products whose group of alike products grew.
Concurrent passes are collapsed into one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecluster(cmd.Context(), cmd.OutOrStdout())
	},
}

func runRecluster(ctx context.Context, out io.Writer) error {
	report, err := app.DedupUseCase.Recluster(ctx)
	if err != nil {
		return err
	}
	printReclusterReport(out, report)
	return nil
}

func printReclusterReport(out io.Writer, report *dedupapp.ReclusterReport) {
	header(out, "Clustering pass "+report.PassID)
	fmt.Fprintf(out, "  Rows:     %d (%s updated, %s failed)\n",
		report.Summary.Total, green(report.Summary.Updated), red(report.Summary.Failed))
	fmt.Fprintf(out, "  Clusters: %d\n\n", report.Clusters)

	for _, f := range report.Summary.Failures {
		fmt.Fprintf(out, "  %s product %d: %s\n", red("✗"), f.ID, f.Error)
	}

	if len(report.Grown) == 0 {
		fmt.Fprintf(out, "  %s\n", gray("No new alike products"))
		return
	}
	fmt.Fprintf(out, "%s\n", yellow("New alike products:"))
	for _, e := range report.Grown {
		fmt.Fprintf(out, "  %6d  %-40s  cluster %d, %d alike\n", e.ID, deref(e.Name), e.ClusterID, e.Siblings)
	}
}

func init() {
	rootCmd.AddCommand(reclusterCmd)
}
