package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"foodcatalog/internal/domain/repositories"
)

var (
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

func header(out io.Writer, title string) {
	fmt.Fprintf(out, "\n%s\n\n", cyan("=== "+title+" ==="))
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

// printProduct одна строка списка продуктов
func printProduct(out io.Writer, p repositories.Product) {
	cluster := gray("unique")
	if p.ClusterID != repositories.NoCluster {
		cluster = yellow(fmt.Sprintf("cluster %d (%d)", p.ClusterID, p.DisplayClusterCount()))
	}
	fmt.Fprintf(out, "  %6d  %-40s  %-20s  %s\n", p.ID, deref(p.Name), deref(p.Brands), cluster)
}
