// Command catalogctl управляет каталогом продуктов из командной строки:
// импорт, проходы кластеризации, очередь проверки и связывание дубликатов.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"foodcatalog/internal/config"
	"foodcatalog/internal/container"
	"foodcatalog/internal/infrastructure/logging"
)

var (
	configPath string
	verbose    bool

	// app инициализируется перед каждой командой; тесты подставляют свой
	app *container.Container
)

var rootCmd = &cobra.Command{
	Use:           "catalogctl",
	Short:         "Food catalog dedup tool",
	Long:          `Import products, run clustering passes, review alike products and link duplicates.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if app != nil {
			return nil
		}
		return openApp()
	},
}

func openApp() error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewNop()
	if verbose {
		logger, err = logging.New("dev", "debug")
		if err != nil {
			return err
		}
	}

	c, err := container.NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	if err := c.Initialize(); err != nil {
		return err
	}
	app = c
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CATALOG_CONFIG"), "path to YAML config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write debug logs to stderr")
}

func main() {
	err := rootCmd.Execute()
	if app != nil {
		app.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		os.Exit(1)
	}
}
