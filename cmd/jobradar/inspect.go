package main

import (
	"os"

	"github.com/spf13/cobra"

	"jobradar/internal/inspect"
	"jobradar/internal/store"
)

var inspectLimit int

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Browse archived postings",
	Long:  "Opens an interactive browser over the delivery archive, split into delivered and dry-run postings.",
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&inspectLimit, "limit", 200, "maximum number of archive rows to load")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	archive, err := store.OpenArchive(cfg.ArchivePath)
	if err != nil {
		logger.Error("failed to open archive", "path", cfg.ArchivePath, "error", err)
		os.Exit(1)
	}
	defer archive.Close()

	return inspect.Run(archive, inspectLimit)
}
