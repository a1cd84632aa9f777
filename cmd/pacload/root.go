package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gyeh/pacstays/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "pacload",
	Short: "Post-acute care stay builder",
	Long:  "Consolidates claim lines into non-overlapping post-acute stays, links surrounding hospital encounters, and publishes the dashboard serving tables.",
}

func init() {
	_ = godotenv.Load()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("DATABASE_URL"), "Postgres connection string (or set DATABASE_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.CorrectionsFile, "corrections", "", "YAML corrections file (defaults embedded)")
}
