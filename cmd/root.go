package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xiaoyuanzhu-com/webhook-chat/config"
	"github.com/xiaoyuanzhu-com/webhook-chat/db"
	"github.com/xiaoyuanzhu-com/webhook-chat/log"
)

var (
	dbPath   string
	logLevel string
	version  = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "webhook-chat",
	Short: "Chat with an n8n workflow through its webhook",
	Long: `A chat backend that relays messages to an n8n webhook and keeps
the conversation history in a local SQLite database.

Quick Start:
  webhook-chat serve                        # Start the HTTP server
  webhook-chat sessions                     # List chat sessions
  webhook-chat export --format md           # Export all sessions as Markdown`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logLevel != "" {
			log.SetLevel(logLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite database (default from CHAT_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

func databasePath() string {
	if dbPath != "" {
		return dbPath
	}
	return config.Get().DatabasePath
}

func openDatabase() (*db.DB, error) {
	database, err := db.Open(db.Config{Path: databasePath()})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}
