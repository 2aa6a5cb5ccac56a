package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xiaoyuanzhu-com/webhook-chat/chat"
	"github.com/xiaoyuanzhu-com/webhook-chat/export"
	"github.com/xiaoyuanzhu-com/webhook-chat/log"
)

var (
	exportFormat    string
	exportOutputDir string
	exportSessionID string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions to files",
	Long: `Export chat sessions to md, json, jsonl or yaml.

Exports every session unless --session-id is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		controller := chat.NewController(chat.Options{Store: database})
		written, err := exportSessions(cmd.Context(), controller, exporter, exportOutputDir, exportSessionID)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Export complete: %d session(s) exported to %s\n", written, exportOutputDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "Export format (md, json, jsonl, yaml)")
	exportCmd.Flags().StringVarP(&exportOutputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&exportSessionID, "session-id", "", "Export a specific session by ID")
}

// exportSessions writes one file per session into dir and returns how many
// were written.
func exportSessions(ctx context.Context, controller *chat.Controller, exporter export.Exporter, dir, sessionID string) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	manager := chat.NewSessions(controller)
	var sessions []chat.Session
	if sessionID != "" {
		s, err := manager.Get(ctx, sessionID)
		if err != nil {
			return 0, fmt.Errorf("session not found: %s (use 'webhook-chat sessions' to see available sessions)", sessionID)
		}
		sessions = []chat.Session{*s}
	} else {
		all, err := manager.List(ctx)
		if err != nil {
			return 0, err
		}
		sessions = all
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	written := 0
	for _, s := range sessions {
		messages, err := controller.Messages(ctx, s.ID)
		if err != nil {
			log.Error().Err(err).Str("sessionId", s.ID).Msg("failed to load messages")
			continue
		}

		transcript := export.NewTranscript(s, messages)
		path := filepath.Join(dir, export.Filename(transcript, exporter))

		file, err := os.Create(path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("failed to create file")
			continue
		}

		if err := exporter.Export(transcript, file); err != nil {
			_ = file.Close()
			log.Error().Err(err).Str("sessionId", s.ID).Msg("failed to export session")
			continue
		}

		if err := file.Close(); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to close file")
		}
		written++
	}
	return written, nil
}
