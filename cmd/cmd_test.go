package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaoyuanzhu-com/webhook-chat/chat"
	"github.com/xiaoyuanzhu-com/webhook-chat/db"
	"github.com/xiaoyuanzhu-com/webhook-chat/export"
)

func seedDatabase(t *testing.T) (*db.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.sqlite")
	database, err := db.Open(db.Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	s, err := database.CreateSession("Weekly report")
	require.NoError(t, err)
	require.NoError(t, database.SaveMessage(s.ID, db.ChatMessage{ID: "m1", Content: "summarize", Sender: db.SenderUser, Timestamp: db.NowMs()}))
	require.NoError(t, database.SaveMessage(s.ID, db.ChatMessage{ID: "m2", Content: "**done**", Sender: db.SenderN8N, Timestamp: db.NowMs()}))
	return database, s.ID
}

func TestLoadSessionRowsAndDisplay(t *testing.T) {
	database, id := seedDatabase(t)
	controller := chat.NewController(chat.Options{Store: database})

	rows, err := loadSessionRows(context.Background(), controller)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Messages)

	var out bytes.Buffer
	displaySessions(&out, rows, time.Now())
	assert.Contains(t, out.String(), "Found 1 session(s)")
	assert.Contains(t, out.String(), id)
	assert.Contains(t, out.String(), "Weekly report")
}

func TestDisplaySessions_Empty(t *testing.T) {
	var out bytes.Buffer
	displaySessions(&out, nil, time.Now())
	assert.Contains(t, out.String(), "No sessions found")
}

func TestFormatWhen(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "Today 11:00", formatWhen(now.Add(-time.Hour), now))
	assert.Equal(t, "2024-01-02", formatWhen(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), now))
}

func TestExportSessions(t *testing.T) {
	database, id := seedDatabase(t)
	controller := chat.NewController(chat.Options{Store: database})
	exporter, err := export.NewExporter("md")
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	n, err := exportSessions(context.Background(), controller, exporter, dir, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	raw, err := os.ReadFile(filepath.Join(dir, "chat_"+id+".md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "# Weekly report"))

	_, err = exportSessions(context.Background(), controller, exporter, dir, "missing")
	assert.Error(t, err)
}

func TestRootCommand_Help(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--help"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "serve")
	assert.Contains(t, out.String(), "export")
}
