package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xiaoyuanzhu-com/webhook-chat/export"
)

type createSessionRequest struct {
	Title string `json:"title"`
}

type renameSessionRequest struct {
	Title string `json:"title"`
}

// ListSessions handles GET /api/sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	sessions, err := h.server.Sessions().List(c.Request.Context())
	if err != nil {
		respondChatError(c, err, "Failed to list sessions")
		return
	}
	RespondList(c, sessions)
}

// CreateSession handles POST /api/sessions
func (h *Handlers) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondBadRequest(c, "Invalid request body")
			return
		}
	}

	session, err := h.server.Sessions().Create(c.Request.Context(), req.Title)
	if err != nil {
		respondChatError(c, err, "Failed to create new chat")
		return
	}
	RespondCreated(c, session, "/api/sessions/"+session.ID)
}

// BootstrapSession handles POST /api/sessions/bootstrap
func (h *Handlers) BootstrapSession(c *gin.Context) {
	session, err := h.server.Sessions().Bootstrap(c.Request.Context())
	if err != nil {
		respondChatError(c, err, "Failed to load chat sessions")
		return
	}
	RespondData(c, session)
}

// GetSession handles GET /api/sessions/:id
func (h *Handlers) GetSession(c *gin.Context) {
	session, err := h.server.Sessions().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondChatError(c, err, "Failed to get session")
		return
	}
	RespondData(c, session)
}

// RenameSession handles PATCH /api/sessions/:id
func (h *Handlers) RenameSession(c *gin.Context) {
	var req renameSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body")
		return
	}

	session, err := h.server.Sessions().Rename(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		respondChatError(c, err, "Failed to rename session")
		return
	}
	RespondData(c, session)
}

// DeleteSession handles DELETE /api/sessions/:id
func (h *Handlers) DeleteSession(c *gin.Context) {
	if err := h.server.Sessions().Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondChatError(c, err, "Failed to delete chat")
		return
	}
	RespondNoContent(c)
}

// ExportSession handles GET /api/sessions/:id/export?format=md|json|jsonl|yaml
func (h *Handlers) ExportSession(c *gin.Context) {
	exporter, err := export.NewExporter(c.DefaultQuery("format", "md"))
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	session, err := h.server.Sessions().Get(ctx, c.Param("id"))
	if err != nil {
		respondChatError(c, err, "Failed to export session")
		return
	}
	messages, err := h.server.Chat().Messages(ctx, session.ID)
	if err != nil {
		respondChatError(c, err, "Failed to export session")
		return
	}

	transcript := export.NewTranscript(*session, messages)
	var buf bytes.Buffer
	if err := exporter.Export(transcript, &buf); err != nil {
		respondChatError(c, err, "Failed to export session")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(transcript, exporter)))
	c.Data(http.StatusOK, exporter.ContentType(), buf.Bytes())
}
