package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/kakaosession/internal/loco"
)

// MessageHandlers serves message actions inside a channel.
type MessageHandlers struct {
	facade Facade
	log    *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(facade Facade, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		facade: facade,
		log:    logger,
	}
}

// SendRequest represents the send message request body.
type SendRequest struct {
	Text       string        `json:"text"`
	Type       loco.ChatType `json:"type"`
	Attachment string        `json:"attachment"`
	NoSeen     bool          `json:"no_seen"`
}

// HideRequest represents the hide message request body.
type HideRequest struct {
	LinkID int64         `json:"link_id"`
	Type   loco.ChatType `json:"type"`
}

// KickRequest represents the kick member request body.
type KickRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
	LinkID int64 `json:"link_id"`
}

// ChatlogResponse represents one persisted message.
type ChatlogResponse struct {
	LogID    int64         `json:"log_id"`
	ChatID   int64         `json:"chat_id"`
	SenderID int64         `json:"sender_id"`
	Type     loco.ChatType `json:"type"`
	Text     string        `json:"text"`
	SendAt   int64         `json:"send_at"`
}

// Send posts a message to a channel.
// POST /api/channels/:id/messages
func (h *MessageHandlers) Send(c *gin.Context) {
	chatID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid send request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Text == "" && req.Attachment == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "text or attachment required"})
		return
	}
	if req.Type == 0 {
		req.Type = loco.ChatTypeText
	}

	chat := loco.Chat{Type: req.Type, Message: req.Text, Attachment: req.Attachment}
	chatlog, err := h.facade.Send(c.Request.Context(), chatID, chat, req.NoSeen)
	if err != nil {
		writeSessionError(c, h.log, "send", err)
		return
	}
	c.JSON(http.StatusCreated, chatlogResponse(*chatlog))
}

// Logs returns messages newer than the since cursor in ascending order.
// GET /api/channels/:id/logs?since=
func (h *MessageHandlers) Logs(c *gin.Context) {
	chatID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var since int64
	if raw := c.Query("since"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid since"})
			return
		}
		since = v
	}

	logs, err := h.facade.ChatLogs(c.Request.Context(), chatID, since)
	if err != nil {
		writeSessionError(c, h.log, "chat logs", err)
		return
	}

	out := make([]ChatlogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, chatlogResponse(l))
	}
	c.JSON(http.StatusOK, out)
}

// Delete removes a message for everyone.
// DELETE /api/channels/:id/messages/:log
func (h *MessageHandlers) Delete(c *gin.Context) {
	chatID, ok := int64Param(c, "id")
	if !ok {
		return
	}
	logID, ok := int64Param(c, "log")
	if !ok {
		return
	}

	if err := h.facade.Delete(c.Request.Context(), loco.DeleteMsgRequest{ChatID: chatID, LogID: logID}); err != nil {
		writeSessionError(c, h.log, "delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Hide hides a message in an open channel as moderator.
// POST /api/channels/:id/messages/:log/hide
func (h *MessageHandlers) Hide(c *gin.Context) {
	chatID, ok := int64Param(c, "id")
	if !ok {
		return
	}
	logID, ok := int64Param(c, "log")
	if !ok {
		return
	}

	var req HideRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}
	}
	linkID, ok := h.linkID(c, chatID, req.LinkID)
	if !ok {
		return
	}
	if req.Type == 0 {
		req.Type = loco.ChatTypeText
	}

	err := h.facade.Hide(c.Request.Context(), loco.HideMsgRequest{
		LinkID:   linkID,
		ChatID:   chatID,
		LogID:    logID,
		ChatType: req.Type,
	})
	if err != nil {
		writeSessionError(c, h.log, "hide", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Kick removes a member from an open channel.
// POST /api/channels/:id/kick
func (h *MessageHandlers) Kick(c *gin.Context) {
	chatID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req KickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	linkID, ok := h.linkID(c, chatID, req.LinkID)
	if !ok {
		return
	}

	err := h.facade.Kick(c.Request.Context(), loco.KickMemberRequest{
		LinkID: linkID,
		ChatID: chatID,
		UserID: req.UserID,
	})
	if err != nil {
		writeSessionError(c, h.log, "kick", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// linkID prefers an explicit link id, then the one from the login snapshot.
func (h *MessageHandlers) linkID(c *gin.Context, chatID, explicit int64) (int64, bool) {
	if explicit != 0 {
		return explicit, true
	}
	if ch, ok := h.facade.Channel(chatID); ok && ch.LinkID != 0 {
		return ch.LinkID, true
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "link_id required for channels outside the login snapshot"})
	return 0, false
}

func chatlogResponse(l loco.Chatlog) ChatlogResponse {
	return ChatlogResponse{
		LogID:    l.LogID,
		ChatID:   l.ChatID,
		SenderID: l.SenderID,
		Type:     l.Type,
		Text:     l.Message,
		SendAt:   l.SendAt,
	}
}
