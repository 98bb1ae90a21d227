package http

import (
	"cmp"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/kakaosession/internal/loco"
	"github.com/vovakirdan/kakaosession/internal/session"
)

// ChannelHandlers serves channel listing, identity lookup and joining.
type ChannelHandlers struct {
	facade Facade
	log    *zerolog.Logger
}

// NewChannelHandlers creates a new channel handlers instance.
func NewChannelHandlers(facade Facade, logger *zerolog.Logger) *ChannelHandlers {
	return &ChannelHandlers{
		facade: facade,
		log:    logger,
	}
}

// ChannelResponse represents a channel in API responses.
type ChannelResponse struct {
	ChatID      int64  `json:"chat_id"`
	Kind        string `json:"kind"`
	Type        string `json:"type"`
	Title       string `json:"title,omitempty"`
	MemberCount int    `json:"member_count"`
	LastLogID   int64  `json:"last_log_id"`
	LinkID      int64  `json:"link_id,omitempty"`
}

// UserResponse represents a cached identity in API responses.
type UserResponse struct {
	UserID    int64   `json:"user_id"`
	Nickname  string  `json:"nickname"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// JoinRequest represents the join request body.
type JoinRequest struct {
	LinkURL     string  `json:"link_url" binding:"required"`
	Nickname    string  `json:"nickname" binding:"required"`
	ProfilePath *string `json:"profile_path"`
	Passcode    *string `json:"passcode"`
}

// JoinResponse represents the joined channel.
type JoinResponse struct {
	ChatID  int64          `json:"chat_id"`
	LinkID  int64          `json:"link_id"`
	Name    string         `json:"name"`
	Members []UserResponse `json:"members"`
}

// Me returns the logged in account id.
// GET /api/me
func (h *ChannelHandlers) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user_id": h.facade.UserID()})
}

// ListChannels returns the login channel snapshot ordered by chat id.
// GET /api/channels
func (h *ChannelHandlers) ListChannels(c *gin.Context) {
	channels := h.facade.Channels()
	out := make([]ChannelResponse, 0, len(channels))
	for _, ch := range channels {
		out = append(out, channelResponse(ch))
	}
	slices.SortFunc(out, func(a, b ChannelResponse) int {
		return cmp.Compare(a.ChatID, b.ChatID)
	})
	c.JSON(http.StatusOK, out)
}

// GetUser returns the cached identity of a user.
// GET /api/users/:id
func (h *ChannelHandlers) GetUser(c *gin.Context) {
	userID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	ident, found := h.facade.KnownUser(userID)
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not known"})
		return
	}
	c.JSON(http.StatusOK, userResponse(ident))
}

// Join runs the open channel join handshake.
// POST /api/join
func (h *ChannelHandlers) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid join request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	res, err := h.facade.JoinChannel(c.Request.Context(), session.JoinParams{
		LinkURL:     req.LinkURL,
		Nickname:    req.Nickname,
		ProfilePath: req.ProfilePath,
		Passcode:    req.Passcode,
	})
	if err != nil {
		writeSessionError(c, h.log, "join", err)
		return
	}

	members := make([]UserResponse, 0, len(res.ChatRoom.Members))
	for _, m := range res.ChatRoom.Members {
		members = append(members, UserResponse{UserID: m.UserID, Nickname: m.Nickname, AvatarURL: m.ProfileImageURL})
	}
	c.JSON(http.StatusOK, JoinResponse{
		ChatID:  res.ChatRoom.ChatID,
		LinkID:  res.OpenLink.LinkID,
		Name:    res.OpenLink.Name,
		Members: members,
	})
}

func channelResponse(ch loco.ChannelData) ChannelResponse {
	return ChannelResponse{
		ChatID:      ch.ChatID,
		Kind:        ch.Kind.String(),
		Type:        ch.Type,
		Title:       ch.Title,
		MemberCount: ch.MemberCount,
		LastLogID:   ch.LastLogID,
		LinkID:      ch.LinkID,
	}
}

func userResponse(ident session.Identity) UserResponse {
	return UserResponse{
		UserID:    ident.UserID,
		Nickname:  ident.Nickname,
		AvatarURL: ident.AvatarURL,
	}
}
