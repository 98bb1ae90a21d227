package http

import (
	"context"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/kakaosession/internal/auth"
	"github.com/vovakirdan/kakaosession/internal/config"
	"github.com/vovakirdan/kakaosession/internal/loco"
	"github.com/vovakirdan/kakaosession/internal/session"
)

// Facade is the part of a session the control API drives.
// *session.Session implements it.
type Facade interface {
	Channels() map[int64]loco.ChannelData
	Channel(chatID int64) (loco.ChannelData, bool)
	KnownUser(userID int64) (session.Identity, bool)
	UserID() int64
	JoinChannel(ctx context.Context, params session.JoinParams) (*loco.JoinLinkResponse, error)
	Send(ctx context.Context, chatID int64, chat loco.Chat, noSeen bool) (*loco.Chatlog, error)
	Delete(ctx context.Context, req loco.DeleteMsgRequest) error
	Hide(ctx context.Context, req loco.HideMsgRequest) error
	Kick(ctx context.Context, req loco.KickMemberRequest) error
	ChatLogs(ctx context.Context, chatID, since int64) ([]loco.Chatlog, error)
}

// NewServer builds the control API server.
func NewServer(facade Facade, jwtConfig *auth.JWTConfig, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.ControlAddr,
		Handler:           NewRouter(facade, jwtConfig, cfg.ControlAllowedOrigins, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter builds the control API handler.
func NewRouter(facade Facade, jwtConfig *auth.JWTConfig, allowedOrigins []string, logger *zerolog.Logger) stdhttp.Handler {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	channels := NewChannelHandlers(facade, logger)
	messages := NewMessageHandlers(facade, logger)

	api := router.Group("/api")
	api.Use(AuthMiddleware(jwtConfig, logger))
	{
		api.GET("/me", channels.Me)
		api.GET("/channels", channels.ListChannels)
		api.GET("/users/:id", channels.GetUser)
		api.POST("/join", channels.Join)

		api.POST("/channels/:id/messages", messages.Send)
		api.GET("/channels/:id/logs", messages.Logs)
		api.DELETE("/channels/:id/messages/:log", messages.Delete)
		api.POST("/channels/:id/messages/:log/hide", messages.Hide)
		api.POST("/channels/:id/kick", messages.Kick)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return c.Handler(router)
}

func healthHandler(c *gin.Context) {
	c.JSON(stdhttp.StatusOK, gin.H{"status": "ok"})
}
