package http

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"zipfit/internal/bootstrap"
	"zipfit/internal/model"
	"zipfit/internal/transport/http/handler"
	"zipfit/internal/transport/http/middleware"
)

type Handlers struct {
	Health        *handler.HealthHandler
	Auth          *handler.AuthHandler
	Announcements *handler.AnnouncementHandler
	Search        *handler.SearchHandler
	Chat          *handler.ChatHandler
}

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)

	deps := []handler.Dependency{{Name: app.Config.Database.Driver, Ping: app.Ping}}
	deps = append(deps,
		handler.Dependency{Name: "redis", Ping: func(ctx context.Context) error {
			if app.Redis == nil {
				return errors.New("not configured")
			}
			return app.Redis.Ping(ctx).Err()
		}},
		handler.Dependency{Name: "rabbitmq", Ping: func(ctx context.Context) error {
			if app.MQConn == nil || app.MQConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}},
	)

	s := app.Services
	return NewEngine(Handlers{
		Health:        handler.NewHealthHandler(app.Config.App.Name, app.Config.App.Env, app.StartedAt, deps...),
		Auth:          handler.NewAuthHandler(s.Auth),
		Announcements: handler.NewAnnouncementHandler(s.Announcements, s.Ingest, s.Embeddings, app.Config.Upload.MaxBytes),
		Search:        handler.NewSearchHandler(s.Search),
		Chat:          handler.NewChatHandler(s.Chat),
	}, app.Config.Auth.JWTSecret)
}

// NewEngine registers every route on a fresh engine.
func NewEngine(h Handlers, jwtSecret string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.MaxMultipartMemory = 32 << 20

	router.GET("/healthz", h.Health.Check)

	v1 := router.Group("/api/v1")
	v1.GET("/healthz", h.Health.Check)

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.GET("/me", middleware.AuthJWT(jwtSecret), h.Auth.Me)

	anns := v1.Group("/announcements")
	anns.GET("", h.Announcements.List)
	anns.GET("/summary", h.Announcements.Summary)
	anns.GET("/:id", h.Announcements.Get)

	operators := anns.Group("")
	operators.Use(middleware.AuthJWT(jwtSecret))
	operators.POST("", h.Announcements.Upsert)
	operators.POST("/:id/files", h.Announcements.UploadFile)
	operators.POST("/:id/reembed", h.Announcements.Reembed)
	operators.DELETE("/:id/chunks", middleware.RequireRole(model.RoleAdmin), h.Announcements.DeleteChunks)

	v1.POST("/search", h.Search.Search)

	chats := v1.Group("/chats")
	chats.POST("", h.Chat.CreateChat)
	chats.GET("", h.Chat.ListChats)
	chats.GET("/:session_key/messages", h.Chat.GetHistory)
	chats.POST("/:session_key/messages", h.Chat.Ask)

	return router
}
