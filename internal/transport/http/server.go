package http

import (
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appsvc "gopherblog/internal/app"
	"gopherblog/internal/config"
	"gopherblog/internal/media"
	"gopherblog/internal/repository"
	"gopherblog/internal/session"
	"gopherblog/internal/transport/http/handler"
	"gopherblog/internal/transport/http/middleware"
	"gopherblog/internal/transport/http/view"
)

// Deps carries everything the router needs; tests assemble it with
// in-memory stand-ins.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     *redisv9.Client
	MQ        *amqp.Connection
	Mail      appsvc.MailEnqueuer
	StartedAt time.Time
}

func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.LoadHTMLGlob(cfg.App.TemplatesGlob)
	router.Static("/static", cfg.App.StaticDir)

	userRepo := repository.NewUserRepository(d.DB)
	postRepo := repository.NewPostRepository(d.DB)
	mediaStore := media.NewStore(cfg.Media.Dir, cfg.Media.DefaultImage, cfg.Media.ThumbSize)

	sessionTTL := time.Duration(cfg.Auth.SessionTTLMinute) * time.Minute
	sessions := session.NewStore(d.Redis, sessionTTL)
	cookieMaxAge := int(sessionTTL.Seconds())

	authService := appsvc.NewAuthService(userRepo)
	accountService := appsvc.NewAccountService(userRepo, mediaStore)
	postService := appsvc.NewPostService(postRepo, userRepo, cfg.Blog.PageSize)
	resetService := appsvc.NewResetService(
		userRepo,
		d.Mail,
		cfg.Auth.SecretKey,
		time.Duration(cfg.Auth.ResetExpireMinute)*time.Minute,
		cfg.App.BaseURL,
	)

	renderer := view.NewRenderer(sessions, cfg.Blog.Title, cookieMaxAge)
	authHandler := handler.NewAuthHandler(authService, sessions, renderer, cookieMaxAge)
	accountHandler := handler.NewAccountHandler(accountService, renderer, cfg.Media.MaxUploadMB)
	postHandler := handler.NewPostHandler(postService, renderer)
	resetHandler := handler.NewResetHandler(resetService, renderer)
	healthHandler := handler.NewHealthHandler(cfg.App.Name, cfg.App.Env, d.DB, d.Redis, d.MQ, d.StartedAt)

	router.Use(middleware.LoadSession(sessions, userRepo))

	router.GET("/", postHandler.Home)
	router.GET("/healthz", healthHandler.Check)

	router.GET("/register", authHandler.ShowRegister)
	router.POST("/register", authHandler.Register)
	router.GET("/login", authHandler.ShowLogin)
	router.POST("/login", authHandler.Login)
	router.GET("/logout", authHandler.Logout)

	account := router.Group("/account", middleware.RequireLogin())
	account.GET("", accountHandler.ShowAccount)
	account.POST("", accountHandler.UpdateAccount)

	// /post/new shares the :id routes; see PostHandler.Show.
	post := router.Group("/post")
	post.GET("/:id", postHandler.Show)
	post.POST("/:id", postHandler.Create)
	post.GET("/:id/update", postHandler.ShowUpdate)
	post.POST("/:id/update", postHandler.Update)
	post.POST("/:id/delete", postHandler.Delete)

	router.GET("/user/:username", postHandler.UserPosts)

	router.GET("/reset_password", resetHandler.ShowRequest)
	router.POST("/reset_password", resetHandler.Request)
	router.GET("/reset_password/:token", resetHandler.ShowReset)
	router.POST("/reset_password/:token", resetHandler.Reset)

	router.NoRoute(func(c *gin.Context) {
		renderer.NotFound(c)
	})

	return router
}
