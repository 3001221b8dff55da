package main

import (
	"os"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"blogicum/auth"
	"blogicum/backoffice"
	"blogicum/blog"
	"blogicum/common"
	"blogicum/config"
	"blogicum/database"
	"blogicum/forms"
	"blogicum/media"
	"blogicum/pages"
	"blogicum/repository"
	"blogicum/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	common.SetupLogger(cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	db, err := common.ConnectDb(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	router := gin.New()
	router.Use(pages.Recovery(), common.RequestLogger(), gzip.Gzip(gzip.DefaultCompression))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
	})
	router.Use(sessions.Sessions("blogicum-session", store))

	forms.RegisterValidators()
	if err := templates.Setup(router); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse templates")
	}

	storage := media.NewStorage(cfg.MediaRoot)
	router.Static("/media", storage.Root())
	if _, err := os.Stat(cfg.StaticRoot); err == nil {
		router.Static("/static", cfg.StaticRoot)
	}

	repos := repository.New(db)

	authModule := auth.NewAuthModule(repos, cfg)
	router.Use(authModule.LoadUser)
	authModule.RegisterRoutes(router)

	blogModule := blog.NewBlogModule(repos, storage)
	blogModule.RegisterRoutes(router)

	backofficeModule := backoffice.NewBackofficeModule(repos, storage)
	backofficeModule.RegisterRoutes(router)

	pages.Register(router)

	log.Info().Str("port", cfg.Port).Str("driver", cfg.DBDriver).Msg("Starting server")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
