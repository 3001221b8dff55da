// Package pages renders the error pages shared by every module.
package pages

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"blogicum/repository"
	"blogicum/templates"
)

func NotFound(c *gin.Context) {
	templates.Render(c, http.StatusNotFound, "404.html", gin.H{"title": "Page not found"})
	c.Abort()
}

func Forbidden(c *gin.Context) {
	templates.Render(c, http.StatusForbidden, "403.html", gin.H{"title": "Access denied"})
	c.Abort()
}

// ServerError logs err and renders the 500 page.
func ServerError(c *gin.Context, err error) {
	_ = c.Error(err)
	log.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("request failed")
	templates.Render(c, http.StatusInternalServerError, "500.html", gin.H{"title": "Server error"})
	c.Abort()
}

// Fail renders 404 for repository.ErrNotFound and 500 for anything else.
func Fail(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrPageOutOfRange) {
		NotFound(c)
		return
	}
	ServerError(c, err)
}

// Recovery turns a panic into the 500 page.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Msg("recovered from panic")
		templates.Render(c, http.StatusInternalServerError, "500.html", gin.H{"title": "Server error"})
		c.Abort()
	})
}

// Register wires the 404 page for unmatched routes and methods.
func Register(router *gin.Engine) {
	router.NoRoute(NotFound)
	router.NoMethod(NotFound)
}
