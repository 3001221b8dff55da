// Package blog serves the public site: listings, post pages, comments and
// the author's own profile.
package blog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"blogicum/auth"
	"blogicum/common"
	"blogicum/media"
	"blogicum/pages"
	"blogicum/repository"
	"blogicum/templates"
)

type BlogModule struct {
	posts      repository.PostRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	locations  repository.LocationRepository
	media      *media.Storage
	now        func() time.Time
}

func NewBlogModule(repos *repository.Repositories, storage *media.Storage) *BlogModule {
	return &BlogModule{
		posts:      repos.Posts,
		comments:   repos.Comments,
		users:      repos.Users,
		categories: repos.Categories,
		locations:  repos.Locations,
		media:      storage,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (b *BlogModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/", b.index)
	router.GET("/category/:slug/", b.category)

	postGroup := router.Group("/posts")
	{
		postGroup.GET("/:id/", b.detail)

		postGroup.GET("/create/", auth.RequireAuth, b.createPage)
		postGroup.POST("/create/", auth.RequireAuth, b.createPost)
		postGroup.GET("/:id/edit/", auth.RequireAuth, b.editPage)
		postGroup.POST("/:id/edit/", auth.RequireAuth, b.editPost)
		postGroup.GET("/:id/delete/", auth.RequireAuth, b.deletePage)
		postGroup.POST("/:id/delete/", auth.RequireAuth, b.deletePost)

		postGroup.POST("/:id/comment/", auth.RequireAuth, b.addComment)
		postGroup.GET("/:id/edit_comment/:cid/", auth.RequireAuth, b.editCommentPage)
		postGroup.POST("/:id/edit_comment/:cid/", auth.RequireAuth, b.editComment)
		postGroup.GET("/:id/delete_comment/:cid/", auth.RequireAuth, b.deleteCommentPage)
		postGroup.POST("/:id/delete_comment/:cid/", auth.RequireAuth, b.deleteComment)
	}

	profileGroup := router.Group("/profile")
	{
		profileGroup.GET("/edit/", auth.RequireAuth, b.editProfilePage)
		profileGroup.POST("/edit/", auth.RequireAuth, b.editProfile)
		profileGroup.GET("/:username/", b.profile)
	}
}

func (b *BlogModule) index(c *gin.Context) {
	b.renderListing(c, "index.html", repository.PublishedPosts(b.now()), gin.H{
		"title": "Latest posts",
	})
}

func (b *BlogModule) category(c *gin.Context) {
	category, err := b.categories.GetPublishedBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		pages.Fail(c, err)
		return
	}

	q := repository.PublishedPosts(b.now()).InCategory(category.ID)
	b.renderListing(c, "category.html", q, gin.H{
		"title":    category.Title,
		"category": category,
	})
}

// profile lists every post of the owner to the owner, and only visible
// ones to everybody else.
func (b *BlogModule) profile(c *gin.Context) {
	profile, err := b.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		pages.Fail(c, err)
		return
	}

	q := repository.PublishedPosts(b.now())
	if user := common.CurrentUser(c); user != nil && user.ID == profile.ID {
		q = repository.AllPosts()
	}
	b.renderListing(c, "profile.html", q.ByAuthor(profile.ID), gin.H{
		"title":   profile.Username,
		"profile": profile,
	})
}

func (b *BlogModule) renderListing(c *gin.Context, name string, q repository.PostQuery, data gin.H) {
	number, ok := pageNumber(c)
	if !ok {
		pages.NotFound(c)
		return
	}

	page, err := b.posts.List(c.Request.Context(), q, number)
	if err != nil {
		pages.Fail(c, err)
		return
	}

	data["page"] = page
	templates.Render(c, http.StatusOK, name, data)
}

// pageNumber reads ?page=N; "last" selects the final page.
func pageNumber(c *gin.Context) (int, bool) {
	raw := c.Query("page")
	switch raw {
	case "":
		return 1, true
	case "last":
		return repository.LastPage, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
