// Package backoffice is the staff console for categories, locations,
// publish flags and accounts.
package backoffice

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"blogicum/auth"
	"blogicum/common"
	"blogicum/forms"
	"blogicum/media"
	"blogicum/models"
	"blogicum/pages"
	"blogicum/repository"
	"blogicum/templates"
)

const indexURL = "/backoffice/"

type BackofficeModule struct {
	repos *repository.Repositories
	media *media.Storage
}

func NewBackofficeModule(repos *repository.Repositories, storage *media.Storage) *BackofficeModule {
	return &BackofficeModule{repos: repos, media: storage}
}

func (b *BackofficeModule) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/backoffice")
	group.Use(auth.RequireStaff)
	{
		group.GET("/", b.index)

		group.POST("/categories/", b.createCategory)
		group.POST("/categories/:id/toggle/", b.toggleCategory)
		group.POST("/categories/:id/delete/", b.deleteCategory)

		group.POST("/locations/", b.createLocation)
		group.POST("/locations/:id/toggle/", b.toggleLocation)
		group.POST("/locations/:id/delete/", b.deleteLocation)

		group.POST("/posts/:id/toggle/", b.togglePost)
		group.POST("/posts/:id/category/", b.setPostCategory)
		group.POST("/users/:id/delete/", b.deleteUser)
	}
}

func (b *BackofficeModule) index(c *gin.Context) {
	b.render(c, http.StatusOK, forms.CategoryForm{IsPublished: true}, forms.LocationForm{IsPublished: true}, forms.Errors{})
}

func (b *BackofficeModule) render(c *gin.Context, status int, categoryForm forms.CategoryForm, locationForm forms.LocationForm, errs forms.Errors) {
	ctx := c.Request.Context()

	number := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			pages.NotFound(c)
			return
		}
		number = n
	}

	// Post listing filters: ?q= searches titles, ?category= narrows to one category.
	search := strings.TrimSpace(c.Query("q"))
	query := repository.AllPosts().TitleContains(search)
	var categoryFilter uint
	if raw := c.Query("category"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			pages.NotFound(c)
			return
		}
		categoryFilter = uint(id)
		query = query.InCategory(categoryFilter)
	}

	categories, err := b.repos.Categories.List(ctx)
	if err != nil {
		pages.ServerError(c, err)
		return
	}
	locations, err := b.repos.Locations.List(ctx)
	if err != nil {
		pages.ServerError(c, err)
		return
	}
	users, err := b.repos.Users.List(ctx)
	if err != nil {
		pages.ServerError(c, err)
		return
	}
	postCount, err := b.repos.Posts.Count(ctx)
	if err != nil {
		pages.ServerError(c, err)
		return
	}
	page, err := b.repos.Posts.List(ctx, query, number)
	if err != nil {
		pages.Fail(c, err)
		return
	}

	templates.Render(c, status, "backoffice.html", gin.H{
		"title":               "Backoffice",
		"categories":          categories,
		"locations":           locations,
		"users":               users,
		"postCount":           postCount,
		"publishedCategories": lo.CountBy(categories, func(cat models.Category) bool { return cat.IsPublished }),
		"publishedLocations":  lo.CountBy(locations, func(l models.Location) bool { return l.IsPublished }),
		"page":                page,
		"q":                   search,
		"categoryFilter":      categoryFilter,
		"categoryForm":        categoryForm,
		"locationForm":        locationForm,
		"errors":              errs,
	})
}

func (b *BackofficeModule) createCategory(c *gin.Context) {
	var form forms.CategoryForm
	if errs := forms.Bind(c, &form); errs.Any() {
		b.render(c, http.StatusBadRequest, form, forms.LocationForm{IsPublished: true}, errs)
		return
	}

	category := form.Category()
	if err := b.repos.Categories.Create(c.Request.Context(), category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			errs := forms.Errors{}
			errs.Add("slug", "Category with this slug already exists.")
			b.render(c, http.StatusBadRequest, form, forms.LocationForm{IsPublished: true}, errs)
			return
		}
		pages.ServerError(c, err)
		return
	}

	log.Info().Str("slug", category.Slug).Str("by", common.CurrentUser(c).Username).Msg("category created")
	c.Redirect(http.StatusFound, indexURL)
}

func (b *BackofficeModule) toggleCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	category, err := b.repos.Categories.GetByID(ctx, id)
	if err != nil {
		pages.Fail(c, err)
		return
	}
	if err := b.repos.Categories.SetPublished(ctx, id, !category.IsPublished); err != nil {
		pages.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, indexURL)
}

// deleteCategory keeps the posts; they lose their category.
func (b *BackofficeModule) deleteCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := b.repos.Categories.Delete(c.Request.Context(), id); err != nil {
		pages.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, indexURL)
}

func (b *BackofficeModule) createLocation(c *gin.Context) {
	var form forms.LocationForm
	if errs := forms.Bind(c, &form); errs.Any() {
		b.render(c, http.StatusBadRequest, forms.CategoryForm{IsPublished: true}, form, errs)
		return
	}
	if err := b.repos.Locations.Create(c.Request.Context(), form.Location()); err != nil {
		pages.ServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, indexURL)
}

func (b *BackofficeModule) toggleLocation(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	location, err := b.repos.Locations.GetByID(ctx, id)
	if err != nil {
		pages.Fail(c, err)
		return
	}
	if err := b.repos.Locations.SetPublished(ctx, id, !location.IsPublished); err != nil {
		pages.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, indexURL)
}

func (b *BackofficeModule) deleteLocation(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := b.repos.Locations.Delete(c.Request.Context(), id); err != nil {
		pages.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, indexURL)
}

func (b *BackofficeModule) togglePost(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	post, err := b.repos.Posts.Get(ctx, id)
	if err != nil {
		pages.Fail(c, err)
		return
	}
	if err := b.repos.Posts.SetPublished(ctx, id, !post.IsPublished); err != nil {
		pages.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, indexURL)
}

// setPostCategory moves a post to another category. An empty value leaves
// the post without one.
func (b *BackofficeModule) setPostCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var categoryID *uint
	if raw := strings.TrimSpace(c.PostForm("category")); raw != "" {
		cid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			pages.NotFound(c)
			return
		}
		category, err := b.repos.Categories.GetByID(ctx, uint(cid))
		if err != nil {
			pages.Fail(c, err)
			return
		}
		categoryID = &category.ID
	}

	if err := b.repos.Posts.SetCategory(ctx, id, categoryID); err != nil {
		pages.Fail(c, err)
		return
	}
	log.Info().Uint("post_id", id).Str("by", common.CurrentUser(c).Username).Msg("post category changed")
	c.Redirect(http.StatusFound, indexURL)
}

// deleteUser removes the account with its posts and comments. Staff cannot
// delete themselves.
func (b *BackofficeModule) deleteUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	staff := common.CurrentUser(c)
	if staff.ID == id {
		pages.Forbidden(c)
		return
	}

	ctx := c.Request.Context()
	images, err := b.repos.Users.Delete(ctx, id)
	if err != nil {
		pages.Fail(c, err)
		return
	}
	for _, image := range lo.Uniq(images) {
		inUse, err := b.repos.Posts.ImageInUse(ctx, image, 0)
		if err != nil || inUse {
			continue
		}
		if err := b.media.Remove(image); err != nil {
			log.Warn().Err(err).Str("image", image).Msg("failed to remove image")
		}
	}

	log.Info().Uint("user_id", id).Str("by", staff.Username).Msg("user deleted")
	c.Redirect(http.StatusFound, indexURL)
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		pages.NotFound(c)
		return 0, false
	}
	return uint(id), true
}
