package blog

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"blogicum/common"
	"blogicum/forms"
	"blogicum/media"
	"blogicum/models"
	"blogicum/pages"
	"blogicum/templates"
)

// loadPost resolves the :id parameter, rendering 404 on failure.
func (b *BlogModule) loadPost(c *gin.Context) (*models.Post, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		pages.NotFound(c)
		return nil, false
	}
	post, err := b.posts.Get(c.Request.Context(), id)
	if err != nil {
		pages.Fail(c, err)
		return nil, false
	}
	return post, true
}

// loadVisiblePost is loadPost plus the visibility rule: a hidden post
// exists only for its author.
func (b *BlogModule) loadVisiblePost(c *gin.Context) (*models.Post, bool) {
	post, ok := b.loadPost(c)
	if !ok {
		return nil, false
	}
	if !post.OwnedBy(common.CurrentUser(c)) && !post.Visible(b.now()) {
		pages.NotFound(c)
		return nil, false
	}
	return post, true
}

func (b *BlogModule) detail(c *gin.Context) {
	post, ok := b.loadVisiblePost(c)
	if !ok {
		return
	}
	b.renderDetail(c, http.StatusOK, post, forms.CommentForm{}, forms.Errors{})
}

func (b *BlogModule) renderDetail(c *gin.Context, status int, post *models.Post, form forms.CommentForm, errs forms.Errors) {
	comments, err := b.comments.ListForPost(c.Request.Context(), post.ID)
	if err != nil {
		pages.ServerError(c, err)
		return
	}

	templates.Render(c, status, "detail.html", gin.H{
		"title":    post.Title,
		"post":     post,
		"comments": comments,
		"form":     form,
		"errors":   errs,
		"isOwner":  post.OwnedBy(common.CurrentUser(c)),
	})
}

func (b *BlogModule) createPage(c *gin.Context) {
	b.renderPostForm(c, http.StatusOK, forms.NewPostForm(), forms.Errors{}, gin.H{"title": "New post"})
}

func (b *BlogModule) createPost(c *gin.Context) {
	user := common.CurrentUser(c)

	form, pubDate, errs := b.bindPostForm(c)
	if errs.Any() {
		b.renderPostForm(c, http.StatusBadRequest, form, errs, gin.H{"title": "New post"})
		return
	}

	post := &models.Post{AuthorID: user.ID}
	form.Apply(post, pubDate)

	image, err := b.saveUpload(c)
	if err != nil {
		if isImageError(err) {
			errs.Add("image", err.Error())
			b.renderPostForm(c, http.StatusBadRequest, form, errs, gin.H{"title": "New post"})
			return
		}
		pages.ServerError(c, err)
		return
	}
	post.Image = image

	if err := b.posts.Create(c.Request.Context(), post); err != nil {
		if image != "" {
			b.releaseImage(c, image, 0)
		}
		pages.ServerError(c, err)
		return
	}

	log.Info().Uint("post_id", post.ID).Str("author", user.Username).Msg("post created")
	c.Redirect(http.StatusFound, user.ProfileURL())
}

func (b *BlogModule) editPage(c *gin.Context) {
	post, ok := b.loadPost(c)
	if !ok {
		return
	}
	if !post.OwnedBy(common.CurrentUser(c)) {
		c.Redirect(http.StatusFound, post.URL())
		return
	}
	b.renderPostForm(c, http.StatusOK, forms.PostFormFrom(post), forms.Errors{}, gin.H{
		"title":   "Edit post",
		"editing": true,
		"post":    post,
	})
}

func (b *BlogModule) editPost(c *gin.Context) {
	post, ok := b.loadPost(c)
	if !ok {
		return
	}
	if !post.OwnedBy(common.CurrentUser(c)) {
		c.Redirect(http.StatusFound, post.URL())
		return
	}

	form, pubDate, errs := b.bindPostForm(c)
	form.Image = post.Image
	data := gin.H{"title": "Edit post", "editing": true, "post": post}
	if errs.Any() {
		b.renderPostForm(c, http.StatusBadRequest, form, errs, data)
		return
	}

	previous := post.Image
	image, err := b.saveUpload(c)
	if err != nil {
		if isImageError(err) {
			errs.Add("image", err.Error())
			b.renderPostForm(c, http.StatusBadRequest, form, errs, data)
			return
		}
		pages.ServerError(c, err)
		return
	}
	switch {
	case image != "":
		post.Image = image
	case form.ClearImage:
		post.Image = ""
	}

	form.Apply(post, pubDate)
	if err := b.posts.Update(c.Request.Context(), post); err != nil {
		if image != "" && image != previous {
			b.releaseImage(c, image, post.ID)
		}
		pages.ServerError(c, err)
		return
	}
	if previous != "" && previous != post.Image {
		b.releaseImage(c, previous, post.ID)
	}

	c.Redirect(http.StatusFound, post.URL())
}

// deletePage shows the post in the disabled form as a confirmation.
func (b *BlogModule) deletePage(c *gin.Context) {
	post, ok := b.loadPost(c)
	if !ok {
		return
	}
	if !post.OwnedBy(common.CurrentUser(c)) {
		pages.Forbidden(c)
		return
	}
	b.renderPostForm(c, http.StatusOK, forms.PostFormFrom(post), forms.Errors{}, gin.H{
		"title":    "Delete post",
		"deleting": true,
		"post":     post,
	})
}

func (b *BlogModule) deletePost(c *gin.Context) {
	post, ok := b.loadPost(c)
	if !ok {
		return
	}
	user := common.CurrentUser(c)
	if !post.OwnedBy(user) {
		pages.Forbidden(c)
		return
	}

	if err := b.posts.Delete(c.Request.Context(), post); err != nil {
		pages.Fail(c, err)
		return
	}
	if post.Image != "" {
		b.releaseImage(c, post.Image, post.ID)
	}

	log.Info().Uint("post_id", post.ID).Str("author", user.Username).Msg("post deleted")
	c.Redirect(http.StatusFound, user.ProfileURL())
}

// bindPostForm binds and validates the post form, including that the chosen
// category and location exist.
func (b *BlogModule) bindPostForm(c *gin.Context) (forms.PostForm, time.Time, forms.Errors) {
	var form forms.PostForm
	pubDate, errs := form.Clean(forms.Bind(c, &form))

	ctx := c.Request.Context()
	if form.CategoryID != 0 {
		if _, err := b.categories.GetByID(ctx, form.CategoryID); err != nil {
			errs.Add("category", "Select a valid choice.")
		}
	}
	if form.LocationID != 0 {
		if _, err := b.locations.GetByID(ctx, form.LocationID); err != nil {
			errs.Add("location", "Select a valid choice.")
		}
	}
	return form, pubDate, errs
}

func (b *BlogModule) renderPostForm(c *gin.Context, status int, form forms.PostForm, errs forms.Errors, data gin.H) {
	ctx := c.Request.Context()
	categories, err := b.categories.List(ctx)
	if err != nil {
		pages.ServerError(c, err)
		return
	}
	locations, err := b.locations.List(ctx)
	if err != nil {
		pages.ServerError(c, err)
		return
	}

	data["form"] = form
	data["errors"] = errs
	data["categories"] = categories
	data["locations"] = locations
	templates.Render(c, status, "create.html", data)
}

// saveUpload stores the "image" file if one was sent and returns its path.
func (b *BlogModule) saveUpload(c *gin.Context) (string, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if fh.Filename == "" && fh.Size == 0 {
		return "", nil
	}
	return b.media.SavePostImage(fh)
}

// releaseImage removes rel unless another post still uses the same file.
func (b *BlogModule) releaseImage(c *gin.Context, rel string, exceptID uint) {
	inUse, err := b.posts.ImageInUse(c.Request.Context(), rel, exceptID)
	if err != nil || inUse {
		return
	}
	if err := b.media.Remove(rel); err != nil {
		log.Warn().Err(err).Str("image", rel).Msg("failed to remove image")
	}
}

func isImageError(err error) bool {
	return errors.Is(err, media.ErrNotAnImage) || errors.Is(err, media.ErrImageTooLarge)
}
