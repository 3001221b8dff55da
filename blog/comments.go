package blog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blogicum/common"
	"blogicum/forms"
	"blogicum/models"
	"blogicum/pages"
	"blogicum/templates"
)

func (b *BlogModule) addComment(c *gin.Context) {
	post, ok := b.loadVisiblePost(c)
	if !ok {
		return
	}
	user := common.CurrentUser(c)

	var form forms.CommentForm
	if errs := forms.Bind(c, &form); errs.Any() {
		b.renderDetail(c, http.StatusBadRequest, post, form, errs)
		return
	}

	comment := &models.Comment{AuthorID: user.ID, PostID: post.ID}
	form.Apply(comment)
	if err := b.comments.Create(c.Request.Context(), comment); err != nil {
		pages.ServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, post.URL())
}

// loadOwnComment resolves :cid. Anybody but the author is sent back to the
// comment's post.
func (b *BlogModule) loadOwnComment(c *gin.Context) (*models.Comment, bool) {
	if _, ok := paramID(c, "id"); !ok {
		pages.NotFound(c)
		return nil, false
	}
	id, ok := paramID(c, "cid")
	if !ok {
		pages.NotFound(c)
		return nil, false
	}

	comment, err := b.comments.Get(c.Request.Context(), id)
	if err != nil {
		pages.Fail(c, err)
		return nil, false
	}
	if !comment.OwnedBy(common.CurrentUser(c)) {
		c.Redirect(http.StatusFound, comment.PostURL())
		return nil, false
	}
	return comment, true
}

func (b *BlogModule) editCommentPage(c *gin.Context) {
	comment, ok := b.loadOwnComment(c)
	if !ok {
		return
	}
	templates.Render(c, http.StatusOK, "comment.html", gin.H{
		"title":   "Edit comment",
		"comment": comment,
		"form":    forms.CommentForm{Text: comment.Text},
		"errors":  forms.Errors{},
	})
}

func (b *BlogModule) editComment(c *gin.Context) {
	comment, ok := b.loadOwnComment(c)
	if !ok {
		return
	}

	var form forms.CommentForm
	if errs := forms.Bind(c, &form); errs.Any() {
		templates.Render(c, http.StatusBadRequest, "comment.html", gin.H{
			"title":   "Edit comment",
			"comment": comment,
			"form":    form,
			"errors":  errs,
		})
		return
	}

	form.Apply(comment)
	if err := b.comments.Update(c.Request.Context(), comment); err != nil {
		pages.ServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, comment.PostURL())
}

func (b *BlogModule) deleteCommentPage(c *gin.Context) {
	comment, ok := b.loadOwnComment(c)
	if !ok {
		return
	}
	templates.Render(c, http.StatusOK, "comment.html", gin.H{
		"title":    "Delete comment",
		"comment":  comment,
		"deleting": true,
	})
}

func (b *BlogModule) deleteComment(c *gin.Context) {
	comment, ok := b.loadOwnComment(c)
	if !ok {
		return
	}
	if err := b.comments.Delete(c.Request.Context(), comment); err != nil {
		pages.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, comment.PostURL())
}
