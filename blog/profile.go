package blog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"blogicum/common"
	"blogicum/forms"
	"blogicum/pages"
	"blogicum/repository"
	"blogicum/templates"
)

const duplicateUsername = "A user with that username already exists."

func (b *BlogModule) editProfilePage(c *gin.Context) {
	user := common.CurrentUser(c)
	templates.Render(c, http.StatusOK, "user.html", gin.H{
		"title":  "Edit profile",
		"form":   forms.ProfileFormFrom(user),
		"errors": forms.Errors{},
	})
}

// editProfile changes the requester's own record and nothing else.
func (b *BlogModule) editProfile(c *gin.Context) {
	user := common.CurrentUser(c)
	ctx := c.Request.Context()

	var form forms.ProfileForm
	errs := forms.Bind(c, &form)
	if errs == nil {
		errs = forms.Errors{}
	}
	if _, exists := errs["username"]; !exists {
		taken, err := b.users.UsernameTaken(ctx, form.Username, user.ID)
		if err != nil {
			pages.ServerError(c, err)
			return
		}
		if taken {
			errs.Add("username", duplicateUsername)
		}
	}
	if errs.Any() {
		b.renderProfileForm(c, form, errs)
		return
	}

	updated := *user
	form.Apply(&updated)
	if err := b.users.UpdateProfile(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			errs.Add("username", duplicateUsername)
			b.renderProfileForm(c, form, errs)
			return
		}
		pages.ServerError(c, err)
		return
	}

	if updated.Username != user.Username {
		log.Info().Str("from", user.Username).Str("to", updated.Username).Msg("username changed")
	}
	c.Redirect(http.StatusFound, updated.ProfileURL())
}

func (b *BlogModule) renderProfileForm(c *gin.Context, form forms.ProfileForm, errs forms.Errors) {
	templates.Render(c, http.StatusBadRequest, "user.html", gin.H{
		"title":  "Edit profile",
		"form":   form,
		"errors": errs,
	})
}
