// Package auth handles registration, login and logout, and loads the
// session user for every request.
package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"blogicum/common"
	"blogicum/config"
	"blogicum/forms"
	"blogicum/models"
	"blogicum/pages"
	"blogicum/repository"
	"blogicum/templates"
)

// SessionKey holds the authenticated user's ID in the session.
const SessionKey = "user_id"

const LoginURL = "/auth/login/"

type AuthModule struct {
	users repository.UserRepository
	cfg   *config.Config
}

func NewAuthModule(repos *repository.Repositories, cfg *config.Config) *AuthModule {
	return &AuthModule{
		users: repos.Users,
		cfg:   cfg,
	}
}

func (a *AuthModule) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/auth")
	{
		group.GET("/registration/", a.registrationPage)
		group.POST("/registration/", a.registrationPost)
		group.GET("/login/", a.loginPage)
		group.POST("/login/", a.loginPost)
		group.GET("/logout/", a.logout)
		group.POST("/logout/", a.logout)
	}
}

// LoadUser resolves the session user and stores it under common.UserKey.
// A session pointing at a deleted user is cleared.
func (a *AuthModule) LoadUser(c *gin.Context) {
	session := sessions.Default(c)
	id, ok := sessionUserID(session.Get(SessionKey))
	if !ok {
		c.Next()
		return
	}

	user, err := a.users.GetByID(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			pages.ServerError(c, err)
			return
		}
		session.Clear()
		_ = session.Save()
		c.Next()
		return
	}

	if a.cfg.IsStaffUsername(user.Username) {
		user.IsStaff = true
	}
	c.Set(common.UserKey, user)
	c.Next()
}

// RequireAuth sends anonymous requests to the login page.
func RequireAuth(c *gin.Context) {
	if common.CurrentUser(c) == nil {
		redirectToLogin(c)
		return
	}
	c.Next()
}

// RequireStaff lets only staff through; other users get 403.
func RequireStaff(c *gin.Context) {
	user := common.CurrentUser(c)
	if user == nil {
		redirectToLogin(c)
		return
	}
	if !user.IsStaff {
		pages.Forbidden(c)
		return
	}
	c.Next()
}

func redirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, LoginURL+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	c.Abort()
}

func (a *AuthModule) registrationPage(c *gin.Context) {
	templates.Render(c, http.StatusOK, "registration.html", gin.H{
		"title":  "Sign up",
		"form":   forms.RegistrationForm{},
		"errors": forms.Errors{},
	})
}

func (a *AuthModule) registrationPost(c *gin.Context) {
	var form forms.RegistrationForm
	errs := forms.Bind(c, &form)
	if errs == nil {
		errs = forms.Errors{}
	}

	ctx := c.Request.Context()
	if _, exists := errs["username"]; !exists && form.Username != "" {
		taken, err := a.users.UsernameTaken(ctx, form.Username, 0)
		if err != nil {
			pages.ServerError(c, err)
			return
		}
		if taken {
			errs.Add("username", "A user with that username already exists.")
		}
	}

	if errs.Any() {
		a.renderRegistration(c, form, errs)
		return
	}

	hash, err := HashPassword(form.Password, a.cfg.BcryptCost)
	if err != nil {
		pages.ServerError(c, err)
		return
	}

	user := &models.User{
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: hash,
	}
	if err := a.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			errs.Add("username", "A user with that username already exists.")
			a.renderRegistration(c, form, errs)
			return
		}
		pages.ServerError(c, err)
		return
	}

	log.Info().Str("username", user.Username).Msg("user registered")
	c.Redirect(http.StatusFound, LoginURL)
}

func (a *AuthModule) renderRegistration(c *gin.Context, form forms.RegistrationForm, errs forms.Errors) {
	form.Password, form.Password2 = "", ""
	templates.Render(c, http.StatusBadRequest, "registration.html", gin.H{
		"title":  "Sign up",
		"form":   form,
		"errors": errs,
	})
}

func (a *AuthModule) loginPage(c *gin.Context) {
	templates.Render(c, http.StatusOK, "login.html", gin.H{
		"title":  "Log in",
		"form":   forms.LoginForm{},
		"errors": forms.Errors{},
		"next":   c.Query("next"),
	})
}

func (a *AuthModule) loginPost(c *gin.Context) {
	next := c.PostForm("next")
	if next == "" {
		next = c.Query("next")
	}

	var form forms.LoginForm
	if errs := forms.Bind(c, &form); errs != nil {
		a.renderLogin(c, form, errs, next)
		return
	}

	user, err := a.users.GetByUsername(c.Request.Context(), form.Username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		pages.ServerError(c, err)
		return
	}
	if user == nil || !CheckPasswordHash(form.Password, user.PasswordHash) {
		errs := forms.Errors{}
		errs.Add(forms.NonFieldErrors, "Please enter a correct username and password.")
		a.renderLogin(c, form, errs, next)
		return
	}

	session := sessions.Default(c)
	session.Set(SessionKey, user.ID)
	if err := session.Save(); err != nil {
		pages.ServerError(c, err)
		return
	}

	if isLocalURL(next) {
		c.Redirect(http.StatusFound, next)
		return
	}
	c.Redirect(http.StatusFound, user.ProfileURL())
}

func (a *AuthModule) renderLogin(c *gin.Context, form forms.LoginForm, errs forms.Errors, next string) {
	form.Password = ""
	templates.Render(c, http.StatusBadRequest, "login.html", gin.H{
		"title":  "Log in",
		"form":   form,
		"errors": errs,
		"next":   next,
	})
}

func (a *AuthModule) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = session.Save()

	c.Set(common.UserKey, (*models.User)(nil))
	templates.Render(c, http.StatusOK, "logged_out.html", gin.H{"title": "Logged out"})
}

func HashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// isLocalURL accepts only same-site absolute paths.
func isLocalURL(next string) bool {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return false
	}
	u, err := url.Parse(next)
	return err == nil && u.Host == "" && u.Scheme == ""
}

func sessionUserID(v any) (uint, bool) {
	switch id := v.(type) {
	case uint:
		return id, id > 0
	case int:
		return uint(id), id > 0
	case int64:
		return uint(id), id > 0
	case uint64:
		return uint(id), id > 0
	}
	return 0, false
}
