package forms

import (
	"strings"

	"blogicum/models"
)

type ProfileForm struct {
	Username  string `form:"username" binding:"required,max=150,username"`
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Email     string `form:"email" binding:"omitempty,email,max=254"`
}

func ProfileFormFrom(u *models.User) ProfileForm {
	return ProfileForm{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

func (f ProfileForm) Apply(u *models.User) {
	u.Username = f.Username
	u.FirstName = f.FirstName
	u.LastName = f.LastName
	u.Email = f.Email
}

type RegistrationForm struct {
	Username  string `form:"username" binding:"required,max=150,username"`
	Email     string `form:"email" binding:"omitempty,email,max=254"`
	Password  string `form:"password1" binding:"required,min=8"`
	Password2 string `form:"password2" binding:"required,eqfield=Password"`
}

type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type CategoryForm struct {
	Title       string `form:"title" binding:"required,notblank,max=256"`
	Description string `form:"description" binding:"required,notblank"`
	Slug        string `form:"slug" binding:"required,max=64,slug"`
	IsPublished bool   `form:"is_published"`
}

func (f CategoryForm) Category() *models.Category {
	return &models.Category{
		PublishModel: models.PublishModel{IsPublished: f.IsPublished},
		Title:        strings.TrimSpace(f.Title),
		Description:  strings.TrimSpace(f.Description),
		Slug:         f.Slug,
	}
}

type LocationForm struct {
	Name        string `form:"name" binding:"required,notblank,max=256"`
	IsPublished bool   `form:"is_published"`
}

func (f LocationForm) Location() *models.Location {
	return &models.Location{
		PublishModel: models.PublishModel{IsPublished: f.IsPublished},
		Name:         strings.TrimSpace(f.Name),
	}
}
