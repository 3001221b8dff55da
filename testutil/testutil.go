// Package testutil builds in-memory stores and fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"blogicum/common"
	"blogicum/database"
	"blogicum/models"
)

// SetupTestDB returns a migrated in-memory database private to t.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := common.OpenTestDb()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func CreateCategory(t *testing.T, db *gorm.DB, slug string, published bool) *models.Category {
	t.Helper()

	category := &models.Category{
		PublishModel: models.PublishModel{IsPublished: published},
		Title:        "Category " + slug,
		Description:  "About " + slug,
		Slug:         slug,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category %s: %v", slug, err)
	}
	return category
}

func CreateLocation(t *testing.T, db *gorm.DB, name string, published bool) *models.Location {
	t.Helper()

	location := &models.Location{
		PublishModel: models.PublishModel{IsPublished: published},
		Name:         name,
	}
	if err := db.Create(location).Error; err != nil {
		t.Fatalf("create location %s: %v", name, err)
	}
	return location
}

// PostOption adjusts a fixture post before it is stored.
type PostOption func(*models.Post)

func Unpublished() PostOption {
	return func(p *models.Post) { p.IsPublished = false }
}

func PubDate(at time.Time) PostOption {
	return func(p *models.Post) { p.PubDate = at.UTC() }
}

func WithLocation(l *models.Location) PostOption {
	return func(p *models.Post) { p.LocationID = &l.ID }
}

func Titled(title string) PostOption {
	return func(p *models.Post) { p.Title = title }
}

func WithoutCategory() PostOption {
	return func(p *models.Post) { p.CategoryID = nil }
}

var postSeq int

// CreatePost stores a published post dated an hour ago unless opts say otherwise.
func CreatePost(t *testing.T, db *gorm.DB, author *models.User, category *models.Category, opts ...PostOption) *models.Post {
	t.Helper()

	postSeq++
	post := &models.Post{
		PublishModel: models.PublishModel{IsPublished: true},
		Title:        fmt.Sprintf("Post %d", postSeq),
		Text:         "Some text",
		PubDate:      time.Now().UTC().Add(-time.Hour),
		AuthorID:     author.ID,
	}
	if category != nil {
		post.CategoryID = &category.ID
	}
	for _, opt := range opts {
		opt(post)
	}
	if err := db.Omit("Author", "Location", "Category").Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func CreateComment(t *testing.T, db *gorm.DB, author *models.User, post *models.Post, text string) *models.Comment {
	t.Helper()

	comment := &models.Comment{Text: text, AuthorID: author.ID, PostID: post.ID}
	if err := db.Omit("Author").Create(comment).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return comment
}
