// Package repository holds the query-assembly layer and one repository per
// entity. Handlers receive a *Repositories instead of a *gorm.DB.
package repository

import "gorm.io/gorm"

type Repositories struct {
	Users      UserRepository
	Locations  LocationRepository
	Categories CategoryRepository
	Posts      PostRepository
	Comments   CommentRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(db),
		Locations:  NewLocationRepository(db),
		Categories: NewCategoryRepository(db),
		Posts:      NewPostRepository(db),
		Comments:   NewCommentRepository(db),
	}
}
