package models

import (
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	FirstName    string    `gorm:"size:150" json:"first_name"`
	LastName     string    `gorm:"size:150" json:"last_name"`
	Email        string    `gorm:"size:254" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsStaff      bool      `gorm:"not null" json:"is_staff"`
	DateJoined   time.Time `gorm:"autoCreateTime" json:"date_joined"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) ProfileURL() string {
	return "/profile/" + u.Username + "/"
}

func (u User) String() string {
	return u.Username
}

type Location struct {
	ID uint `gorm:"primaryKey" json:"id"`
	PublishModel
	Name string `gorm:"size:256;not null" json:"name"`
}

func (l Location) String() string {
	return truncate(l.Name)
}

type Category struct {
	ID uint `gorm:"primaryKey" json:"id"`
	PublishModel
	Title       string `gorm:"size:256;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	Slug        string `gorm:"size:64;not null;uniqueIndex" json:"slug"`
}

func (c Category) String() string {
	return truncate(c.Title)
}

func (c Category) URL() string {
	return "/category/" + c.Slug + "/"
}

type Post struct {
	ID uint `gorm:"primaryKey" json:"id"`
	PublishModel
	Title   string    `gorm:"size:256;not null" json:"title"`
	Text    string    `gorm:"type:text;not null" json:"text"`
	PubDate time.Time `gorm:"not null;index" json:"pub_date"` // a future value schedules the post
	Image   string    `json:"image"`                          // path relative to the media root

	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	Author     User      `gorm:"constraint:OnDelete:CASCADE" json:"author"`
	LocationID *uint     `gorm:"index" json:"location_id"`
	Location   *Location `gorm:"constraint:OnDelete:SET NULL" json:"location,omitempty"`
	CategoryID *uint     `gorm:"index" json:"category_id"`
	Category   *Category `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Comments   []Comment `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	CommentCount int64 `gorm:"-" json:"comment_count"`
}

// Visible reports whether non-owners may see the post at time now.
func (p Post) Visible(now time.Time) bool {
	return p.IsPublished &&
		p.Category != nil && p.Category.IsPublished &&
		!p.PubDate.After(now)
}

func (p Post) OwnedBy(u *User) bool {
	return u != nil && u.ID == p.AuthorID
}

func (p Post) URL() string {
	return fmt.Sprintf("/posts/%d/", p.ID)
}

func (p Post) String() string {
	return truncate(p.Title)
}

type Comment struct {
	ID uint `gorm:"primaryKey" json:"id"`
	BaseModel
	Text string `gorm:"type:text;not null" json:"text"`

	AuthorID uint `gorm:"not null;index" json:"author_id"`
	Author   User `gorm:"constraint:OnDelete:CASCADE" json:"author"`
	PostID   uint `gorm:"not null;index" json:"post_id"`
}

func (c Comment) PostURL() string {
	return fmt.Sprintf("/posts/%d/", c.PostID)
}

func (c Comment) OwnedBy(u *User) bool {
	return u != nil && u.ID == c.AuthorID
}

func (c Comment) String() string {
	return truncate(c.Text)
}
