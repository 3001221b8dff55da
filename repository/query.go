package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"blogicum/models"
)

// PostQuery describes a post listing. It is a plain value: every stage
// returns a modified copy, so a query can be shared and extended freely.
type PostQuery struct {
	joinRelated        bool
	withCommentCount   bool
	excludeUnpublished bool
	now                time.Time
	authorID           uint
	categoryID         uint
	titleContains      string
}

// AllPosts is every post with its relations and comment count, newest first.
func AllPosts() PostQuery {
	return PostQuery{}.JoinRelated().WithCommentCount()
}

// PublishedPosts is AllPosts restricted to what non-owners may see at now.
func PublishedPosts(now time.Time) PostQuery {
	return AllPosts().ExcludeUnpublished(now)
}

// JoinRelated loads author, location and category alongside each post.
func (q PostQuery) JoinRelated() PostQuery {
	q.joinRelated = true
	return q
}

// WithCommentCount fills Post.CommentCount.
func (q PostQuery) WithCommentCount() PostQuery {
	q.withCommentCount = true
	return q
}

// ExcludeUnpublished drops unpublished posts, posts whose category is
// missing or unpublished and posts scheduled after now.
func (q PostQuery) ExcludeUnpublished(now time.Time) PostQuery {
	q.excludeUnpublished = true
	q.now = now.UTC()
	return q
}

func (q PostQuery) ByAuthor(id uint) PostQuery {
	q.authorID = id
	return q
}

func (q PostQuery) InCategory(id uint) PostQuery {
	q.categoryID = id
	return q
}

// TitleContains keeps posts whose title contains s, ignoring case. An empty
// s matches everything.
func (q PostQuery) TitleContains(s string) PostQuery {
	q.titleContains = strings.TrimSpace(s)
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// filter applies the row restrictions only; it is safe to Count on.
func (q PostQuery) filter(tx *gorm.DB) *gorm.DB {
	tx = tx.Model(&models.Post{})
	if q.excludeUnpublished {
		tx = tx.Joins("JOIN categories ON categories.id = posts.category_id").
			Where("posts.is_published = ? AND categories.is_published = ? AND posts.pub_date <= ?",
				true, true, q.now)
	}
	if q.authorID != 0 {
		tx = tx.Where("posts.author_id = ?", q.authorID)
	}
	if q.categoryID != 0 {
		tx = tx.Where("posts.category_id = ?", q.categoryID)
	}
	if q.titleContains != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(q.titleContains)) + "%"
		tx = tx.Where(`LOWER(posts.title) LIKE ? ESCAPE '\'`, pattern)
	}
	return tx
}

// Apply builds the full gorm chain for fetching rows.
func (q PostQuery) Apply(tx *gorm.DB) *gorm.DB {
	tx = q.filter(tx)
	if q.joinRelated {
		tx = tx.Preload("Author").Preload("Location").Preload("Category")
	}
	return tx.Order("posts.pub_date DESC").Order("posts.id DESC")
}

// attachCommentCounts loads the counts for posts with one grouped query.
func attachCommentCounts(tx *gorm.DB, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	var counts []struct {
		PostID uint
		Count  int64
	}
	if err := tx.Model(&models.Comment{}).
		Select("post_id, COUNT(id) AS count").
		Where("post_id IN ?", ids).
		Group("post_id").
		Find(&counts).Error; err != nil {
		return err
	}

	byPost := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byPost[c.PostID] = c.Count
	}
	for i := range posts {
		posts[i].CommentCount = byPost[posts[i].ID]
	}
	return nil
}
