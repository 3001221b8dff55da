package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"blogicum/models"
)

type PostRepository interface {
	Get(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, q PostQuery, page int) (*PostPage, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, post *models.Post) error
	SetPublished(ctx context.Context, id uint, published bool) error
	// SetCategory moves a post to categoryID; nil leaves it without one.
	SetCategory(ctx context.Context, id uint, categoryID *uint) error
	Count(ctx context.Context) (int64, error)
	// ImageInUse reports whether a post other than exceptID references image.
	ImageInUse(ctx context.Context, image string, exceptID uint) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

// Get loads one post with its relations regardless of visibility.
func (r *postRepository) Get(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := AllPosts().Apply(r.db.WithContext(ctx)).Where("posts.id = ?", id).First(&post).Error
	if err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, q PostQuery, page int) (*PostPage, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := q.filter(db).Count(&total).Error; err != nil {
		return nil, err
	}

	number, numPages, err := resolvePage(page, total, PostsPerPage)
	if err != nil {
		return nil, err
	}

	var posts []models.Post
	if err := q.Apply(db).
		Offset((number - 1) * PostsPerPage).
		Limit(PostsPerPage).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	if q.withCommentCount {
		if err := attachCommentCounts(db, posts); err != nil {
			return nil, err
		}
	}

	return &PostPage{Posts: posts, Number: number, NumPages: numPages, Total: total}, nil
}

// Create stores the post's own columns; related rows are never upserted.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error)
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(post).Error)
}

func (r *postRepository) Delete(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, post.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *postRepository) SetPublished(ctx context.Context, id uint, published bool) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update("is_published", published)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepository) SetCategory(ctx context.Context, id uint, categoryID *uint) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update("category_id", categoryID)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&n).Error
	return n, err
}

func (r *postRepository) ImageInUse(ctx context.Context, image string, exceptID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("image = ? AND id <> ?", image, exceptID).
		Count(&n).Error
	return n > 0, err
}
