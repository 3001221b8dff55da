package forms

import (
	"strings"
	"time"

	"blogicum/models"
)

// PubDateLayout is the value format of the datetime-local widget.
const PubDateLayout = "2006-01-02T15:04"

var pubDateLayouts = []string{
	PubDateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// PostForm covers every Post field except the author, which always comes
// from the session.
type PostForm struct {
	Title       string `form:"title" binding:"required,notblank,max=256"`
	Text        string `form:"text" binding:"required,notblank"`
	PubDate     string `form:"pub_date" binding:"required"`
	LocationID  uint   `form:"location"`
	CategoryID  uint   `form:"category" binding:"required"`
	IsPublished bool   `form:"is_published"`
	ClearImage  bool   `form:"image-clear"`

	Image string `form:"-"` // current image, shown by the widget
}

// NewPostForm is the initial state of the create form.
func NewPostForm() PostForm {
	return PostForm{
		PubDate:     time.Now().UTC().Format(PubDateLayout),
		IsPublished: true,
	}
}

// PostFormFrom fills the form with a stored post.
func PostFormFrom(p *models.Post) PostForm {
	f := PostForm{
		Title:       p.Title,
		Text:        p.Text,
		PubDate:     p.PubDate.UTC().Format(PubDateLayout),
		IsPublished: p.IsPublished,
		Image:       p.Image,
	}
	if p.LocationID != nil {
		f.LocationID = *p.LocationID
	}
	if p.CategoryID != nil {
		f.CategoryID = *p.CategoryID
	}
	return f
}

// ParsePubDate reads the pub_date value as UTC.
func (f PostForm) ParsePubDate() (time.Time, bool) {
	raw := strings.TrimSpace(f.PubDate)
	for _, layout := range pubDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Clean runs the checks binding tags cannot express.
func (f PostForm) Clean(errs Errors) (time.Time, Errors) {
	if errs == nil {
		errs = Errors{}
	}
	pubDate, ok := f.ParsePubDate()
	if !ok && f.PubDate != "" {
		errs.Add("pub_date", "Enter a valid date/time.")
	}
	return pubDate, errs
}

// Apply copies the form onto post. Author and image are set by the caller.
func (f PostForm) Apply(p *models.Post, pubDate time.Time) {
	p.Title = strings.TrimSpace(f.Title)
	p.Text = strings.TrimSpace(f.Text)
	p.PubDate = pubDate.UTC()
	p.IsPublished = f.IsPublished
	p.CategoryID = optionalID(f.CategoryID)
	p.LocationID = optionalID(f.LocationID)

	p.Category = nil
	p.Location = nil
}

func optionalID(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}

type CommentForm struct {
	Text string `form:"text" binding:"required,notblank"`
}

// Apply copies the form onto comment. Author and post are set by the caller.
func (f CommentForm) Apply(c *models.Comment) {
	c.Text = strings.TrimSpace(f.Text)
}
