package repository

import (
	"github.com/samber/lo"

	"blogicum/models"
)

const (
	PostsPerPage = 10
	// LastPage selects the final page whatever its number.
	LastPage = -1
)

type PostPage struct {
	Posts    []models.Post
	Number   int
	NumPages int
	Total    int64
}

func (p *PostPage) HasPrevious() bool { return p.Number > 1 }
func (p *PostPage) HasNext() bool     { return p.Number < p.NumPages }
func (p *PostPage) Previous() int     { return p.Number - 1 }
func (p *PostPage) Next() int         { return p.Number + 1 }

// Range lists page numbers for the pager.
func (p *PostPage) Range() []int {
	return lo.RangeFrom(1, p.NumPages)
}

// resolvePage validates number against total rows. An empty listing still
// has page 1.
func resolvePage(number int, total int64, perPage int) (int, int, error) {
	numPages := int((total + int64(perPage) - 1) / int64(perPage))
	if numPages == 0 {
		numPages = 1
	}
	if number == LastPage {
		number = numPages
	}
	if number < 1 || number > numPages {
		return 0, numPages, ErrPageOutOfRange
	}
	return number, numPages, nil
}
