package models

import "time"

// nameLength caps the String() form of entities shown in lists.
const nameLength = 30

type BaseModel struct {
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// PublishModel gates visibility to non-owners. There is no gorm default on
// IsPublished: a default would swallow an explicit false on insert.
type PublishModel struct {
	BaseModel
	IsPublished bool `gorm:"not null;index" json:"is_published"`
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= nameLength {
		return s
	}
	return string(r[:nameLength])
}
