package common

import (
	"github.com/gin-gonic/gin"

	"blogicum/models"
)

// UserKey is the gin context key holding the authenticated *models.User.
const UserKey = "user"

// CurrentUser returns the authenticated user or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	v, exists := c.Get(UserKey)
	if !exists {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
