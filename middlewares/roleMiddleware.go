package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civix-be/config"
	"civix-be/models"
)

const currentUserKey = "current_user"

// RequireRole loads the authenticated user's document and admits only the
// given roles. The loaded user is stashed for handlers, which need the full
// actor (role, ward) for transition guards.
func RequireRole(allowed ...models.Role) gin.HandlerFunc {
	allowedSet := make(map[models.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		objID, err := primitive.ObjectIDFromHex(userID.(string))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			c.Abort()
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var user models.User
		err = config.GetCollection("users").FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			c.Abort()
			return
		}

		if len(allowedSet) > 0 {
			if _, ok := allowedSet[user.Role]; !ok {
				c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
				c.Abort()
				return
			}
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user loaded by RequireRole.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(currentUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}
