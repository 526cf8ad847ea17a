package api

import (
	"net/http"

	"github.com/canhigher/ing-hubs-case/internal/domain"
	"github.com/canhigher/ing-hubs-case/pkg/auth"

	"github.com/gin-gonic/gin"
)

const (
	contextUserIDKey = "user_id"
	contextRoleKey   = "user_role"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AuthMiddleware validates the bearer token and stores the caller's id and
// role on the request context.
func AuthMiddleware(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.ExtractBearer(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Code: "UNAUTHORIZED", Message: "missing token"})
			return
		}

		claims, err := tokens.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
			return
		}

		c.Set(contextUserIDKey, userID)
		c.Set(contextRoleKey, domain.Role(claims.Role))
		c.Next()
	}
}

// AdminOnly rejects callers without the admin role. Must run after
// AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{Code: "FORBIDDEN", Message: "admin role required"})
			return
		}
		c.Next()
	}
}

func callerID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func isAdmin(c *gin.Context) bool {
	v, ok := c.Get(contextRoleKey)
	if !ok {
		return false
	}
	role, ok := v.(domain.Role)
	return ok && role == domain.RoleAdmin
}

// canActOn reports whether the caller owns the customer id or is an admin.
func canActOn(c *gin.Context, customerID uint) bool {
	if isAdmin(c) {
		return true
	}
	id, ok := callerID(c)
	return ok && id == customerID
}
