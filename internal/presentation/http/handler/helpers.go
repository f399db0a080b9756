package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/application/service"
	"github.com/sangkips/gstpos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/gstpos-api/pkg/pagination"
)

// Context keys set by the auth middleware
const (
	CtxUserID      = "user_id"
	CtxUsername    = "username"
	CtxRoles       = "user_roles"
	CtxPermissions = "user_permissions"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get(CtxUserID)
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUsername extracts the username from the Gin context
func GetUsername(c *gin.Context) string {
	return c.GetString(CtxUsername)
}

// GetUserRoles extracts the user roles from the Gin context
func GetUserRoles(c *gin.Context) []string {
	return c.GetStringSlice(CtxRoles)
}

// GetActor returns the authenticated user as an audit actor
func GetActor(c *gin.Context) service.Actor {
	actor := service.Actor{Username: GetUsername(c)}
	if id := GetUserID(c); id != nil {
		actor.UserID = *id
	}
	return actor
}

// parseIDParam parses a UUID path parameter, writing a 400 when it is malformed
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func paginationFrom(page, perPage int) *pagination.PaginationParams {
	p := &pagination.PaginationParams{Page: page, PerPage: perPage}
	p.Validate()
	return p
}
