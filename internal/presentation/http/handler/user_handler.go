package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/gstpos-api/internal/application/service"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	"github.com/sangkips/gstpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/gstpos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/gstpos-api/pkg/pagination"
)

// UserHandler handles staff account administration
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List handles listing staff accounts
// @Summary List users
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var query request.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.userService.ListUsers(c.Request.Context(), paginationFrom(query.Page, query.PerPage), query.Search)
	if err != nil {
		response.Error(c, err)
		return
	}

	users := make([]response.UserResponse, len(result.Items))
	for i := range result.Items {
		users[i] = *response.NewUserResponse(&result.Items[i])
	}
	response.SuccessWithPagination(c, http.StatusOK, "Users retrieved successfully",
		pagination.NewPaginatedResult(users, result.Pagination))
}

// Approve lets a pending account sign in
func (h *UserHandler) Approve(c *gin.Context) {
	h.setApproval(c, true)
}

// Unapprove blocks an account from signing in
func (h *UserHandler) Unapprove(c *gin.Context) {
	h.setApproval(c, false)
}

func (h *UserHandler) setApproval(c *gin.Context, approved bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.SetApproval(c.Request.Context(), id, approved, GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "User approved successfully"
	if !approved {
		message = "User approval revoked"
	}
	response.OK(c, message, response.NewUserResponse(user))
}

// ChangeRole handles assigning admin, manager or cashier
// @Summary Change role
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body request.ChangeRoleRequest true "Role"
// @Success 200 {object} response.APIResponse
// @Router /users/{id}/role [patch]
func (h *UserHandler) ChangeRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req request.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Role must be admin, manager or cashier")
		return
	}

	user, err := h.userService.ChangeRole(c.Request.Context(), id, req.Role, GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Role updated successfully", response.NewUserResponse(user))
}

// Delete handles removing a staff account
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), id, GetActor(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "User deleted successfully", nil)
}

// Check reports whether a stored session still belongs to an approved account
func (h *UserHandler) Check(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	check, err := h.userService.CheckUser(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "User checked", check)
}

// ListRoles handles listing roles with their permissions
func (h *UserHandler) ListRoles(c *gin.Context) {
	roles, err := h.userService.ListRoles(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if roles == nil {
		roles = []entity.Role{}
	}

	response.OK(c, "Roles retrieved successfully", roles)
}
