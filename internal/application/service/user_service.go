package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	"github.com/sangkips/gstpos-api/internal/domain/repository"
	"github.com/sangkips/gstpos-api/pkg/apperror"
	"github.com/sangkips/gstpos-api/pkg/pagination"
)

// assignableRoles are the roles an admin can hand out through the API.
var assignableRoles = map[string]bool{
	entity.RoleAdmin:   true,
	entity.RoleManager: true,
	entity.RoleCashier: true,
}

// UserService handles user management operations
type UserService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	audit    AuditRecorder
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, audit AuditRecorder) *UserService {
	return &UserService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		audit:    audit,
	}
}

// ListUsers returns a paginated list of users with their roles
func (s *UserService) ListUsers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.User], error) {
	params.Validate()

	users, total, err := s.userRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(users, pag), nil
}

// GetUser returns a user by ID with roles and permissions
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// SetApproval approves or revokes approval of an account
func (s *UserService) SetApproval(ctx context.Context, userID uuid.UUID, approved bool, actor Actor) (*entity.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !approved && user.ID == actor.UserID {
		return nil, apperror.NewBadRequestError("You cannot revoke your own approval")
	}

	user.Approved = approved
	if approved {
		now := time.Now()
		approvedBy := actor.Username
		user.ApprovedAt = &now
		user.ApprovedBy = &approvedBy
	} else {
		user.ApprovedAt = nil
		user.ApprovedBy = nil
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	action := entity.AuditUserApproved
	if !approved {
		action = entity.AuditUserUnapproved
	}
	s.audit.Record(ctx, action, actor, map[string]interface{}{
		"targetUserId":   user.ID.String(),
		"targetUsername": user.Username,
	})
	return user, nil
}

// ChangeRole makes roleName the user's only role
func (s *UserService) ChangeRole(ctx context.Context, userID uuid.UUID, roleName string, actor Actor) (*entity.User, error) {
	if !assignableRoles[roleName] {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "role", Message: "Role must be one of admin, manager, cashier"},
		})
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	oldRole := user.PrimaryRole()

	role, err := s.roleRepo.GetByName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, apperror.NewNotFoundError("Role")
	}

	if err := s.userRepo.ReplaceRoles(ctx, user.ID, []uint{role.ID}); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, entity.AuditUserRoleChanged, actor, map[string]interface{}{
		"targetUserId":   user.ID.String(),
		"targetUsername": user.Username,
		"oldRole":        oldRole,
		"newRole":        roleName,
	})
	return s.userRepo.GetWithRoles(ctx, user.ID)
}

// DeleteUser soft deletes a user
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID, actor Actor) error {
	if userID == actor.UserID {
		return apperror.NewBadRequestError("You cannot delete your own account")
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	s.audit.Record(ctx, entity.AuditUserDeleted, actor, map[string]interface{}{
		"targetUserId":   user.ID.String(),
		"targetUsername": user.Username,
	})
	return nil
}

// UserCheck is what the client needs to decide whether a stored session is still valid
type UserCheck struct {
	Exists   bool   `json:"exists"`
	Approved bool   `json:"approved"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// CheckUser reports whether the account exists and is approved
func (s *UserService) CheckUser(ctx context.Context, userID uuid.UUID) (*UserCheck, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &UserCheck{Exists: false}, nil
	}
	return &UserCheck{
		Exists:   true,
		Approved: user.Approved,
		Username: user.Username,
		Role:     user.PrimaryRole(),
	}, nil
}

// ListRoles returns all available roles
func (s *UserService) ListRoles(ctx context.Context) ([]entity.Role, error) {
	return s.roleRepo.List(ctx)
}
