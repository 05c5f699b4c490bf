package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/pkg/apperror"
	"github.com/mahavirtraders/flowtrack/pkg/events"
	"github.com/mahavirtraders/flowtrack/pkg/pagination"
	"github.com/mahavirtraders/flowtrack/pkg/utils"
)

// UserService handles staff account management
type UserService struct {
	userRepo   repository.UserRepository
	roleRepo   repository.RoleRepository
	transactor repository.Transactor
	publisher  events.Publisher
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	transactor repository.Transactor,
	publisher events.Publisher,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		transactor: transactor,
		publisher:  publisher,
	}
}

// ListUsers returns a paginated list of users with their roles
func (s *UserService) ListUsers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.User], error) {
	params.Validate()
	users, total, err := s.userRepo.List(ctx, params, search)
	if err != nil {
		return nil, asAppError(err)
	}
	return pagination.NewPaginatedResult(users, params, total), nil
}

// GetUser returns a user by ID with roles and permissions
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, asAppError(err)
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// RoleLookup returns the role names of a user in one read
func (s *UserService) RoleLookup(ctx context.Context, userID uuid.UUID) ([]string, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.RoleNames(), nil
}

// ListRoles returns every role with its permissions
func (s *UserService) ListRoles(ctx context.Context) ([]entity.Role, error) {
	roles, err := s.roleRepo.List(ctx)
	if err != nil {
		return nil, asAppError(err)
	}
	return roles, nil
}

// CreateUserInput represents the create user input
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Phone    *string
	Role     string
}

// CreateUser creates a staff account with one role
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	roleName := input.Role
	if roleName == "" {
		roleName = entity.RoleStaff
	}

	role, err := s.roleRepo.GetByName(ctx, roleName)
	if err != nil {
		return nil, asAppError(err)
	}
	if role == nil {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "role", Message: "unknown role " + roleName}})
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, asAppError(err)
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, asAppError(err)
	}

	user := &entity.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Password: hashedPassword,
		Phone:    input.Phone,
		Active:   true,
	}

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		return s.userRepo.AssignRole(ctx, user.ID, role.ID)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperror.NewConflictError("Email already registered")
	}
	if err != nil {
		return nil, asAppError(err)
	}

	created, err := s.GetUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, events.NewEvent(events.CollectionUsers, events.ActionCreated, created.ID.String(), created))
	return created, nil
}

// SetActive enables or disables sign-in for a user
func (s *UserService) SetActive(ctx context.Context, userID uuid.UUID, active bool) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, asAppError(err)
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}

	user.Active = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, asAppError(err)
	}
	s.publisher.Publish(ctx, events.NewEvent(events.CollectionUsers, events.ActionUpdated, user.ID.String(), user))
	return user, nil
}
