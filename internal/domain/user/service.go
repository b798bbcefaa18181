// internal/domain/user/service.go
package user

import (
	"time"

	"github.com/your-org/procurement-backend/internal/config"
	"github.com/your-org/procurement-backend/internal/pkg/apperrors"
	"github.com/your-org/procurement-backend/internal/pkg/auth"
	"github.com/your-org/procurement-backend/internal/pkg/authz"
	"gorm.io/gorm"
)

// Service handles user business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Phone           string `json:"phone"`
	Department      string `json:"department"`
	Role            string `json:"role"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Register creates a new user account. New accounts always start as
// viewers; only an admin can assign a working role afterwards.
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, apperrors.Validation("passwords do not match")
	}

	var existingUser User
	result := s.db.Where("email = ?", req.Email).First(&existingUser)
	if result.Error == nil {
		return nil, apperrors.Conflict("user with this email already exists")
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "failed to hash password")
	}

	user := User{
		Email:      req.Email,
		Password:   hashedPassword,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Department: req.Department,
		Role:       authz.RoleViewer,
		IsActive:   true,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to create user")
	}

	return s.issueTokens(&user)
}

// Login authenticates a user and returns tokens
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	var user User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return nil, apperrors.Authorization("invalid email or password")
	}

	if !user.IsActive {
		return nil, apperrors.Authorization("account is deactivated")
	}

	if err := s.passwordManager.VerifyPassword(req.Password, user.Password); err != nil {
		return nil, apperrors.Authorization("invalid email or password")
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	s.db.Model(&user).Update("last_login_at", now)

	return s.issueTokens(&user)
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (s *Service) RefreshToken(refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Authorization("invalid refresh token")
	}

	user, err := s.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, apperrors.Authorization("account is deactivated")
	}

	return s.issueTokens(user)
}

// GetByID retrieves a user by ID
func (s *Service) GetByID(id uint) (*User, error) {
	var user User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, apperrors.NotFound("user %d not found", id)
	}
	user.Password = ""
	return &user, nil
}

// List returns users filtered by role and active flag
func (s *Service) List(role string, activeOnly bool, limit, offset int) ([]User, int64, error) {
	query := s.db.Model(&User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindUnknown, err, "failed to count users")
	}

	var users []User
	if err := query.Order("email").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindUnknown, err, "failed to list users")
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, total, nil
}

// SetRole assigns a role to a user. Admin only.
func (s *Service) SetRole(actor authz.Actor, userID uint, role authz.Role) (*User, error) {
	if !actor.IsSuperuser && actor.Role != authz.RoleAdmin {
		return nil, apperrors.Authorization("only an admin can assign roles")
	}
	if !authz.ValidRole(role) {
		return nil, apperrors.Validation("unknown role %q", role)
	}

	var user User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, apperrors.NotFound("user %d not found", userID)
	}

	user.Role = role
	if err := s.db.Model(&user).Update("role", role).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to update role")
	}
	user.Password = ""
	return &user, nil
}

// SetActive activates or deactivates an account. Admin only.
func (s *Service) SetActive(actor authz.Actor, userID uint, active bool) (*User, error) {
	if !actor.IsSuperuser && actor.Role != authz.RoleAdmin {
		return nil, apperrors.Authorization("only an admin can change account status")
	}
	if actor.UserID == userID && !active {
		return nil, apperrors.Validation("cannot deactivate your own account")
	}

	var user User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, apperrors.NotFound("user %d not found", userID)
	}

	user.IsActive = active
	if err := s.db.Model(&user).Update("is_active", active).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to update account status")
	}
	user.Password = ""
	return &user, nil
}

// ChangePassword updates the authenticated user's password
func (s *Service) ChangePassword(userID uint, currentPassword, newPassword string) error {
	var user User
	if err := s.db.First(&user, userID).Error; err != nil {
		return apperrors.NotFound("user %d not found", userID)
	}

	if err := s.passwordManager.VerifyPassword(currentPassword, user.Password); err != nil {
		return apperrors.Authorization("current password is incorrect")
	}

	hashed, err := s.passwordManager.HashPassword(newPassword)
	if err != nil {
		return apperrors.Wrap(apperrors.KindValidation, err, "failed to hash password")
	}

	if err := s.db.Model(&user).Update("password", hashed).Error; err != nil {
		return apperrors.Wrap(apperrors.KindUnknown, err, "failed to update password")
	}
	return nil
}

func (s *Service) issueTokens(user *User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, string(user.Role), user.IsSuperuser)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to generate access token")
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, err, "failed to generate refresh token")
	}

	user.Password = ""
	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}
