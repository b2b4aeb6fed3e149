// internal/services/auth_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taqyim/valuation-backend/internal/config"
	"github.com/taqyim/valuation-backend/internal/models"
	"github.com/taqyim/valuation-backend/internal/utils"
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`
	Phone    string `json:"phone,omitempty"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, Validationf("invalid role %q", req.Role)
	}
	// Admin accounts are seeded, never self-registered.
	if role == models.RoleAdmin {
		return nil, Authorizationf("admin accounts cannot be registered")
	}

	var existing models.User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, Validationf("user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &models.User{
		Name:  req.Name,
		Email: req.Email,
		Role:  role,
		Phone: req.Phone,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		// Companies and banks get an empty profile row up front so the rest
		// of the system can assume one exists.
		switch role {
		case models.RoleCompany:
			return tx.Create(&models.CompanyProfile{
				UserID: user.ID,
				Slug:   utils.Slugify(req.Name),
			}).Error
		case models.RoleBank:
			return tx.Create(&models.BankProfile{
				UserID: user.ID,
				Slug:   utils.Slugify(req.Name),
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Authorizationf("invalid email or password")
		}
		return nil, err
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, Authorizationf("invalid email or password")
	}

	return s.issueTokens(&user)
}

func (s *AuthService) RefreshToken(refreshToken string) (*AuthResponse, error) {
	userIDStr, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, Authorizationf("invalid refresh token")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, Authorizationf("invalid refresh token")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("user not found")
		}
		return nil, err
	}

	return s.issueTokens(&user)
}

func (s *AuthService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.Name, string(user.Role), s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600, // hours to seconds
	}, nil
}
