package services

import (
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskboard/backend/internal/auth"
	"taskboard/backend/internal/models"
)

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

type AuthService interface {
	Login(db *gorm.DB, email, password string) (*LoginResult, error)
	Refresh(refreshToken string) (string, error)
}

type AuthServiceImpl struct {
	issuer *auth.TokenIssuer
}

func NewAuthService(issuer *auth.TokenIssuer) *AuthServiceImpl {
	return &AuthServiceImpl{issuer: issuer}
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

// Login verifies the credential pair and mints an access/refresh token
// pair. Unknown email and wrong password fail identically.
func (s *AuthServiceImpl) Login(db *gorm.DB, email, password string) (*LoginResult, error) {
	var user models.User
	err := db.Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	accessToken, err := s.issuer.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.issuer.IssueRefreshToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	// Login still succeeds if the timestamp write fails.
	if err := db.Model(&user).Update("last_login_at", now).Error; err != nil {
		log.Printf("failed to record last login for %s: %v", user.ID, err)
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         &user,
	}, nil
}

// Refresh trades a valid refresh token for a new access token. The
// password is not re-verified; the refresh token's signature carries the
// prior verification. There is no server-side revocation list, so expiry
// is the only invalidation.
func (s *AuthServiceImpl) Refresh(refreshToken string) (string, error) {
	claims, err := s.issuer.Verify(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	userID, err := claims.UserUUID()
	if err != nil {
		return "", auth.ErrInvalidToken
	}

	return s.issuer.IssueAccessToken(userID, claims.Role)
}
