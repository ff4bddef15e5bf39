package auth

import (
	"context"
	"errors"
	"strings"

	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Accounts struct {
	db *gorm.DB
}

func NewAccounts(db *gorm.DB) *Accounts {
	return &Accounts{db: db}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (a *Accounts) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if name == "" || email == "" || password == "" {
		return nil, apperr.Validation("Name, email, and password are required")
	}

	var count int64
	if err := a.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to register user")
	}
	if count > 0 {
		return nil, apperr.Validation("User already exists")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, apperr.Internal(err, "Failed to register user")
	}

	user := models.User{Name: name, Email: email, PasswordHash: hash}
	if err := a.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to register user")
	}
	return &user, nil
}

// Authenticate returns ErrInvalidCredentials for an unknown email or a
// wrong password alike.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := a.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperr.Internal(err, "Failed to log in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (a *Accounts) Get(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := a.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "Failed to fetch user")
	}
	return &user, nil
}

// Delete removes the farms the user created (cascading their data) and then
// the user, whose remaining memberships cascade with it.
func (a *Accounts) Delete(ctx context.Context, userID uint) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("created_by_user_id = ?", userID).Delete(&models.Farm{}).Error; err != nil {
			return apperr.Internal(err, "Failed to delete account")
		}
		res := tx.Delete(&models.User{}, userID)
		if res.Error != nil {
			return apperr.Internal(res.Error, "Failed to delete account")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("User not found")
		}
		return nil
	})
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
