package repositories

import (
	"context"

	"gorm.io/gorm"

	"planboard/internal/models"
)

// UserRepository is a read-only view of the account subsystem's table, used
// for identity resolution and the authorization gate.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindPlainUsers(ctx context.Context) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindPlainUsers returns every user in good standing that holds the plain
// user role. Completion reports are computed against this population.
func (r *userRepository) FindPlainUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("status = ? AND role = ?", models.UserStatusNormal, models.RoleUser).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
