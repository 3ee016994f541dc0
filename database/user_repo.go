package database

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/teammatch-backend/errs"
	"github.com/rpupo63/teammatch-backend/models"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// FindByID returns a user by its ID
func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	return &user, nil
}

// FindByNickname returns the user registered under nickname
func (r *UserRepo) FindByNickname(ctx context.Context, nickname string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "nickname = ?", nickname).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	return &user, nil
}

// FindByEmail returns the user registered under email
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	return &user, nil
}

// FindByIDs returns the users whose IDs are listed; missing IDs are skipped
func (r *UserRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error) {
	var users []*models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "users", err)
	}
	return users, nil
}

// Add inserts a new user. A taken nickname or email is reported as AlreadyExists.
func (r *UserRepo) Add(ctx context.Context, user *models.User) error {
	if user.Version == 0 {
		user.Version = 1
	}
	err := r.db.WithContext(ctx).Create(user).Error
	if err == nil {
		return nil
	}
	if constraint, ok := errs.UniqueViolation(err); ok {
		return errs.NewAlreadyExists("user", uniqueUserField(constraint))
	}
	return errs.NewDatabaseError("create", "user", err)
}

// Update writes the profile fields of user if the stored version still equals
// expectedVersion, then advances user.Version.
func (r *UserRepo) Update(ctx context.Context, user *models.User, expectedVersion int) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND version = ?", user.ID, expectedVersion).
		Updates(map[string]any{
			"name":     user.Name,
			"bio":      user.Bio,
			"level":    user.Level,
			"language": user.Language,
			"version":  expectedVersion + 1,
		})
	if res.Error != nil {
		return errs.NewDatabaseError("update", "user", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, user.ID); err != nil {
			return err
		}
		return errs.NewStaleWrite("user", expectedVersion)
	}
	user.Version = expectedVersion + 1
	return nil
}

func uniqueUserField(constraint string) string {
	switch {
	case strings.Contains(constraint, "nickname"):
		return "nickname"
	case strings.Contains(constraint, "email"):
		return "email"
	}
	return constraint
}
