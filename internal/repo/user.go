package repo

import (
	"context"

	"github.com/technotes/server/internal/models"
)

// FindByUsername looks a user up by name. The case-sensitive form backs
// login and refresh; the case-insensitive form backs the uniqueness check
// at create/update time. The two must not be collapsed: "Bob" and "bob"
// are duplicates to the uniqueness check but distinct users at login.
func (r *GormRepo) FindByUsername(ctx context.Context, username string, caseSensitive bool) (*models.User, error) {
	var user models.User
	q := r.DB.WithContext(ctx)
	if caseSensitive {
		q = q.Where("username = ?", username)
	} else {
		q = q.Where("LOWER(username) = LOWER(?)", username)
	}
	if err := q.First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) SaveUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Save(u).Error
}

func (r *GormRepo) DeleteUser(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountNotesForUser backs the delete guard: a user with assigned notes
// cannot be removed.
func (r *GormRepo) CountNotesForUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Note{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
