package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/technotes/server/internal/models"
)

func (r *GormRepo) FindNoteByID(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&note).Error; err != nil {
		return nil, translate(err)
	}
	return &note, nil
}

func (r *GormRepo) ListNotes(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	if err := r.DB.WithContext(ctx).Order("ticket").Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// CreateNote assigns the next ticket number inside one transaction so two
// concurrent creates cannot claim the same ticket.
func (r *GormRepo) CreateNote(ctx context.Context, n *models.Note) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxTicket uint
		if err := tx.Model(&models.Note{}).
			Select("COALESCE(MAX(ticket), 0)").
			Scan(&maxTicket).Error; err != nil {
			return err
		}
		n.Ticket = maxTicket + 1
		return tx.Create(n).Error
	})
}

func (r *GormRepo) SaveNote(ctx context.Context, n *models.Note) error {
	return r.DB.WithContext(ctx).Save(n).Error
}

func (r *GormRepo) DeleteNote(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
