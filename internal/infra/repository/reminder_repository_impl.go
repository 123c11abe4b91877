package repository

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-trigger-engine/internal/domain"
)

type reminderRepositoryImpl struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) domain.ReminderRepository {
	return &reminderRepositoryImpl{
		db: db,
	}
}

func (r *reminderRepositoryImpl) Save(ctx context.Context, reminder *domain.Reminder) error {
	slog.Debug("saving reminder to database",
		"reminder_id", reminder.ID().String(),
	)

	m := FromReminderEntity(reminder)

	result := r.db.WithContext(ctx).Create(m)
	if result.Error != nil {
		slog.Error("failed to save reminder to database",
			"reminder_id", reminder.ID().String(),
			"error", result.Error,
		)

		return result.Error
	}

	return nil
}

func (r *reminderRepositoryImpl) FindByID(ctx context.Context, id domain.ReminderID) (*domain.Reminder, error) {
	var m ReminderModel

	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			slog.Debug("reminder not found",
				"reminder_id", id.String(),
			)

			return nil, domain.ErrReminderNotFound
		}

		slog.Error("failed to find reminder by ID",
			"reminder_id", id.String(),
			"error", result.Error,
		)

		return nil, result.Error
	}

	return m.ToEntity()
}

func (r *reminderRepositoryImpl) FindBySpatialHandle(ctx context.Context, handle string) (*domain.Reminder, error) {
	var m ReminderModel

	result := r.db.WithContext(ctx).Where("spatial_handle = ?", handle).First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			slog.Debug("reminder not found by spatial handle",
				"handle", handle,
			)

			return nil, domain.ErrReminderNotFound
		}

		slog.Error("failed to find reminder by spatial handle",
			"handle", handle,
			"error", result.Error,
		)

		return nil, result.Error
	}

	return m.ToEntity()
}

func (r *reminderRepositoryImpl) ActiveTimeBased(ctx context.Context) ([]*domain.Reminder, error) {
	return r.findAll(ctx, r.db.WithContext(ctx).
		Where("kind = ? AND status = ?", string(domain.KindTimeBased), string(domain.StatusPending)).
		Order("scheduled_time ASC"))
}

func (r *reminderRepositoryImpl) ActiveLocationBased(ctx context.Context) ([]*domain.Reminder, error) {
	return r.findAll(ctx, r.db.WithContext(ctx).
		Where("kind = ? AND status = ?", string(domain.KindLocationBased), string(domain.StatusPending)).
		Order("created_at ASC"))
}

func (r *reminderRepositoryImpl) List(ctx context.Context) ([]*domain.Reminder, error) {
	return r.findAll(ctx, r.db.WithContext(ctx).Order("created_at ASC"))
}

func (r *reminderRepositoryImpl) findAll(ctx context.Context, query *gorm.DB) ([]*domain.Reminder, error) {
	var models []ReminderModel

	result := query.Find(&models)
	if result.Error != nil {
		slog.Error("failed to query reminders",
			"error", result.Error,
		)

		return nil, result.Error
	}

	reminders := make([]*domain.Reminder, 0, len(models))
	for _, m := range models {
		reminder, err := m.ToEntity()
		if err != nil {
			slog.Error("failed to convert model to entity",
				"reminder_id", m.ID,
				"error", err,
			)

			return nil, err
		}

		reminders = append(reminders, reminder)
	}

	return reminders, nil
}

func (r *reminderRepositoryImpl) Update(ctx context.Context, reminder *domain.Reminder) error {
	m := FromReminderEntity(reminder)

	// Select("*") so cleared nullable columns (snoozed_until, spatial_handle)
	// are written back as NULL.
	result := r.db.WithContext(ctx).Model(&ReminderModel{}).
		Where("id = ?", m.ID).
		Select("*").
		Updates(m)
	if result.Error != nil {
		slog.Error("failed to update reminder in database",
			"reminder_id", reminder.ID().String(),
			"error", result.Error,
		)

		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrReminderNotFound
	}

	return nil
}

func (r *reminderRepositoryImpl) Delete(ctx context.Context, id domain.ReminderID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&ReminderModel{})
	if result.Error != nil {
		slog.Error("failed to delete reminder from database",
			"reminder_id", id.String(),
			"error", result.Error,
		)

		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrReminderNotFound
	}

	slog.Debug("reminder deleted from database",
		"reminder_id", id.String(),
	)

	return nil
}

func (r *reminderRepositoryImpl) WithTx(ctx context.Context, fn func(repo domain.ReminderRepository) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		slog.Error("failed to begin transaction",
			"error", tx.Error,
		)

		return tx.Error
	}

	txRepo := &reminderRepositoryImpl{db: tx}

	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			slog.Error("failed to rollback transaction",
				"error", rbErr,
				"original_error", err,
			)
		}

		return err
	}

	if err := tx.Commit().Error; err != nil {
		slog.Error("failed to commit transaction",
			"error", err,
		)

		return err
	}

	return nil
}
