package repository

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-trigger-engine/internal/domain"
)

type alarmRepositoryImpl struct {
	db *gorm.DB
}

func NewAlarmRepository(db *gorm.DB) domain.AlarmRepository {
	return &alarmRepositoryImpl{
		db: db,
	}
}

func (r *alarmRepositoryImpl) Save(ctx context.Context, alarm *domain.Alarm) error {
	m := FromAlarmEntity(alarm)

	result := r.db.WithContext(ctx).Create(m)
	if result.Error != nil {
		slog.Error("failed to save alarm to database",
			"alarm_id", alarm.ID().String(),
			"error", result.Error,
		)

		return result.Error
	}

	return nil
}

func (r *alarmRepositoryImpl) FindByID(ctx context.Context, id domain.AlarmID) (*domain.Alarm, error) {
	var m AlarmModel

	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAlarmNotFound
		}

		slog.Error("failed to find alarm by ID",
			"alarm_id", id.String(),
			"error", result.Error,
		)

		return nil, result.Error
	}

	return m.ToEntity()
}

func (r *alarmRepositoryImpl) ListEnabled(ctx context.Context) ([]*domain.Alarm, error) {
	return r.findAll(ctx, r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("next_trigger_at ASC"))
}

func (r *alarmRepositoryImpl) List(ctx context.Context) ([]*domain.Alarm, error) {
	return r.findAll(ctx, r.db.WithContext(ctx).Order("hour ASC, minute ASC"))
}

func (r *alarmRepositoryImpl) findAll(ctx context.Context, query *gorm.DB) ([]*domain.Alarm, error) {
	var models []AlarmModel

	result := query.Find(&models)
	if result.Error != nil {
		slog.Error("failed to query alarms",
			"error", result.Error,
		)

		return nil, result.Error
	}

	alarms := make([]*domain.Alarm, 0, len(models))
	for _, m := range models {
		alarm, err := m.ToEntity()
		if err != nil {
			slog.Error("failed to convert model to entity",
				"alarm_id", m.ID,
				"error", err,
			)

			return nil, err
		}

		alarms = append(alarms, alarm)
	}

	return alarms, nil
}

func (r *alarmRepositoryImpl) Update(ctx context.Context, alarm *domain.Alarm) error {
	m := FromAlarmEntity(alarm)

	result := r.db.WithContext(ctx).Model(&AlarmModel{}).
		Where("id = ?", m.ID).
		Select("*").
		Updates(m)
	if result.Error != nil {
		slog.Error("failed to update alarm in database",
			"alarm_id", alarm.ID().String(),
			"error", result.Error,
		)

		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrAlarmNotFound
	}

	return nil
}

func (r *alarmRepositoryImpl) Delete(ctx context.Context, id domain.AlarmID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&AlarmModel{})
	if result.Error != nil {
		slog.Error("failed to delete alarm from database",
			"alarm_id", id.String(),
			"error", result.Error,
		)

		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrAlarmNotFound
	}

	return nil
}
