package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/primind-trigger-engine/internal/domain"
	"github.com/KasumiMercury/primind-trigger-engine/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-trigger-engine/internal/trigger"
)

// InMemoryReminderRepository is a map-backed ReminderRepository for tests.
type InMemoryReminderRepository struct {
	mu        sync.Mutex
	reminders map[string]*domain.Reminder

	SaveErr   error
	UpdateErr error
}

func NewInMemoryReminderRepository() *InMemoryReminderRepository {
	return &InMemoryReminderRepository{
		reminders: make(map[string]*domain.Reminder),
	}
}

func (r *InMemoryReminderRepository) Save(_ context.Context, reminder *domain.Reminder) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}

	r.mu.Lock()
	r.reminders[reminder.ID().String()] = reminder
	r.mu.Unlock()

	return nil
}

func (r *InMemoryReminderRepository) FindByID(_ context.Context, id domain.ReminderID) (*domain.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reminder, ok := r.reminders[id.String()]
	if !ok {
		return nil, domain.ErrReminderNotFound
	}

	return reminder, nil
}

func (r *InMemoryReminderRepository) FindBySpatialHandle(_ context.Context, handle string) (*domain.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, reminder := range r.reminders {
		if reminder.SpatialHandle() == handle {
			return reminder, nil
		}
	}

	return nil, domain.ErrReminderNotFound
}

func (r *InMemoryReminderRepository) ActiveTimeBased(_ context.Context) ([]*domain.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*domain.Reminder

	for _, reminder := range r.reminders {
		if reminder.Kind() == domain.KindTimeBased && reminder.IsPending() {
			result = append(result, reminder)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		ti, tj := result[i].ScheduledTime(), result[j].ScheduledTime()
		if ti == nil || tj == nil {
			return tj == nil
		}

		return ti.Before(*tj)
	})

	return result, nil
}

func (r *InMemoryReminderRepository) ActiveLocationBased(_ context.Context) ([]*domain.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*domain.Reminder

	for _, reminder := range r.reminders {
		if reminder.Kind() == domain.KindLocationBased && reminder.IsPending() {
			result = append(result, reminder)
		}
	}

	return result, nil
}

func (r *InMemoryReminderRepository) List(_ context.Context) ([]*domain.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*domain.Reminder, 0, len(r.reminders))
	for _, reminder := range r.reminders {
		result = append(result, reminder)
	}

	return result, nil
}

func (r *InMemoryReminderRepository) Update(_ context.Context, reminder *domain.Reminder) error {
	if r.UpdateErr != nil {
		return r.UpdateErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reminders[reminder.ID().String()]; !ok {
		return domain.ErrReminderNotFound
	}

	r.reminders[reminder.ID().String()] = reminder

	return nil
}

func (r *InMemoryReminderRepository) Delete(_ context.Context, id domain.ReminderID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reminders[id.String()]; !ok {
		return domain.ErrReminderNotFound
	}

	delete(r.reminders, id.String())

	return nil
}

func (r *InMemoryReminderRepository) WithTx(ctx context.Context, fn func(repo domain.ReminderRepository) error) error {
	return fn(r)
}

// InMemoryAlarmRepository is a map-backed AlarmRepository for tests.
type InMemoryAlarmRepository struct {
	mu     sync.Mutex
	alarms map[string]*domain.Alarm

	SaveErr   error
	UpdateErr error
}

func NewInMemoryAlarmRepository() *InMemoryAlarmRepository {
	return &InMemoryAlarmRepository{
		alarms: make(map[string]*domain.Alarm),
	}
}

func (r *InMemoryAlarmRepository) Save(_ context.Context, alarm *domain.Alarm) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}

	r.mu.Lock()
	r.alarms[alarm.ID().String()] = alarm
	r.mu.Unlock()

	return nil
}

func (r *InMemoryAlarmRepository) FindByID(_ context.Context, id domain.AlarmID) (*domain.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	alarm, ok := r.alarms[id.String()]
	if !ok {
		return nil, domain.ErrAlarmNotFound
	}

	return alarm, nil
}

func (r *InMemoryAlarmRepository) ListEnabled(_ context.Context) ([]*domain.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*domain.Alarm

	for _, alarm := range r.alarms {
		if alarm.IsEnabled() {
			result = append(result, alarm)
		}
	}

	return result, nil
}

func (r *InMemoryAlarmRepository) List(_ context.Context) ([]*domain.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*domain.Alarm, 0, len(r.alarms))
	for _, alarm := range r.alarms {
		result = append(result, alarm)
	}

	return result, nil
}

func (r *InMemoryAlarmRepository) Update(_ context.Context, alarm *domain.Alarm) error {
	if r.UpdateErr != nil {
		return r.UpdateErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.alarms[alarm.ID().String()]; !ok {
		return domain.ErrAlarmNotFound
	}

	r.alarms[alarm.ID().String()] = alarm

	return nil
}

func (r *InMemoryAlarmRepository) Delete(_ context.Context, id domain.AlarmID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.alarms[id.String()]; !ok {
		return domain.ErrAlarmNotFound
	}

	delete(r.alarms, id.String())

	return nil
}

// FakeTimeTriggerService records scheduled wake-ups without any timers.
type FakeTimeTriggerService struct {
	mu        sync.Mutex
	scheduled map[trigger.WakeKey]time.Time

	ScheduleErr error
}

func NewFakeTimeTriggerService() *FakeTimeTriggerService {
	return &FakeTimeTriggerService{
		scheduled: make(map[trigger.WakeKey]time.Time),
	}
}

func (s *FakeTimeTriggerService) ScheduleWake(_ context.Context, key trigger.WakeKey, at time.Time) error {
	if s.ScheduleErr != nil {
		return s.ScheduleErr
	}

	s.mu.Lock()
	s.scheduled[key] = at
	s.mu.Unlock()

	return nil
}

func (s *FakeTimeTriggerService) CancelWake(_ context.Context, key trigger.WakeKey) error {
	s.mu.Lock()
	delete(s.scheduled, key)
	s.mu.Unlock()

	return nil
}

func (s *FakeTimeTriggerService) ScheduledAt(key trigger.WakeKey) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at, ok := s.scheduled[key]

	return at, ok
}

func (s *FakeTimeTriggerService) ScheduledCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.scheduled)
}

// FakeSpatialTriggerService mints handles without a geofencing backend.
type FakeSpatialTriggerService struct {
	mu      sync.Mutex
	regions map[string]trigger.Region

	RegisterErr error
}

func NewFakeSpatialTriggerService() *FakeSpatialTriggerService {
	return &FakeSpatialTriggerService{
		regions: make(map[string]trigger.Region),
	}
}

func (s *FakeSpatialTriggerService) RegisterRegion(_ context.Context, region trigger.Region) (string, error) {
	if s.RegisterErr != nil {
		return "", s.RegisterErr
	}

	handle := uuid.New().String()

	s.mu.Lock()
	s.regions[handle] = region
	s.mu.Unlock()

	return handle, nil
}

func (s *FakeSpatialTriggerService) UnregisterRegion(_ context.Context, handle string) error {
	s.mu.Lock()
	delete(s.regions, handle)
	s.mu.Unlock()

	return nil
}

func (s *FakeSpatialTriggerService) RegionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.regions)
}

// CapturingPublisher collects published fire events.
type CapturingPublisher struct {
	mu     sync.Mutex
	events []*pubsub.FireEvent

	PublishErr error
}

func NewCapturingPublisher() *CapturingPublisher {
	return &CapturingPublisher{}
}

func (p *CapturingPublisher) PublishTriggerFired(_ context.Context, event *pubsub.FireEvent) error {
	if p.PublishErr != nil {
		return p.PublishErr
	}

	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()

	return nil
}

func (p *CapturingPublisher) Close() error {
	return nil
}

func (p *CapturingPublisher) Events() []*pubsub.FireEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]*pubsub.FireEvent(nil), p.events...)
}
