package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schedule-app/backend/internal/model"
	"github.com/sirupsen/logrus"
)

// ScheduleService manages calendar events for authenticated users.
type ScheduleService struct {
	store ScheduleStore
	log   *logrus.Logger
}

func NewScheduleService(store ScheduleStore, log *logrus.Logger) *ScheduleService {
	if log == nil {
		log = logrus.New()
	}
	return &ScheduleService{store: store, log: log}
}

func (s *ScheduleService) ListEvents(ctx context.Context, userID string) ([]model.Event, error) {
	events, err := s.store.ListEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}

func (s *ScheduleService) GetEvent(ctx context.Context, userID, eventID string) (*model.Event, error) {
	return s.store.GetEvent(ctx, userID, eventID)
}

func (s *ScheduleService) CreateEvent(ctx context.Context, userID string, req model.EventRequest) (*model.Event, error) {
	if err := asValidationError(req.Validate()); err != nil {
		return nil, err
	}

	now := time.Now()
	event := &model.Event{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.store.CreateEvent(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return created, nil
}

func (s *ScheduleService) UpdateEvent(ctx context.Context, userID, eventID string, req model.EventRequest) (*model.Event, error) {
	if err := asValidationError(req.Validate()); err != nil {
		return nil, err
	}

	event, err := s.store.GetEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Location = req.Location
	event.StartsAt = req.StartsAt
	event.EndsAt = req.EndsAt
	event.UpdatedAt = time.Now()

	updated, err := s.store.UpdateEvent(ctx, event)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ScheduleService) DeleteEvent(ctx context.Context, userID, eventID string) error {
	return s.store.DeleteEvent(ctx, userID, eventID)
}
