package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Event is a calendar entry owned by a single user.
type Event struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type EventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt"`
}

func (r EventRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.Location, validation.Length(0, 200)),
		validation.Field(&r.StartsAt, validation.Required),
		validation.Field(&r.EndsAt, validation.Required, validation.By(afterStart(r.StartsAt))),
	)
}

func afterStart(start time.Time) validation.RuleFunc {
	return func(value interface{}) error {
		end, ok := value.(time.Time)
		if !ok || !end.After(start) {
			return errors.New("must be after startsAt")
		}
		return nil
	}
}

type EventsResponse struct {
	Message string  `json:"message"`
	Count   int     `json:"count"`
	Events  []Event `json:"events"`
}

type EventResponse struct {
	Message string `json:"message"`
	Event   Event  `json:"event"`
}
