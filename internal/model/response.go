package model

import "time"

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type LoginResponse struct {
	Message    string      `json:"message"`
	Token      string      `json:"token"`
	Expiration time.Time   `json:"expiration"`
	User       UserSummary `json:"user"`
}

type UsersResponse struct {
	Message string         `json:"message"`
	Count   int            `json:"count"`
	Users   []UserListItem `json:"users"`
}

type ProfileResponse struct {
	Message string      `json:"message"`
	User    UserProfile `json:"user"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
