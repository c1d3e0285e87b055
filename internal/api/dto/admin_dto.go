package dto

import "time"

// LoginRequest authenticates the admin.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// BanRequest bans a subject.
type BanRequest struct {
	SubjectID int64  `json:"subject_id" validate:"required"`
	Reason    string `json:"reason"`
}

// BanResponse is one ban-list entry.
type BanResponse struct {
	SubjectID int64  `json:"subject_id"`
	Reason    string `json:"reason"`
}
