package service

import (
	"github.com/dukerupert/shelf/internal/domain"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = domain.Errorf(domain.EUNAUTHORIZED, "", "Invalid email or password")

// Profile/upload validation messages.
const (
	MsgImageRequired    = "Please choose an image to upload"
	MsgImageNotAnImage  = "Please select an image file"
	MsgImageTooLarge    = "Image must be smaller than 5MB"
	MsgCountryInvalid   = "Please choose a supported country"
	MsgPasswordTooShort = "Password must be at least 8 characters"
	MsgPasswordTooLong  = "Password must be at most 72 characters"
)

// requireSession rejects calls made without a live session.
func requireSession(session *domain.Session, op string) error {
	if session == nil {
		return &domain.Error{Code: domain.EUNAUTHORIZED, Op: op, Message: "You must be signed in"}
	}
	return nil
}
