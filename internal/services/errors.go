package services

import "errors"

var (
	// ErrValidation marks user-correctable input errors. The wrapped message
	// is safe to show to the caller.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials is returned for any failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when registering an email twice.
	ErrEmailTaken = errors.New("user already exists")
	// ErrUnauthorized is returned when a credential cannot be resolved to a user.
	ErrUnauthorized = errors.New("not authorized")
	// ErrForbidden is returned when the caller may not access a resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInsufficientStock is returned when an order asks for more than is in stock.
	ErrInsufficientStock = errors.New("insufficient stock")
)
