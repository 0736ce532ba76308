package auth

import "errors"

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotApproved        = errors.New("account awaiting admin approval")
	ErrNotFound           = errors.New("user not found")
)
