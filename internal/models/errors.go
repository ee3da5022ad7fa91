package models

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrDuplicateSlug      = errors.New("group slug already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
