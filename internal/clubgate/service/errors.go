package service

import "errors"

var (
	ErrInvalidIdentifier  = errors.New("uid is required")
	ErrInvalidMemberID    = errors.New("member id is required")
	ErrMemberNotFound     = errors.New("member not found")
	ErrServiceUnavailable = errors.New("service unavailable")
)
