package service

import "errors"

var (
	ErrInvalidURL     = errors.New("invalid url")
	ErrFetch          = errors.New("failed to fetch page")
	ErrUpstreamStatus = errors.New("page returned an error status")
	ErrParse          = errors.New("failed to parse page")
	ErrStorage        = errors.New("storage failure")
	ErrNotFound       = errors.New("analysis not found")
)
