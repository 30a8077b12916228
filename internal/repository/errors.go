package repository

import "errors"

var (
	ErrBrowserStart     = errors.New("headless browser could not be started")
	ErrNavigationFailed = errors.New("navigation failed")
	ErrFetchTimeout     = errors.New("page load timed out")
	ErrCaptureFailed    = errors.New("page capture failed")
	ErrNotFound         = errors.New("not found")
)
