package service

import "errors"

var (
	// ErrStoreNotConfigured is returned by operations that need storage when
	// the service was built without it.
	ErrStoreNotConfigured = errors.New("store not configured")
	// ErrEmptyFeedback rejects a report with no phrase.
	ErrEmptyFeedback = errors.New("feedback phrase is empty")
)
