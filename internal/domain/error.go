package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// Pipeline errors. Each is request-scoped: the dispatcher translates it
	// into a chat message and the process keeps serving other updates.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrQualityUnavailable = errors.New("quality tier unavailable")
	ErrDownloadFailed     = errors.New("download failed")
	ErrTagEmbedFailed     = errors.New("tag embedding failed")
	ErrDeliveryFailed     = errors.New("delivery failed")

	ErrRateLimited = errors.New("too many requests")
)
