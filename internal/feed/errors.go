package feed

import "codeberg.org/mirrwin/upsmon/internal/errors"

const (
	ErrInvalidConfig  = errors.ErrorCode("feed_invalid_config")
	ErrMissingStore   = errors.ErrorCode("feed_missing_store")
	ErrAlreadyRunning = errors.ErrorCode("feed_already_running")
)
