package source

import "codeberg.org/mirrwin/upsmon/internal/errors"

const (
	ErrInvalidConfig = errors.ErrorCode("source_invalid_config")
	ErrCloseFailed   = errors.ErrorCode("source_close_failed")
)
