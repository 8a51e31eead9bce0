package store

import "codeberg.org/mirrwin/upsmon/internal/errors"

const (
	// Configuration Errors
	ErrInvalidDBPath = errors.ErrorCode("store_invalid_db_path")

	// Storage Errors
	ErrStorageInit      = errors.ErrorCode("store_init_failed")
	ErrStorageAccess    = errors.ErrorCode("store_access_failed")
	ErrStorageClose     = errors.ErrorCode("store_close_failed")
	ErrSchemaInitFailed = errors.ErrorCode("store_schema_init_failed")
)
