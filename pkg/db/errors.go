package db

import "errors"

var (
	ErrEmptyConnectionString    = errors.New("db: empty connection string")
	ErrFailedToParseDBConfig    = errors.New("db: failed to parse database configuration")
	ErrFailedToOpenDBConnection = errors.New("db: failed to open database connection")
	ErrHealthcheckFailed        = errors.New("db: healthcheck failed")
	ErrSetDialect               = errors.New("db migrator: failed to set dialect")
	ErrApplyMigrations          = errors.New("db migrator: failed to apply migrations")
	ErrBeginTx                  = errors.New("db: failed to begin transaction")
)
