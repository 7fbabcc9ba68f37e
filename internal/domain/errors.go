package domain

import "errors"

var (
	ErrQuotaExceeded      = errors.New("quota exceeded: purchase credits to continue")
	ErrInferenceFailure   = errors.New("inference failure")
	ErrPersistenceFailure = errors.New("persistence failure")
	ErrUploadFailure      = errors.New("upload failure")
	ErrNotFound           = errors.New("not found")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")

	// ErrQuotaConflict is returned by QuotaRepository.UpdateQuota when the
	// stored ledger no longer matches the expected previous value.
	ErrQuotaConflict = errors.New("quota changed concurrently")
)
