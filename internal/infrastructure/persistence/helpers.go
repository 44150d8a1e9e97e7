package persistence

import (
	"time"

	"github.com/dms/backend/internal/domain/shared"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

func partnerNotFound() error {
	return shared.NewNotFoundError("customer")
}

func versionConflict(resource string) error {
	return shared.NewDomainError(shared.CodeVersionMismatch, "the "+resource+" has been modified by another user")
}
