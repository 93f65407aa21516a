package validation

import (
	"fmt"

	apperrors "loan-orchestrator/internal/common/errors"

	"github.com/google/uuid"
)

// ParseUUID parses a job variable holding an id. Empty and nil ids are
// rejected.
func ParseUUID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apperrors.NewValidationFailedError(fmt.Sprintf("%s must be a uuid, got %q", field, value)).
			WithMetadata("field", field)
	}
	return id, nil
}
