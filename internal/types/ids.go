package types

import (
	"time"

	"github.com/google/uuid"
)

// NewFormID generates a UUIDv7 form identifier.
// Time-ordered IDs ensure sequential inserts cluster in B-tree pages.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewFormID() FormID {
	return FormID(uuid.Must(uuid.NewV7()).String())
}

// NewRuleID generates a UUIDv7 rule identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRuleID() RuleID {
	return RuleID(uuid.Must(uuid.NewV7()).String())
}

// NewAutomationID generates a UUIDv7 automation identifier.
func NewAutomationID() AutomationID {
	return AutomationID(uuid.Must(uuid.NewV7()).String())
}

// NewSubmissionID generates a UUIDv7 submission session identifier.
// One generated per submission attempt; the automation fired-set is scoped
// to it.
func NewSubmissionID() SubmissionID {
	return SubmissionID(uuid.Must(uuid.NewV7()).String())
}

// NewDeliveryID generates a UUIDv7 delivery log identifier.
func NewDeliveryID() DeliveryID {
	return DeliveryID(uuid.Must(uuid.NewV7()).String())
}

// ParseFormID validates and converts a string to FormID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseFormID(s string) (FormID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return FormID(s), nil
}

// ParseSubmissionID validates and converts a string to SubmissionID.
func ParseSubmissionID(s string) (SubmissionID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return SubmissionID(s), nil
}

// SubmissionIDTime extracts the timestamp embedded in a UUIDv7 ID.
// Enables session-age queries without a database lookup.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func SubmissionIDTime(id SubmissionID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
