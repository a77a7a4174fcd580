package inbox

import "github.com/mbalthasar/stationpix/internal/models"

// InboxState is the externally visible lifecycle state of an entry.
type InboxState string

const (
	InboxStateReview   InboxState = "REVIEW"
	InboxStateConflict InboxState = "CONFLICT"
	InboxStateAccepted InboxState = "ACCEPTED"
	InboxStateRejected InboxState = "REJECTED"
	// InboxStateUnknown is reported for entry ids that do not exist or do not
	// belong to the asking user.
	InboxStateUnknown InboxState = "UNKNOWN"
)

// StateQuery is the per-entry status a photographer sees for their own
// submissions.
type StateQuery struct {
	ID           int64              `json:"id"`
	CountryCode  string             `json:"countryCode,omitempty"`
	StationID    string             `json:"stationId,omitempty"`
	Coordinates  models.Coordinates `json:"coordinates"`
	State        InboxState         `json:"state"`
	RejectReason string             `json:"rejectedReason,omitempty"`
	InboxURL     string             `json:"inboxUrl,omitempty"`
}

// EntryView is an entry annotated with derived state for the admin queue.
// The persisted record is embedded untouched; the derived fields are
// recomputed on every read.
type EntryView struct {
	models.InboxEntry

	Processed bool   `json:"processed"`
	Conflict  bool   `json:"conflict"`
	InboxURL  string `json:"inboxUrl,omitempty"`
}
