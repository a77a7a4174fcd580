package models

import (
	"fmt"
	"time"
)

// ProblemReportType classifies a problem report.
type ProblemReportType string

const (
	ProblemWrongName          ProblemReportType = "WRONG_NAME"
	ProblemWrongPhoto         ProblemReportType = "WRONG_PHOTO"
	ProblemPhotoOutdated      ProblemReportType = "PHOTO_OUTDATED"
	ProblemStationActive      ProblemReportType = "STATION_ACTIVE"
	ProblemStationInactive    ProblemReportType = "STATION_INACTIVE"
	ProblemWrongLocation      ProblemReportType = "WRONG_LOCATION"
	ProblemStationNonexistent ProblemReportType = "STATION_NONEXISTENT"
	ProblemDuplicate          ProblemReportType = "DUPLICATE"
	ProblemOther              ProblemReportType = "OTHER"
)

// IsValid reports whether t is a known problem report type.
func (t ProblemReportType) IsValid() bool {
	switch t {
	case ProblemWrongName, ProblemWrongPhoto, ProblemPhotoOutdated,
		ProblemStationActive, ProblemStationInactive, ProblemWrongLocation,
		ProblemStationNonexistent, ProblemDuplicate, ProblemOther:
		return true
	}
	return false
}

// NeedsPhoto reports whether the problem type only makes sense for a station
// that currently has a photo.
func (t ProblemReportType) NeedsPhoto() bool {
	return t == ProblemWrongPhoto || t == ProblemPhotoOutdated
}

// ProblemReport is a user-submitted problem against an existing station.
type ProblemReport struct {
	CountryCode string            `json:"countryCode"`
	StationID   string            `json:"stationId"`
	Comment     string            `json:"comment"`
	Type        ProblemReportType `json:"type"`
	Coordinates Coordinates       `json:"coordinates"`
}

// InboxEntry is one pending or resolved submission: either a photo upload or
// a problem report, never both. Only persisted fields live here; derived
// state (processed, conflict, inbox URL) is computed on read by the inbox
// service and returned in separate view types.
type InboxEntry struct {
	ID                   int64             `json:"id"`
	CountryCode          string            `json:"countryCode,omitempty"`
	StationID            string            `json:"stationId,omitempty"`
	Title                string            `json:"title,omitempty"`
	Coordinates          Coordinates       `json:"coordinates"`
	PhotographerID       int64             `json:"-"`
	PhotographerNickname string            `json:"photographerNickname,omitempty"`
	Extension            string            `json:"-"`
	Comment              string            `json:"comment,omitempty"`
	RejectReason         string            `json:"rejectReason,omitempty"`
	CreatedAt            time.Time         `json:"createdAt"`
	Done                 bool              `json:"done"`
	ProblemReportType    ProblemReportType `json:"problemReportType,omitempty"`
	Active               bool              `json:"active"`
	CRC32                int64             `json:"crc32,omitempty"`
}

// IsProblemReport reports whether the entry is a problem report rather than a
// photo upload.
func (e *InboxEntry) IsProblemReport() bool {
	return e.ProblemReportType != ""
}

// HasStation reports whether the entry is bound to an existing station key.
func (e *InboxEntry) HasStation() bool {
	return e.StationID != ""
}

// HasCoords reports whether the entry carries usable coordinates.
func (e *InboxEntry) HasCoords() bool {
	return !e.Coordinates.HasZeroCoords()
}

// Filename returns the upload filename derived from id and extension, or ""
// for problem reports, which carry no file.
func (e *InboxEntry) Filename() string {
	return UploadFilename(e.ID, e.Extension)
}

// UploadFilename derives the inbox filename for an upload.
func UploadFilename(id int64, extension string) string {
	if id == 0 || extension == "" {
		return ""
	}
	return fmt.Sprintf("%d.%s", id, extension)
}

// PublicInboxEntry is the public-safe projection of a pending upload.
type PublicInboxEntry struct {
	CountryCode string      `json:"countryCode,omitempty"`
	StationID   string      `json:"stationId,omitempty"`
	Title       string      `json:"title,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}
