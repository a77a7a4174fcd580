package inbox

import "github.com/mbalthasar/stationpix/internal/models"

// ConflictResolution is the administrator's strategy for importing a photo
// into a station that already has one, or for creating a station near an
// existing one.
type ConflictResolution string

const (
	ResolutionDoNothing                 ConflictResolution = "DO_NOTHING"
	ResolutionOverwriteExistingPhoto    ConflictResolution = "OVERWRITE_EXISTING_PHOTO"
	ResolutionImportAsNewPrimaryPhoto   ConflictResolution = "IMPORT_AS_NEW_PRIMARY_PHOTO"
	ResolutionImportAsNewSecondaryPhoto ConflictResolution = "IMPORT_AS_NEW_SECONDARY_PHOTO"
	ResolutionIgnoreNearbyStation       ConflictResolution = "IGNORE_NEARBY_STATION"
)

// SolvesPhotoConflict reports whether the resolution permits importing into a
// station that already has a photo.
func (r ConflictResolution) SolvesPhotoConflict() bool {
	switch r {
	case ResolutionOverwriteExistingPhoto,
		ResolutionImportAsNewPrimaryPhoto,
		ResolutionImportAsNewSecondaryPhoto:
		return true
	}
	return false
}

// SolvesStationConflict reports whether the resolution permits creating a
// station despite a nearby station or pending entry.
func (r ConflictResolution) SolvesStationConflict() bool {
	return r == ResolutionIgnoreNearbyStation
}

// Command is one administrator decision against a pending entry. The set of
// commands is closed: ProcessCommand matches on the concrete type.
type Command interface {
	entryID() int64
}

// RejectCommand rejects the entry with a reason.
type RejectCommand struct {
	ID     int64
	Reason string
}

// ImportPhotoCommand imports the uploaded photo into the station the entry is
// bound to.
type ImportPhotoCommand struct {
	ID         int64
	Resolution ConflictResolution
}

// ImportMissingStationCommand creates the proposed station and imports the
// uploaded photo into it. Command fields override the entry's proposal.
type ImportMissingStationCommand struct {
	ID          int64
	Resolution  ConflictResolution
	CountryCode string
	StationID   string
	Title       string
	DS100       string
	Coordinates *models.Coordinates
	Active      bool
}

// ActivateStationCommand marks the target station active.
type ActivateStationCommand struct {
	ID int64
}

// DeactivateStationCommand marks the target station inactive.
type DeactivateStationCommand struct {
	ID int64
}

// DeleteStationCommand removes the target station and its photos.
type DeleteStationCommand struct {
	ID int64
}

// DeletePhotoCommand removes the primary photo of the target station.
type DeletePhotoCommand struct {
	ID int64
}

// MarkSolvedCommand closes the entry without touching the catalog.
type MarkSolvedCommand struct {
	ID int64
}

// ChangeNameCommand renames the target station.
type ChangeNameCommand struct {
	ID    int64
	Title string
}

// UpdateLocationCommand relocates the target station.
type UpdateLocationCommand struct {
	ID          int64
	Coordinates models.Coordinates
}

// PhotoOutdatedCommand flags the primary photo of the target station as
// outdated.
type PhotoOutdatedCommand struct {
	ID int64
}

func (c RejectCommand) entryID() int64               { return c.ID }
func (c ImportPhotoCommand) entryID() int64          { return c.ID }
func (c ImportMissingStationCommand) entryID() int64 { return c.ID }
func (c ActivateStationCommand) entryID() int64      { return c.ID }
func (c DeactivateStationCommand) entryID() int64    { return c.ID }
func (c DeleteStationCommand) entryID() int64        { return c.ID }
func (c DeletePhotoCommand) entryID() int64          { return c.ID }
func (c MarkSolvedCommand) entryID() int64           { return c.ID }
func (c ChangeNameCommand) entryID() int64           { return c.ID }
func (c UpdateLocationCommand) entryID() int64       { return c.ID }
func (c PhotoOutdatedCommand) entryID() int64        { return c.ID }
