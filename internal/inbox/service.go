// Package inbox implements the moderation queue for photo uploads and
// problem reports: submission intake, conflict detection against the station
// catalog, and processing of administrator commands.
package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mbalthasar/stationpix/internal/cache"
	"github.com/mbalthasar/stationpix/internal/logging"
	"github.com/mbalthasar/stationpix/internal/models"
	"github.com/mbalthasar/stationpix/internal/monitor"
	"github.com/mbalthasar/stationpix/internal/photostorage"
)

var (
	ErrNoPendingEntry     = errors.New("no pending inbox entry found")
	ErrStationNotFound    = errors.New("station not found")
	ErrCountryNotFound    = errors.New("country not found")
	ErrStationHasPhoto    = errors.New("station already has a photo")
	ErrNoPhoto            = errors.New("station has no photo")
	ErrBlankStationID     = errors.New("station id must not be blank")
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	ErrNearbyStation      = errors.New("nearby station or pending entry exists")
	ErrNotAPhotoUpload    = errors.New("entry is not a photo upload")
)

// StationStore is the station side of the catalog.
type StationStore interface {
	FindByKey(ctx context.Context, country, id string) (*models.Station, error)
	Insert(ctx context.Context, station *models.Station) error
	UpdateActive(ctx context.Context, key models.StationKey, active bool) error
	UpdateTitle(ctx context.Context, key models.StationKey, title string) error
	UpdateLocation(ctx context.Context, key models.StationKey, coords models.Coordinates) error
	Delete(ctx context.Context, key models.StationKey) error
	CountNearby(ctx context.Context, coords models.Coordinates) (int, error)
	MaxZ(ctx context.Context) (int, error)
}

// PhotoStore is the photo side of the catalog.
type PhotoStore interface {
	Insert(ctx context.Context, photo *models.Photo) (int64, error)
	InsertPrimary(ctx context.Context, photo *models.Photo) (int64, error)
	Update(ctx context.Context, photo *models.Photo) error
	Delete(ctx context.Context, id int64) error
	MarkOutdated(ctx context.Context, id int64) error
	SetAllSecondary(ctx context.Context, key models.StationKey) error
}

// CountryStore looks up countries.
type CountryStore interface {
	FindByCode(ctx context.Context, code string) (*models.Country, error)
}

// UserStore looks up photographer accounts.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// EntryStore persists moderation-queue entries.
type EntryStore interface {
	Insert(ctx context.Context, entry *models.InboxEntry) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.InboxEntry, error)
	FindPending(ctx context.Context) ([]models.InboxEntry, error)
	FindPublic(ctx context.Context) ([]models.PublicInboxEntry, error)
	MarkDone(ctx context.Context, id int64) error
	MarkRejected(ctx context.Context, id int64, reason string) error
	CountPendingForStation(ctx context.Context, excludeID int64, country, stationID string) (int, error)
	CountPendingNearCoordinates(ctx context.Context, excludeID int64, coords models.Coordinates) (int, error)
	UpdateChecksum(ctx context.Context, id int64, crc32 int64) error
	CountPending(ctx context.Context) (int, error)
}

// PhotoStorage manages photo files on disk.
type PhotoStorage interface {
	StoreUpload(body io.Reader, filename string) (int64, error)
	IsProcessed(filename string) bool
	UploadFilePath(filename string) string
	ImportPhoto(entry *models.InboxEntry, station *models.Station) (string, error)
	Reject(entry *models.InboxEntry) error
}

// Service is the moderation engine. It owns no storage itself; all effects
// go through the injected collaborators.
type Service struct {
	stations  StationStore
	photos    PhotoStore
	countries CountryStore
	users     UserStore
	entries   EntryStore
	storage   PhotoStorage
	monitor   monitor.Monitor
	announcer monitor.Announcer
	cache     cache.Cache

	inboxBaseURL string
	logger       *logging.Logger
}

// Deps bundles the collaborators of the inbox service.
type Deps struct {
	Stations  StationStore
	Photos    PhotoStore
	Countries CountryStore
	Users     UserStore
	Entries   EntryStore
	Storage   PhotoStorage
	Monitor   monitor.Monitor
	Announcer monitor.Announcer
	Cache     cache.Cache

	InboxBaseURL string
	Logger       *logging.Logger
}

// NewService creates the inbox service.
func NewService(deps Deps) *Service {
	return &Service{
		stations:     deps.Stations,
		photos:       deps.Photos,
		countries:    deps.Countries,
		users:        deps.Users,
		entries:      deps.Entries,
		storage:      deps.Storage,
		monitor:      deps.Monitor,
		announcer:    deps.Announcer,
		cache:        deps.Cache,
		inboxBaseURL: deps.InboxBaseURL,
		logger:       deps.Logger,
	}
}

// extensions accepted for photo uploads, by content type.
var mimeExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
}

// UploadRequest carries one photo upload.
type UploadRequest struct {
	Body        io.Reader
	User        *models.User
	CountryCode string
	StationID   string
	ContentType string
	// Title, Latitude and Longitude describe a missing station; required when
	// no station is referenced.
	Title     string
	Latitude  *float64
	Longitude *float64
	Comment   string
	Active    bool
	// ClientInfo identifies the submitting app, for the moderation channel.
	ClientInfo string
}

// UploadPhoto validates and records a photo upload. Validation failures are
// reported in the response state, never as an error.
func (s *Service) UploadPhoto(ctx context.Context, req *UploadRequest) *Response {
	if req.User == nil || !req.User.EmailVerified {
		return errorResponse(StateUnauthorized, "profile incomplete, email must be verified")
	}

	extension, ok := mimeExtensions[strings.ToLower(req.ContentType)]
	if !ok {
		return errorResponse(StateUnsupportedContentType, fmt.Sprintf("unsupported content type %q", req.ContentType))
	}

	var station *models.Station
	if req.StationID != "" {
		found, err := s.stations.FindByKey(ctx, req.CountryCode, req.StationID)
		if err != nil {
			s.logger.Error("failed to resolve upload station", logging.WithField("error", err.Error()))
			return errorResponse(StateError, "internal error")
		}
		station = found
	}

	var coords models.Coordinates
	if station == nil {
		if req.Title == "" || req.Latitude == nil || req.Longitude == nil {
			return errorResponse(StateNotEnoughData, "title, latitude and longitude are required for a missing station")
		}
		coords = models.Coordinates{Lat: *req.Latitude, Lon: *req.Longitude}
		if !coords.IsValid() {
			return errorResponse(StateLatLonOutOfRange, "latitude or longitude out of range")
		}
	}

	// Pre-insert conflict check: the entry has no id yet, so nothing to
	// exclude.
	var conflict bool
	var err error
	if station != nil {
		conflict, err = s.hasStationConflict(ctx, 0, station)
	} else {
		conflict, err = s.hasCoordinateConflict(ctx, 0, coords)
	}
	if err != nil {
		s.logger.Error("failed to check upload conflict", logging.WithField("error", err.Error()))
		return errorResponse(StateError, "internal error")
	}

	entry := &models.InboxEntry{
		PhotographerID: req.User.ID,
		Extension:      extension,
		Comment:        req.Comment,
		Active:         req.Active,
		CreatedAt:      time.Now(),
	}
	if station != nil {
		entry.CountryCode = station.Key.Country
		entry.StationID = station.Key.ID
	} else {
		entry.CountryCode = req.CountryCode
		entry.Title = req.Title
		entry.Coordinates = coords
	}

	id, err := s.entries.Insert(ctx, entry)
	if err != nil {
		s.logger.Error("failed to insert inbox entry", logging.WithField("error", err.Error()))
		return errorResponse(StateError, "internal error")
	}
	entry.ID = id
	entry.PhotographerNickname = req.User.Name
	filename := entry.Filename()

	crc, err := s.storage.StoreUpload(req.Body, filename)
	if err != nil {
		var tooLarge *photostorage.TooLargeError
		if errors.As(err, &tooLarge) {
			return errorResponse(StatePhotoTooLarge, tooLarge.Error())
		}
		// The entry row stays pending and inspectable; the user can retry
		// under a new id.
		s.logger.Error("failed to store upload",
			logging.WithFields(map[string]interface{}{"entry": id, "error": err.Error()}))
		return errorResponse(StateError, "failed to store upload")
	}
	if err := s.entries.UpdateChecksum(ctx, id, crc); err != nil {
		s.logger.Error("failed to store upload checksum",
			logging.WithFields(map[string]interface{}{"entry": id, "error": err.Error()}))
	}

	s.notifyUpload(entry, station, conflict, req.ClientInfo)

	state := StateReview
	if conflict {
		state = StateConflict
	}
	return &Response{
		State:    state,
		ID:       id,
		Filename: filename,
		InboxURL: s.inboxBaseURL + "/" + filename,
		CRC32:    crc,
	}
}

func (s *Service) notifyUpload(entry *models.InboxEntry, station *models.Station, conflict bool, clientInfo string) {
	var b strings.Builder
	if station != nil {
		fmt.Fprintf(&b, "New photo upload for %s - %s:%s",
			station.Title, station.Key.Country, station.Key.ID)
	} else {
		fmt.Fprintf(&b, "Photo upload for missing station %s at https://map.railway-stations.org/index.php?mlat=%v&mlon=%v",
			entry.Title, entry.Coordinates.Lat, entry.Coordinates.Lon)
	}
	if conflict {
		b.WriteString(" (possible duplicate!)")
	}
	if entry.Comment != "" {
		b.WriteString("\n" + entry.Comment)
	}
	b.WriteString("\n" + s.inboxBaseURL + "/" + entry.Filename())
	if clientInfo != "" {
		b.WriteString("\nvia " + clientInfo)
	}

	s.monitor.SendPhotoMessage(b.String(), s.storage.UploadFilePath(entry.Filename()))
}

// ReportProblem records a problem report against an existing station.
func (s *Service) ReportProblem(ctx context.Context, report *models.ProblemReport, user *models.User, clientInfo string) *Response {
	if user == nil || !user.EmailVerified {
		return errorResponse(StateUnauthorized, "profile incomplete, email must be verified")
	}
	if !report.Type.IsValid() {
		return errorResponse(StateNotEnoughData, "problem report type is mandatory")
	}
	if strings.TrimSpace(report.Comment) == "" {
		return errorResponse(StateNotEnoughData, "comment is mandatory")
	}

	station, err := s.stations.FindByKey(ctx, report.CountryCode, report.StationID)
	if err != nil {
		s.logger.Error("failed to resolve reported station", logging.WithField("error", err.Error()))
		return errorResponse(StateError, "internal error")
	}
	if station == nil {
		return errorResponse(StateNotEnoughData, "station not found")
	}
	if report.Type.NeedsPhoto() && !station.HasPhoto() {
		return errorResponse(StateNotEnoughData, "station has no photo")
	}

	var coords models.Coordinates
	if report.Type == models.ProblemWrongLocation {
		if report.Coordinates.HasZeroCoords() {
			return errorResponse(StateNotEnoughData, "coordinates are mandatory for a location problem")
		}
		if !report.Coordinates.IsValid() {
			return errorResponse(StateLatLonOutOfRange, "latitude or longitude out of range")
		}
		coords = report.Coordinates
	}

	entry := &models.InboxEntry{
		CountryCode:       station.Key.Country,
		StationID:         station.Key.ID,
		Coordinates:       coords,
		PhotographerID:    user.ID,
		Comment:           report.Comment,
		ProblemReportType: report.Type,
		CreatedAt:         time.Now(),
	}
	id, err := s.entries.Insert(ctx, entry)
	if err != nil {
		s.logger.Error("failed to insert problem report", logging.WithField("error", err.Error()))
		return errorResponse(StateError, "internal error")
	}

	message := fmt.Sprintf("New problem report for %s - %s:%s\n%s: %s",
		station.Title, station.Key.Country, station.Key.ID, report.Type, report.Comment)
	if clientInfo != "" {
		message += "\nvia " + clientInfo
	}
	s.monitor.SendMessage(message)

	return &Response{State: StateReview, ID: id}
}

// CalculateState derives the lifecycle state of an entry. Pending entries are
// re-checked for conflicts against the current catalog; intake and admin
// listing observe identical conflict rules.
func (s *Service) CalculateState(ctx context.Context, entry *models.InboxEntry) (InboxState, error) {
	if entry.Done {
		if entry.RejectReason != "" {
			return InboxStateRejected, nil
		}
		return InboxStateAccepted, nil
	}

	conflict, err := s.entryConflict(ctx, entry)
	if err != nil {
		return "", err
	}
	if conflict {
		return InboxStateConflict, nil
	}
	return InboxStateReview, nil
}

func (s *Service) entryConflict(ctx context.Context, entry *models.InboxEntry) (bool, error) {
	if entry.HasStation() {
		station, err := s.stations.FindByKey(ctx, entry.CountryCode, entry.StationID)
		if err != nil {
			return false, err
		}
		if station != nil {
			return s.hasStationConflict(ctx, entry.ID, station)
		}
		// Station vanished since submission; only coordinates are left to
		// check.
	}
	return s.hasCoordinateConflict(ctx, entry.ID, entry.Coordinates)
}

// AdminInbox lists all pending entries annotated with derived state for the
// moderation queue.
func (s *Service) AdminInbox(ctx context.Context) ([]EntryView, error) {
	entries, err := s.entries.FindPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pending entries: %w", err)
	}

	views := make([]EntryView, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		state, err := s.CalculateState(ctx, entry)
		if err != nil {
			return nil, fmt.Errorf("calculate state of entry %d: %w", entry.ID, err)
		}

		view := EntryView{
			InboxEntry: *entry,
			Conflict:   state == InboxStateConflict,
		}
		if filename := entry.Filename(); filename != "" {
			view.Processed = s.storage.IsProcessed(filename)
			view.InboxURL = s.fileURL(filename, view.Processed)
		}
		views = append(views, view)
	}
	return views, nil
}

// UserInbox reports the state of the given entry ids to their photographer.
// Ids that do not exist or belong to someone else come back as UNKNOWN.
func (s *Service) UserInbox(ctx context.Context, user *models.User, ids []int64) ([]StateQuery, error) {
	queries := make([]StateQuery, 0, len(ids))
	for _, id := range ids {
		query := StateQuery{ID: id, State: InboxStateUnknown}

		entry, err := s.entries.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load entry %d: %w", id, err)
		}
		if entry != nil && entry.PhotographerID == user.ID {
			state, err := s.CalculateState(ctx, entry)
			if err != nil {
				return nil, fmt.Errorf("calculate state of entry %d: %w", id, err)
			}
			query.CountryCode = entry.CountryCode
			query.StationID = entry.StationID
			query.Coordinates = entry.Coordinates
			query.State = state
			query.RejectReason = entry.RejectReason
			if filename := entry.Filename(); filename != "" && !entry.Done {
				query.InboxURL = s.fileURL(filename, s.storage.IsProcessed(filename))
			}
		}
		queries = append(queries, query)
	}
	return queries, nil
}

func (s *Service) fileURL(filename string, processed bool) string {
	if processed {
		return s.inboxBaseURL + "/processed/" + filename
	}
	return s.inboxBaseURL + "/" + filename
}

// PublicInbox lists pending photo uploads in their public-safe projection.
func (s *Service) PublicInbox(ctx context.Context) ([]models.PublicInboxEntry, error) {
	return s.entries.FindPublic(ctx)
}

// CountPending returns the number of entries awaiting moderation.
func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.entries.CountPending(ctx)
}

// NextZ returns the next free synthetic station id for stations missing from
// the official catalogs.
func (s *Service) NextZ(ctx context.Context) (string, error) {
	max, err := s.stations.MaxZ(ctx)
	if err != nil {
		return "", fmt.Errorf("next z station id: %w", err)
	}
	return fmt.Sprintf("Z%d", max+1), nil
}

// ProcessCommand applies one administrator decision. The entry must be
// pending; done entries are immutable and yield ErrNoPendingEntry. Any error
// during the catalog mutation leaves the entry pending.
func (s *Service) ProcessCommand(ctx context.Context, cmd Command) error {
	entry, err := s.pendingEntry(ctx, cmd.entryID())
	if err != nil {
		return err
	}

	s.logger.Info("processing inbox command",
		logging.WithFields(map[string]interface{}{
			"entry":   entry.ID,
			"command": fmt.Sprintf("%T", cmd),
		}))

	switch c := cmd.(type) {
	case RejectCommand:
		return s.reject(ctx, entry, c.Reason)

	case ImportPhotoCommand:
		if entry.IsProblemReport() {
			return ErrNotAPhotoUpload
		}
		station, err := s.findOrCreateStation(ctx, entry, nil)
		if err != nil {
			return err
		}
		return s.importUpload(ctx, entry, station, c.Resolution)

	case ImportMissingStationCommand:
		if entry.IsProblemReport() {
			return ErrNotAPhotoUpload
		}
		station, err := s.findOrCreateStation(ctx, entry, &stationProposal{
			countryCode: c.CountryCode,
			stationID:   c.StationID,
			title:       c.Title,
			ds100:       c.DS100,
			coordinates: c.Coordinates,
			active:      c.Active,
			resolution:  c.Resolution,
		})
		if err != nil {
			return err
		}
		return s.importUpload(ctx, entry, station, c.Resolution)

	case ActivateStationCommand:
		return s.setStationActive(ctx, entry, true)

	case DeactivateStationCommand:
		return s.setStationActive(ctx, entry, false)

	case DeleteStationCommand:
		station, err := s.stationForEntry(ctx, entry)
		if err != nil {
			return err
		}
		if err := s.stations.Delete(ctx, station.Key); err != nil {
			return fmt.Errorf("delete station: %w", err)
		}
		return s.markDone(ctx, entry.ID)

	case DeletePhotoCommand:
		photo, err := s.photoForEntry(ctx, entry)
		if err != nil {
			return err
		}
		if err := s.photos.Delete(ctx, photo.ID); err != nil {
			return fmt.Errorf("delete photo: %w", err)
		}
		return s.markDone(ctx, entry.ID)

	case MarkSolvedCommand:
		return s.markDone(ctx, entry.ID)

	case ChangeNameCommand:
		if strings.TrimSpace(c.Title) == "" {
			return fmt.Errorf("new station title must not be blank")
		}
		station, err := s.stationForEntry(ctx, entry)
		if err != nil {
			return err
		}
		if err := s.stations.UpdateTitle(ctx, station.Key, c.Title); err != nil {
			return fmt.Errorf("rename station: %w", err)
		}
		return s.markDone(ctx, entry.ID)

	case UpdateLocationCommand:
		if c.Coordinates.HasZeroCoords() || !c.Coordinates.IsValid() {
			return ErrInvalidCoordinates
		}
		station, err := s.stationForEntry(ctx, entry)
		if err != nil {
			return err
		}
		if err := s.stations.UpdateLocation(ctx, station.Key, c.Coordinates); err != nil {
			return fmt.Errorf("relocate station: %w", err)
		}
		return s.markDone(ctx, entry.ID)

	case PhotoOutdatedCommand:
		photo, err := s.photoForEntry(ctx, entry)
		if err != nil {
			return err
		}
		if err := s.photos.MarkOutdated(ctx, photo.ID); err != nil {
			return fmt.Errorf("mark photo outdated: %w", err)
		}
		return s.markDone(ctx, entry.ID)

	default:
		return fmt.Errorf("unsupported command type %T", cmd)
	}
}

func (s *Service) pendingEntry(ctx context.Context, id int64) (*models.InboxEntry, error) {
	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load entry %d: %w", id, err)
	}
	if entry == nil || entry.Done {
		return nil, ErrNoPendingEntry
	}
	return entry, nil
}

func (s *Service) markDone(ctx context.Context, id int64) error {
	if err := s.entries.MarkDone(ctx, id); err != nil {
		return fmt.Errorf("mark entry %d done: %w", id, err)
	}
	return nil
}

func (s *Service) reject(ctx context.Context, entry *models.InboxEntry, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("reject reason must not be blank")
	}
	if err := s.entries.MarkRejected(ctx, entry.ID, reason); err != nil {
		return fmt.Errorf("mark entry %d rejected: %w", entry.ID, err)
	}
	// Problem reports carry no file; for uploads the file move is best
	// effort, an orphaned file must not block moderation.
	if !entry.IsProblemReport() {
		if err := s.storage.Reject(entry); err != nil {
			s.logger.Error("failed to move rejected upload",
				logging.WithFields(map[string]interface{}{"entry": entry.ID, "error": err.Error()}))
		}
	}
	return nil
}

func (s *Service) setStationActive(ctx context.Context, entry *models.InboxEntry, active bool) error {
	station, err := s.stationForEntry(ctx, entry)
	if err != nil {
		return err
	}
	if err := s.stations.UpdateActive(ctx, station.Key, active); err != nil {
		return fmt.Errorf("update station active: %w", err)
	}
	return s.markDone(ctx, entry.ID)
}

func (s *Service) stationForEntry(ctx context.Context, entry *models.InboxEntry) (*models.Station, error) {
	station, err := s.stations.FindByKey(ctx, entry.CountryCode, entry.StationID)
	if err != nil {
		return nil, fmt.Errorf("load station: %w", err)
	}
	if station == nil {
		return nil, ErrStationNotFound
	}
	return station, nil
}

// photoForEntry resolves the photo a problem report is about: the primary
// photo of the target station, falling back to its first photo.
func (s *Service) photoForEntry(ctx context.Context, entry *models.InboxEntry) (*models.Photo, error) {
	station, err := s.stationForEntry(ctx, entry)
	if err != nil {
		return nil, err
	}
	if photo := station.PrimaryPhoto(); photo != nil {
		return photo, nil
	}
	if len(station.Photos) > 0 {
		return &station.Photos[0], nil
	}
	return nil, ErrNoPhoto
}

// stationProposal describes a station to create during import, taken from an
// ImportMissingStationCommand.
type stationProposal struct {
	countryCode string
	stationID   string
	title       string
	ds100       string
	coordinates *models.Coordinates
	active      bool
	resolution  ConflictResolution
}

// findOrCreateStation resolves the import target. An entry bound to an
// existing station wins; only unbound entries may create a station from the
// proposal. A bound entry whose station vanished fails with
// ErrStationNotFound, as does an unbound entry without a proposal.
func (s *Service) findOrCreateStation(ctx context.Context, entry *models.InboxEntry, proposal *stationProposal) (*models.Station, error) {
	station, err := s.stations.FindByKey(ctx, entry.CountryCode, entry.StationID)
	if err != nil {
		return nil, fmt.Errorf("load station: %w", err)
	}
	if station != nil {
		return station, nil
	}
	if entry.HasStation() || proposal == nil {
		return nil, ErrStationNotFound
	}

	station, err = s.stations.FindByKey(ctx, proposal.countryCode, proposal.stationID)
	if err != nil {
		return nil, fmt.Errorf("load proposed station: %w", err)
	}
	if station != nil {
		return station, nil
	}

	country, err := s.findCountry(ctx, proposal.countryCode)
	if err != nil {
		return nil, fmt.Errorf("load country: %w", err)
	}
	if country == nil {
		return nil, ErrCountryNotFound
	}
	if strings.TrimSpace(proposal.stationID) == "" {
		return nil, ErrBlankStationID
	}

	coords := entry.Coordinates
	if proposal.coordinates != nil {
		coords = *proposal.coordinates
	}
	if coords.HasZeroCoords() || !coords.IsValid() {
		return nil, ErrInvalidCoordinates
	}

	conflict, err := s.hasCoordinateConflict(ctx, entry.ID, coords)
	if err != nil {
		return nil, fmt.Errorf("check coordinate conflict: %w", err)
	}
	if conflict && !proposal.resolution.SolvesStationConflict() {
		return nil, ErrNearbyStation
	}

	title := proposal.title
	if title == "" {
		title = entry.Title
	}

	station = &models.Station{
		Key:         models.StationKey{Country: country.Code, ID: proposal.stationID},
		Title:       title,
		Coordinates: coords,
		DS100:       proposal.ds100,
		Active:      proposal.active,
	}
	// A concurrent import may win the race on the station key; the store
	// reports that as ErrStationExists, surfaced as a failed command.
	if err := s.stations.Insert(ctx, station); err != nil {
		return nil, fmt.Errorf("create station: %w", err)
	}
	return station, nil
}

// importUpload writes the photo record, moves the file into the published
// photo tree, marks the entry done and announces the photo. The entry is
// only marked done after the catalog mutation and file move succeeded; a
// failed announcement is logged but does not fail the import.
func (s *Service) importUpload(ctx context.Context, entry *models.InboxEntry, station *models.Station, resolution ConflictResolution) error {
	photographer, err := s.users.FindByID(ctx, entry.PhotographerID)
	if err != nil {
		return fmt.Errorf("load photographer: %w", err)
	}
	if photographer == nil {
		return fmt.Errorf("photographer %d not found", entry.PhotographerID)
	}

	country, err := s.findCountry(ctx, station.Key.Country)
	if err != nil {
		return fmt.Errorf("load country: %w", err)
	}

	photo := &models.Photo{
		StationKey:   station.Key,
		URLPath:      "/" + station.Key.Country + "/" + station.Key.ID + "." + entry.Extension,
		Photographer: photographer,
		License:      licenseFor(photographer, country),
		CreatedAt:    time.Now(),
	}

	switch {
	case !station.HasPhoto():
		photo.Primary = true
		if photo.ID, err = s.photos.Insert(ctx, photo); err != nil {
			return fmt.Errorf("insert photo: %w", err)
		}

	case !resolution.SolvesPhotoConflict():
		return ErrStationHasPhoto

	case resolution == ResolutionOverwriteExistingPhoto:
		existing := station.PrimaryPhoto()
		if existing == nil {
			existing = &station.Photos[0]
		}
		photo.ID = existing.ID
		photo.Primary = existing.Primary
		if err := s.photos.Update(ctx, photo); err != nil {
			return fmt.Errorf("overwrite photo: %w", err)
		}

	case resolution == ResolutionImportAsNewPrimaryPhoto:
		photo.Primary = true
		if photo.ID, err = s.photos.InsertPrimary(ctx, photo); err != nil {
			return fmt.Errorf("insert primary photo: %w", err)
		}

	default: // ResolutionImportAsNewSecondaryPhoto
		if photo.ID, err = s.photos.Insert(ctx, photo); err != nil {
			return fmt.Errorf("insert secondary photo: %w", err)
		}
	}

	if _, err := s.storage.ImportPhoto(entry, station); err != nil {
		return fmt.Errorf("import photo file: %w", err)
	}
	if err := s.markDone(ctx, entry.ID); err != nil {
		return err
	}

	if err := s.announcer.AnnounceNewPhoto(station, entry, photo); err != nil {
		// The catalog mutation has committed; nothing to roll back.
		s.logger.Error("failed to announce new photo",
			logging.WithFields(map[string]interface{}{"entry": entry.ID, "error": err.Error()}))
	}
	return nil
}

// licenseFor selects the license of an imported photo: the country's
// override wins over the photographer's personal license.
func licenseFor(photographer *models.User, country *models.Country) models.License {
	if country != nil && country.OverrideLicense != "" {
		return country.OverrideLicense
	}
	return photographer.License
}

// findCountry looks up a country, serving repeated lookups from the cache.
// The memory backend returns the stored value, the Redis backend raw JSON;
// anything else falls through to the database.
func (s *Service) findCountry(ctx context.Context, code string) (*models.Country, error) {
	key := "country:" + strings.ToLower(code)
	if cached, ok := s.cache.Get(key); ok {
		switch v := cached.(type) {
		case models.Country:
			return &v, nil
		case json.RawMessage:
			var country models.Country
			if err := json.Unmarshal(v, &country); err == nil {
				return &country, nil
			}
		}
	}

	country, err := s.countries.FindByCode(ctx, code)
	if err != nil || country == nil {
		return country, err
	}
	s.cache.Set(key, *country)
	return country, nil
}
