package photostorage

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mbalthasar/stationpix/internal/logging"
	"github.com/mbalthasar/stationpix/internal/models"
)

// TooLargeError is returned when an upload exceeds the size limit.
type TooLargeError struct {
	MaxSize int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("photo exceeds maximum size of %d bytes", e.MaxSize)
}

// Storage manages photo files on the local filesystem. Uploads land in the
// inbox directory; moderators may place an edited copy in the processed
// directory, which then wins over the original on import.
type Storage struct {
	inboxDir     string
	processedDir string
	rejectedDir  string
	photosDir    string
	maxSize      int64
	logger       *logging.Logger
}

// New creates a Storage rooted at the given directories and ensures they
// exist.
func New(inboxDir, processedDir, rejectedDir, photosDir string, maxSize int64, logger *logging.Logger) (*Storage, error) {
	for _, dir := range []string{inboxDir, processedDir, rejectedDir, photosDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	return &Storage{
		inboxDir:     inboxDir,
		processedDir: processedDir,
		rejectedDir:  rejectedDir,
		photosDir:    photosDir,
		maxSize:      maxSize,
		logger:       logger,
	}, nil
}

// StoreUpload writes the upload body to the inbox directory under filename
// and returns the CRC32 checksum of the bytes written. Bodies larger than the
// size limit are discarded and reported as TooLargeError.
//
// The body is first written to a temporary file and renamed into place, so a
// crashed upload never leaves a half-written file under the final name.
func (s *Storage) StoreUpload(body io.Reader, filename string) (int64, error) {
	tmpPath := filepath.Join(s.inboxDir, uuid.New().String()+".tmp")
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create temp upload file: %w", err)
	}
	defer os.Remove(tmpPath)

	hasher := crc32.NewIEEE()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), io.LimitReader(body, s.maxSize+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("write upload: %w", err)
	}
	if written > s.maxSize {
		return 0, &TooLargeError{MaxSize: s.maxSize}
	}

	if err := os.Rename(tmpPath, filepath.Join(s.inboxDir, filename)); err != nil {
		return 0, fmt.Errorf("store upload: %w", err)
	}

	return int64(hasher.Sum32()), nil
}

// IsProcessed reports whether a moderator-edited copy of the upload exists.
func (s *Storage) IsProcessed(filename string) bool {
	if filename == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(s.processedDir, filename))
	return err == nil
}

// UploadFilePath returns the path of the upload file, preferring the
// processed copy when one exists.
func (s *Storage) UploadFilePath(filename string) string {
	if s.IsProcessed(filename) {
		return filepath.Join(s.processedDir, filename)
	}
	return filepath.Join(s.inboxDir, filename)
}

// ImportPhoto moves the upload of entry into the photo directory of the
// station and returns the URL path of the imported photo. The processed copy
// wins over the original; a leftover original is cleaned up afterwards.
func (s *Storage) ImportPhoto(entry *models.InboxEntry, station *models.Station) (string, error) {
	filename := entry.Filename()
	if filename == "" {
		return "", fmt.Errorf("entry %d has no upload file", entry.ID)
	}

	countryDir := filepath.Join(s.photosDir, station.Key.Country)
	if err := os.MkdirAll(countryDir, 0o755); err != nil {
		return "", fmt.Errorf("create country directory: %w", err)
	}

	destName := station.Key.ID + "." + entry.Extension
	destName, err := uniqueName(countryDir, destName)
	if err != nil {
		return "", err
	}

	src := s.UploadFilePath(filename)
	if err := os.Rename(src, filepath.Join(countryDir, destName)); err != nil {
		return "", fmt.Errorf("import photo: %w", err)
	}

	// If the processed copy was imported, the untouched original is still
	// sitting in the inbox directory.
	leftover := filepath.Join(s.inboxDir, filename)
	if err := os.Remove(leftover); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove leftover upload", logging.WithField("path", leftover))
	}

	return "/" + station.Key.Country + "/" + destName, nil
}

// Reject moves the upload of entry to the rejected directory. Problem reports
// carry no file and are a no-op.
func (s *Storage) Reject(entry *models.InboxEntry) error {
	filename := entry.Filename()
	if filename == "" {
		return nil
	}

	src := filepath.Join(s.inboxDir, filename)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	if err := os.Rename(src, filepath.Join(s.rejectedDir, filename)); err != nil {
		return fmt.Errorf("move rejected upload: %w", err)
	}

	processed := filepath.Join(s.processedDir, filename)
	if err := os.Remove(processed); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove processed copy", logging.WithField("path", processed))
	}
	return nil
}

// uniqueName returns name, or name with a numeric suffix if a file with that
// name already exists in dir.
func uniqueName(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	base := name[:len(name)-len(ext)]

	candidate := name
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil {
			return "", fmt.Errorf("check photo name: %w", err)
		}
		candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
}
