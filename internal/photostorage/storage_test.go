package photostorage

import (
	"bytes"
	"errors"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/mbalthasar/stationpix/internal/models"
	"github.com/mbalthasar/stationpix/internal/testutil"
)

func newTestStorage(t *testing.T, maxSize int64) *Storage {
	t.Helper()
	root := t.TempDir()
	storage, err := New(
		filepath.Join(root, "inbox"),
		filepath.Join(root, "inbox", "processed"),
		filepath.Join(root, "inbox", "rejected"),
		filepath.Join(root, "photos"),
		maxSize,
		testutil.NullLogger(),
	)
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}
	return storage
}

func TestStoreUpload(t *testing.T) {
	storage := newTestStorage(t, 1024)
	payload := []byte("fake jpeg bytes")

	crc, err := storage.StoreUpload(bytes.NewReader(payload), "1.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := int64(crc32.ChecksumIEEE(payload)); crc != want {
		t.Errorf("crc = %d, want %d", crc, want)
	}

	stored, err := os.ReadFile(storage.UploadFilePath("1.jpg"))
	if err != nil {
		t.Fatalf("read stored upload: %v", err)
	}
	if !bytes.Equal(stored, payload) {
		t.Error("stored bytes differ from upload")
	}

	// No temp files may survive.
	files, _ := os.ReadDir(storage.inboxDir)
	for _, f := range files {
		if filepath.Ext(f.Name()) == ".tmp" {
			t.Errorf("leftover temp file %s", f.Name())
		}
	}
}

func TestStoreUploadTooLarge(t *testing.T) {
	storage := newTestStorage(t, 8)

	_, err := storage.StoreUpload(bytes.NewReader(make([]byte, 9)), "1.jpg")
	var tooLarge *TooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("err = %v, want TooLargeError", err)
	}
	if tooLarge.MaxSize != 8 {
		t.Errorf("maxSize = %d, want 8", tooLarge.MaxSize)
	}
	if _, err := os.Stat(filepath.Join(storage.inboxDir, "1.jpg")); !os.IsNotExist(err) {
		t.Error("oversized upload must not be kept")
	}
}

func TestUploadFilePathPrefersProcessed(t *testing.T) {
	storage := newTestStorage(t, 1024)
	if storage.IsProcessed("1.jpg") {
		t.Error("IsProcessed without file = true")
	}

	if err := os.WriteFile(filepath.Join(storage.processedDir, "1.jpg"), []byte("edited"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !storage.IsProcessed("1.jpg") {
		t.Error("IsProcessed with file = false")
	}
	if got := storage.UploadFilePath("1.jpg"); got != filepath.Join(storage.processedDir, "1.jpg") {
		t.Errorf("UploadFilePath = %s, want processed copy", got)
	}
}

func TestImportPhoto(t *testing.T) {
	storage := newTestStorage(t, 1024)
	entry := &models.InboxEntry{ID: 1, Extension: "jpg"}
	station := &models.Station{Key: models.StationKey{Country: "de", ID: "4711"}}

	if _, err := storage.StoreUpload(bytes.NewReader([]byte("photo")), entry.Filename()); err != nil {
		t.Fatal(err)
	}

	urlPath, err := storage.ImportPhoto(entry, station)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if urlPath != "/de/4711.jpg" {
		t.Errorf("urlPath = %s, want /de/4711.jpg", urlPath)
	}
	if _, err := os.Stat(filepath.Join(storage.photosDir, "de", "4711.jpg")); err != nil {
		t.Errorf("imported file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(storage.inboxDir, "1.jpg")); !os.IsNotExist(err) {
		t.Error("upload must be moved out of the inbox")
	}
}

func TestImportPhotoPrefersProcessedAndCleansUp(t *testing.T) {
	storage := newTestStorage(t, 1024)
	entry := &models.InboxEntry{ID: 1, Extension: "jpg"}
	station := &models.Station{Key: models.StationKey{Country: "de", ID: "4711"}}

	if _, err := storage.StoreUpload(bytes.NewReader([]byte("original")), entry.Filename()); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(storage.processedDir, "1.jpg"), []byte("edited"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := storage.ImportPhoto(entry, station); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	imported, err := os.ReadFile(filepath.Join(storage.photosDir, "de", "4711.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	if string(imported) != "edited" {
		t.Error("processed copy must win over the original")
	}
	if _, err := os.Stat(filepath.Join(storage.inboxDir, "1.jpg")); !os.IsNotExist(err) {
		t.Error("leftover original must be removed")
	}
}

func TestImportPhotoDisambiguatesCollisions(t *testing.T) {
	storage := newTestStorage(t, 1024)
	station := &models.Station{Key: models.StationKey{Country: "de", ID: "4711"}}

	for i, entry := range []*models.InboxEntry{
		{ID: 1, Extension: "jpg"},
		{ID: 2, Extension: "jpg"},
	} {
		if _, err := storage.StoreUpload(bytes.NewReader([]byte{byte(i)}), entry.Filename()); err != nil {
			t.Fatal(err)
		}
		if _, err := storage.ImportPhoto(entry, station); err != nil {
			t.Fatalf("import %d: %v", entry.ID, err)
		}
	}

	if _, err := os.Stat(filepath.Join(storage.photosDir, "de", "4711.jpg")); err != nil {
		t.Errorf("first import missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(storage.photosDir, "de", "4711_1.jpg")); err != nil {
		t.Errorf("second import not disambiguated: %v", err)
	}
}

func TestReject(t *testing.T) {
	storage := newTestStorage(t, 1024)
	entry := &models.InboxEntry{ID: 1, Extension: "jpg"}

	if _, err := storage.StoreUpload(bytes.NewReader([]byte("photo")), entry.Filename()); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(storage.processedDir, "1.jpg"), []byte("edited"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := storage.Reject(entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(storage.rejectedDir, "1.jpg")); err != nil {
		t.Errorf("rejected file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(storage.processedDir, "1.jpg")); !os.IsNotExist(err) {
		t.Error("processed copy must be removed on rejection")
	}
}

func TestRejectProblemReportIsNoOp(t *testing.T) {
	storage := newTestStorage(t, 1024)
	entry := &models.InboxEntry{ID: 1, ProblemReportType: models.ProblemOther}

	if err := storage.Reject(entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
