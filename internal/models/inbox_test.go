package models

import "testing"

func TestProblemReportTypeIsValid(t *testing.T) {
	valid := []ProblemReportType{
		ProblemWrongName, ProblemWrongPhoto, ProblemPhotoOutdated,
		ProblemStationActive, ProblemStationInactive, ProblemWrongLocation,
		ProblemStationNonexistent, ProblemDuplicate, ProblemOther,
	}
	for _, pt := range valid {
		if !pt.IsValid() {
			t.Errorf("%s should be valid", pt)
		}
	}

	for _, pt := range []ProblemReportType{"", "BROKEN", "wrong_name"} {
		if pt.IsValid() {
			t.Errorf("%q should be invalid", pt)
		}
	}
}

func TestProblemReportTypeNeedsPhoto(t *testing.T) {
	if !ProblemWrongPhoto.NeedsPhoto() || !ProblemPhotoOutdated.NeedsPhoto() {
		t.Error("photo problems must require an existing photo")
	}
	if ProblemWrongName.NeedsPhoto() || ProblemOther.NeedsPhoto() {
		t.Error("non-photo problems must not require a photo")
	}
}

func TestInboxEntryFilename(t *testing.T) {
	entry := InboxEntry{ID: 4711, Extension: "jpg"}
	if got := entry.Filename(); got != "4711.jpg" {
		t.Errorf("Filename() = %s, want 4711.jpg", got)
	}

	report := InboxEntry{ID: 4711, ProblemReportType: ProblemOther}
	if got := report.Filename(); got != "" {
		t.Errorf("Filename() of problem report = %q, want empty", got)
	}

	unsaved := InboxEntry{Extension: "jpg"}
	if got := unsaved.Filename(); got != "" {
		t.Errorf("Filename() without id = %q, want empty", got)
	}
}

func TestInboxEntryClassification(t *testing.T) {
	upload := InboxEntry{ID: 1, Extension: "jpg"}
	if upload.IsProblemReport() {
		t.Error("upload misclassified as problem report")
	}

	report := InboxEntry{ID: 2, ProblemReportType: ProblemDuplicate}
	if !report.IsProblemReport() {
		t.Error("problem report not recognized")
	}

	bound := InboxEntry{CountryCode: "de", StationID: "4711"}
	if !bound.HasStation() {
		t.Error("bound entry not recognized")
	}
	unbound := InboxEntry{CountryCode: "de"}
	if unbound.HasStation() {
		t.Error("entry without station id must not count as bound")
	}

	withCoords := InboxEntry{Coordinates: Coordinates{Lat: 50.1, Lon: 9.1}}
	if !withCoords.HasCoords() {
		t.Error("coordinates not recognized")
	}
	zero := InboxEntry{}
	if zero.HasCoords() {
		t.Error("zero coordinates must count as unset")
	}
}
