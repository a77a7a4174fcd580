package monitor

import (
	"fmt"
	"io"
	"log"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/mbalthasar/stationpix/internal/models"
)

// Announcer publishes newly imported photos to a public channel.
type Announcer interface {
	AnnounceNewPhoto(station *models.Station, entry *models.InboxEntry, photo *models.Photo) error
}

// ShoutrrrAnnouncer announces photos through shoutrrr service URLs.
type ShoutrrrAnnouncer struct {
	sender       *router.ServiceRouter
	photoBaseURL string
}

// NewShoutrrrAnnouncer creates an announcer for the given shoutrrr URLs.
// photoBaseURL is the public URL prefix of imported photos.
func NewShoutrrrAnnouncer(urls []string, photoBaseURL string) (*ShoutrrrAnnouncer, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("at least one announce URL is required")
	}

	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, fmt.Errorf("create announce sender: %w", err)
	}
	sender.Timeout = 10 * time.Second
	sender.SetLogger(log.New(io.Discard, "", 0))

	return &ShoutrrrAnnouncer{sender: sender, photoBaseURL: photoBaseURL}, nil
}

// AnnounceNewPhoto publishes the station title, photographer and public photo
// URL.
func (a *ShoutrrrAnnouncer) AnnounceNewPhoto(station *models.Station, entry *models.InboxEntry, photo *models.Photo) error {
	message := fmt.Sprintf("%s\nby %s\n%s%s",
		station.Title, entry.PhotographerNickname, a.photoBaseURL, photo.URLPath)

	for _, err := range a.sender.Send(message, &stypes.Params{}) {
		if err != nil {
			return fmt.Errorf("announce photo: %w", err)
		}
	}
	return nil
}

// NopAnnouncer is used when no announce URLs are configured.
type NopAnnouncer struct{}

func (NopAnnouncer) AnnounceNewPhoto(*models.Station, *models.InboxEntry, *models.Photo) error {
	return nil
}
