package monitor

import (
	"fmt"
	"io"
	"log"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/mbalthasar/stationpix/internal/logging"
)

// Monitor notifies the moderation channel about inbox activity. Delivery is
// best effort; implementations must never fail the calling operation.
type Monitor interface {
	SendMessage(message string)
	SendPhotoMessage(message, photoPath string)
}

// ShoutrrrMonitor delivers messages through one or more shoutrrr service
// URLs.
type ShoutrrrMonitor struct {
	sender *router.ServiceRouter
	logger *logging.Logger
}

// NewShoutrrr creates a monitor for the given shoutrrr URLs.
func NewShoutrrr(urls []string, logger *logging.Logger) (*ShoutrrrMonitor, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("at least one monitor URL is required")
	}

	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, fmt.Errorf("create monitor sender: %w", err)
	}
	sender.Timeout = 10 * time.Second
	sender.SetLogger(log.New(io.Discard, "", 0))

	return &ShoutrrrMonitor{sender: sender, logger: logger}, nil
}

// SendMessage delivers a plain text message. Failures are logged, not
// returned.
func (m *ShoutrrrMonitor) SendMessage(message string) {
	for _, err := range m.sender.Send(message, &stypes.Params{}) {
		if err != nil {
			m.logger.Error("failed to send monitor message", logging.WithField("error", err.Error()))
		}
	}
}

// SendPhotoMessage delivers a message referring to an uploaded photo file.
// Most shoutrrr services cannot attach files, so the path travels in the
// message body.
func (m *ShoutrrrMonitor) SendPhotoMessage(message, photoPath string) {
	m.SendMessage(message + "\n" + photoPath)
}

// LogMonitor writes messages to the application log. It is the fallback when
// no monitor URLs are configured.
type LogMonitor struct {
	logger *logging.Logger
}

// NewLog creates a log-only monitor.
func NewLog(logger *logging.Logger) *LogMonitor {
	return &LogMonitor{logger: logger}
}

func (m *LogMonitor) SendMessage(message string) {
	m.logger.Info("monitor message", logging.WithField("message", message))
}

func (m *LogMonitor) SendPhotoMessage(message, photoPath string) {
	m.logger.Info("monitor message",
		logging.WithFields(map[string]interface{}{
			"message": message,
			"photo":   photoPath,
		}))
}
