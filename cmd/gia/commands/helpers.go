package commands

import (
	"fmt"
	"io"

	"github.com/fivetwenty-io/gia/internal/constants"
	"github.com/fivetwenty-io/gia/internal/events"
	"github.com/fivetwenty-io/gia/pkg/iga"
)

// confirmDeletion asks before a destructive action unless yes is set.
func confirmDeletion(in io.Reader, out io.Writer, yes bool, question string) error {
	if yes {
		return nil
	}

	confirmed, err := NewPrompter(in, out).Confirm(question, false)
	if err != nil {
		return err
	}

	if !confirmed {
		return constants.ErrDeleteNotConfirmed
	}

	return nil
}

// describeError turns not-found responses into a readable message naming
// what was missing. Other errors are wrapped with action.
func describeError(err error, action, missing string) error {
	if iga.IsNotFound(err) {
		return fmt.Errorf("%s not found: %w", missing, err)
	}

	return fmt.Errorf("failed to %s: %w", action, err)
}

// openPublisher connects to the configured event sink. It returns nil
// when no NATS URL is configured.
func openPublisher(config EventsConfig, logger iga.Logger) (*events.NATSPublisher, error) {
	if config.NATSURL == "" {
		return nil, nil //nolint:nilnil // no publisher configured
	}

	publisher, err := events.Connect(events.NATSConfig{
		URL:     config.NATSURL,
		Subject: config.Subject,
	}, logger)
	if err != nil {
		return nil, err
	}

	return publisher, nil
}
