package bot

import (
	"errors"
	"fmt"

	"air_bot/internal/model"
)

// ErrUnavailable is matched by every error reporting that the provider has
// no publishable data for the requested horizon.
var ErrUnavailable = errors.New("data not available")

// Episode availability errors.
var (
	ErrNoEpisode         = fmt.Errorf("no pollution episode today or tomorrow: %w", ErrUnavailable)
	ErrNoEpisodeTomorrow = fmt.Errorf("no pollution episode tomorrow: %w", ErrUnavailable)
)

// UnknownActionError is returned for an action the provider does not support.
type UnknownActionError struct {
	Provider string
	Action   model.Action
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown %s action: %q", e.Provider, e.Action)
}

func bulletinUnavailable(h model.Horizon) error {
	return fmt.Errorf("bulletin (%s) is not available, come back later: %w", DayName(h), ErrUnavailable)
}
