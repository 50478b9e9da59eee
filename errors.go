package relay

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is matched by fetch errors caused by a 401 or 403
	// response. Callers conventionally redirect to Profile.FxaLoginURL.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPlanUnavailable is returned by the price and subscribe-link
	// getters when the plan table has no entry for its own country code.
	ErrPlanUnavailable = errors.New("plan not available in country")

	// ErrEmptyAPIToken is returned by AliasClient when no API token is set.
	ErrEmptyAPIToken = errors.New("empty api token")
)

// FetchError is returned when the backend answers with a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected response %s", e.URL, e.Status)
}

// Is reports 401 and 403 responses as ErrUnauthorized.
func (e *FetchError) Is(target error) bool {
	if target != ErrUnauthorized {
		return false
	}
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}
