package services

import (
	"errors"

	"bounceBackAPI/internal/apperr"
	"bounceBackAPI/internal/store"
)

// storeErr turns a store failure into an app error: a missing document
// becomes NotFound with notFoundMsg, anything else an upstream failure.
func storeErr(err error, notFoundMsg, failMsg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("%s", notFoundMsg)
	}
	return apperr.Upstream(err, "%s", failMsg)
}

func requireUID(uid string) error {
	if uid == "" {
		return apperr.Unauthenticated()
	}
	return nil
}
