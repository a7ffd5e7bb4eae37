// Package session carries the authenticated account handle into the ledger
// and inventory services.
package session

import (
	"strings"

	"finanzas-backend/internal/apperr"
)

// Handle identifies the account every operation acts on.
type Handle struct {
	UID string
}

func New(uid string) (Handle, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return Handle{}, apperr.Validation("session uid is empty")
	}
	return Handle{UID: uid}, nil
}

func (h Handle) Valid() bool { return h.UID != "" }
