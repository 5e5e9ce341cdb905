package handlers

import (
	"errors"

	"github.com/nvalis/GroceriesBot/internal/manager"
	"github.com/nvalis/GroceriesBot/internal/metrics"
)

// userMessage translates a typed manager error into a user-facing reply.
// Returns false for unexpected errors, which the router reports
// generically after logging.
func userMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, manager.ErrNoActiveList):
		return "❌ No active list.\nCreate one with `/new <name>` or switch with `/go <name>`.", true
	case errors.Is(err, manager.ErrDuplicateName):
		return "❌ A list with that name already exists.\nUse `/lists` to see your lists.", true
	case errors.Is(err, manager.ErrOutOfRange):
		return "❌ Invalid item number.\nUse `/list` to see the current numbers.", true
	case errors.Is(err, manager.ErrNotFound):
		return "❌ Not found. The list may have changed.\nUse `/lists` to see your lists.", true
	case errors.Is(err, manager.ErrStoreUnavailable):
		metrics.StoreErrorsTotal.Inc()
		return "❌ Storage is temporarily unavailable. Please try again.", true
	}
	return "", false
}
