package store

import (
	"github.com/greenloop/ecopickup/internal/models"
)

// TransitionTable maps each status to the statuses a request may move to.
type TransitionTable map[models.Status][]models.Status

// DefaultTransitions is the forward-only pickup lifecycle. Cancellation is
// allowed from any non-terminal state.
func DefaultTransitions() TransitionTable {
	return TransitionTable{
		models.StatusPending:    {models.StatusAccepted, models.StatusCancelled},
		models.StatusAccepted:   {models.StatusInProgress, models.StatusCancelled},
		models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
		models.StatusCompleted:  {},
		models.StatusCancelled:  {},
	}
}

func (t TransitionTable) Allowed(from, to models.Status) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}
