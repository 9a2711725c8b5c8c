package fsm

import (
	"sort"

	"outswap/internal/models"
)

type status = models.RentalStatus

var transitions = map[status]map[status]struct{}{
	models.RentalPending: {
		models.RentalConfirmed: {},
		models.RentalCancelled: {},
	},
	models.RentalConfirmed: {
		models.RentalActive:    {},
		models.RentalCancelled: {},
		models.RentalDisputed:  {},
	},
	models.RentalActive: {
		models.RentalReturned:  {},
		models.RentalCancelled: {},
		models.RentalDisputed:  {},
	},
	models.RentalReturned: {
		models.RentalDisputed: {},
	},
	models.RentalDisputed: {
		models.RentalCancelled: {},
	},
	models.RentalCancelled: {},
}

// CanTransition returns whether a rental may move from one status to another.
// Staying in the same status is never a transition.
func CanTransition(from, to models.RentalStatus) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// Sources lists, in a stable order, every status that may move to the target.
func Sources(to models.RentalStatus) []models.RentalStatus {
	var from []models.RentalStatus
	for s, allowed := range transitions {
		if _, ok := allowed[to]; ok {
			from = append(from, s)
		}
	}
	sort.Slice(from, func(i, j int) bool { return from[i] < from[j] })
	return from
}

// Terminal reports whether no transition leaves the status.
func Terminal(s models.RentalStatus) bool {
	allowed, ok := transitions[s]
	return ok && len(allowed) == 0
}

// Known reports whether the status belongs to the rental lifecycle.
func Known(s models.RentalStatus) bool {
	_, ok := transitions[s]
	return ok
}
