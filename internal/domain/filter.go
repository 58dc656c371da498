package domain

import (
	"net/url"
	"strings"
)

// TaskFilter narrows a task listing. Nil fields do not constrain the result;
// all set fields must match.
type TaskFilter struct {
	StatusID   *int64
	ExecutorID *int64
	LabelID    *int64
	CreatorID  *int64
}

// Query parameter names understood by ParseTaskFilter.
const (
	FilterStatus        = "status"
	FilterExecutor      = "executor"
	FilterLabel         = "label"
	FilterIsCreatorUser = "isCreatorUser"
)

// ParseTaskFilter builds a TaskFilter from query parameters. Missing, empty or
// malformed ids leave the corresponding field unset. isCreatorUser restricts
// the listing to tasks created by actorID and is ignored without an
// authenticated actor.
func ParseTaskFilter(q url.Values, actorID int64) TaskFilter {
	var f TaskFilter

	if id, ok := ParseID(q.Get(FilterStatus)); ok {
		f.StatusID = &id
	}
	if id, ok := ParseID(q.Get(FilterExecutor)); ok {
		f.ExecutorID = &id
	}
	if id, ok := ParseID(q.Get(FilterLabel)); ok {
		f.LabelID = &id
	}
	if actorID > 0 && isTruthy(q.Get(FilterIsCreatorUser)) {
		creator := actorID
		f.CreatorID = &creator
	}

	return f
}

// Empty reports whether no field constrains the listing.
func (f TaskFilter) Empty() bool {
	return f.StatusID == nil && f.ExecutorID == nil && f.LabelID == nil && f.CreatorID == nil
}

// Values renders the filter back into query parameters, for echoing the
// active filter to clients.
func (f TaskFilter) Values() url.Values {
	v := url.Values{}
	set := func(key string, id *int64) {
		if id != nil {
			v.Set(key, formatID(*id))
		}
	}
	set(FilterStatus, f.StatusID)
	set(FilterExecutor, f.ExecutorID)
	set(FilterLabel, f.LabelID)
	if f.CreatorID != nil {
		v.Set(FilterIsCreatorUser, "on")
	}
	return v
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}
