package pass

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/pass-management/internal"
)

// StatusFilter selects passes by status. FilterAll keeps every pass.
type StatusFilter string

const FilterAll StatusFilter = "ALL"

// ParseStatusFilter accepts "", "ALL" or a status name, case-insensitively.
func ParseStatusFilter(raw string) (StatusFilter, *internal.AppError) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" || raw == string(FilterAll) {
		return FilterAll, nil
	}
	if Status(raw).Valid() {
		return StatusFilter(raw), nil
	}
	message := fmt.Sprintf("status must be one of ALL, %s, %s, %s", StatusPending, StatusApproved, StatusRejected)
	return "", internal.NewValidationFieldError("status", message, internal.ErrCodeInvalidStatus)
}

// FilterByStatus returns the passes matching filter in their input order.
func FilterByStatus(passes []*Pass, filter StatusFilter) []*Pass {
	if filter == FilterAll || filter == "" {
		return passes
	}
	out := make([]*Pass, 0, len(passes))
	for _, p := range passes {
		if p.Status == Status(filter) {
			out = append(out, p)
		}
	}
	return out
}

type Summary struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// Summarize counts passes per status. Total is always the sum of the three
// counters.
func Summarize(passes []*Pass) Summary {
	var s Summary
	for _, p := range passes {
		switch p.Status {
		case StatusPending:
			s.Pending++
		case StatusApproved:
			s.Approved++
		case StatusRejected:
			s.Rejected++
		}
	}
	s.Total = s.Pending + s.Approved + s.Rejected
	return s
}
