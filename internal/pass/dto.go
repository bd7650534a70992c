package pass

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/frahmantamala/pass-management/internal"
	"github.com/frahmantamala/pass-management/internal/core/common/validation"
)

const (
	MaxPurposeLength  = 500
	MaxLocationLength = 255
	MaxNotesLength    = 1000
)

// CreatePassDTO is the body of POST /passes. The owner is always the caller,
// so there is no user field.
type CreatePassDTO struct {
	Type      string `json:"type"`
	Purpose   string `json:"purpose"`
	Location  string `json:"location,omitempty"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Notes     string `json:"notes,omitempty"`
}

// Draft is a validated CreatePassDTO.
type Draft struct {
	Type      Type
	Purpose   string
	Location  string
	StartDate time.Time
	EndDate   time.Time
	Notes     string
}

func (d CreatePassDTO) Validate() (*Draft, *internal.AppError) {
	draft := &Draft{
		Type:     Type(strings.TrimSpace(d.Type)),
		Purpose:  strings.TrimSpace(d.Purpose),
		Location: strings.TrimSpace(d.Location),
		Notes:    strings.TrimSpace(d.Notes),
	}

	start, startErr := validation.ParseTimestamp("startDate", d.StartDate)
	end, endErr := validation.ParseTimestamp("endDate", d.EndDate)
	draft.StartDate, draft.EndDate = start, end

	v := validation.NewValidator()
	v.Field("type", string(draft.Type)).
		Required().
		OneOf(typeNames(), internal.ErrCodeInvalidPassType)
	v.Field("purpose", draft.Purpose).
		Required().
		MaxLength(MaxPurposeLength)
	v.Field("location", draft.Location).
		MaxLength(MaxLocationLength)
	v.Field("startDate", d.StartDate).
		Required().
		Custom(parsed(startErr))
	v.Field("endDate", d.EndDate).
		Required().
		Custom(parsed(endErr))
	if startErr == nil && endErr == nil && strings.TrimSpace(d.StartDate) != "" && strings.TrimSpace(d.EndDate) != "" {
		v.Field("endDate", end).
			After("startDate", start)
	}
	v.Field("notes", draft.Notes).
		MaxLength(MaxNotesLength)

	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}
	return draft, nil
}

func parsed(parseErr *internal.AppError) func(interface{}) *internal.AppError {
	return func(interface{}) *internal.AppError {
		return parseErr
	}
}

// RejectDTO is the optional JSON body of the reject endpoint.
type RejectDTO struct {
	Reason string `json:"reason"`
}

// ValidateReason checks a rejection reason against maxLen. The reason is
// stored verbatim; trimming is only used to detect blank input.
func ValidateReason(reason string, maxLen int) *internal.AppError {
	if strings.TrimSpace(reason) == "" {
		return internal.NewValidationFieldError("reason", "rejection reason is required", internal.ErrCodeReasonRequired)
	}
	if utf8.RuneCountInString(reason) > maxLen {
		message := fmt.Sprintf("rejection reason must not exceed %d characters", maxLen)
		return internal.NewValidationFieldError("reason", message, internal.ErrCodeReasonTooLong)
	}
	return nil
}
