package pass

import (
	"time"

	passDatamodel "github.com/frahmantamala/pass-management/internal/core/datamodel/pass"
)

type Type string

const (
	TypeTemporary  Type = "TEMPORARY_PASS"
	TypePermanent  Type = "PERMANENT_PASS"
	TypeVehicle    Type = "VEHICLE_PASS"
	TypeVisitor    Type = "VISITOR_PASS"
	TypeEquipment  Type = "EQUIPMENT_PASS"
	TypeAfterHours Type = "AFTER_HOURS_ACCESS"
)

var AllTypes = []Type{TypeTemporary, TypePermanent, TypeVehicle, TypeVisitor, TypeEquipment, TypeAfterHours}

func (t Type) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

func typeNames() []string {
	names := make([]string, len(AllTypes))
	for i, t := range AllTypes {
		names[i] = string(t)
	}
	return names
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Decided reports whether the status is terminal.
func (s Status) Decided() bool {
	return s == StatusApproved || s == StatusRejected
}

// Pass is a pass request together with its owner's profile and the name of
// the deciding administrator.
type Pass struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"userId"`
	UserName        string     `json:"userName"`
	UserEmail       string     `json:"userEmail"`
	Department      string     `json:"department"`
	Type            Type       `json:"type"`
	Purpose         string     `json:"purpose"`
	Location        string     `json:"location,omitempty"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         time.Time  `json:"endDate"`
	Status          Status     `json:"status"`
	RequestedAt     time.Time  `json:"requestedAt"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	ApprovedByID    *int64     `json:"approvedById,omitempty"`
	ApprovedBy      string     `json:"approvedBy,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

func (p *Pass) CanBeDecided() bool {
	return p.Status == StatusPending
}

// Decision is the single PENDING to APPROVED/REJECTED transition applied to a
// pass. Reason is empty for approvals.
type Decision struct {
	PassID    int64
	Status    Status
	DecidedBy int64
	DecidedAt time.Time
	Reason    string
}

func NewPass(ownerID int64, draft Draft, requestedAt time.Time) *Pass {
	return &Pass{
		UserID:      ownerID,
		Type:        draft.Type,
		Purpose:     draft.Purpose,
		Location:    draft.Location,
		StartDate:   draft.StartDate,
		EndDate:     draft.EndDate,
		Notes:       draft.Notes,
		Status:      StatusPending,
		RequestedAt: requestedAt,
	}
}

func ToDataModel(p *Pass) *passDatamodel.Pass {
	return &passDatamodel.Pass{
		ID:              p.ID,
		UserID:          p.UserID,
		Type:            string(p.Type),
		Purpose:         p.Purpose,
		Location:        optional(p.Location),
		StartDate:       p.StartDate.UTC(),
		EndDate:         p.EndDate.UTC(),
		Notes:           optional(p.Notes),
		Status:          string(p.Status),
		RequestedAt:     p.RequestedAt.UTC(),
		DecidedBy:       p.ApprovedByID,
		DecidedAt:       p.ApprovedAt,
		RejectionReason: optional(p.RejectionReason),
		UpdatedAt:       p.RequestedAt.UTC(),
	}
}

func FromDataModel(row *passDatamodel.PassWithOwner) *Pass {
	p := &Pass{
		ID:              row.ID,
		UserID:          row.UserID,
		UserName:        row.OwnerName,
		UserEmail:       row.OwnerEmail,
		Department:      row.OwnerDepartment,
		Type:            Type(row.Type),
		Purpose:         row.Purpose,
		Location:        deref(row.Location),
		StartDate:       row.StartDate.UTC(),
		EndDate:         row.EndDate.UTC(),
		Status:          Status(row.Status),
		RequestedAt:     row.RequestedAt.UTC(),
		ApprovedByID:    row.DecidedBy,
		ApprovedBy:      deref(row.DeciderName),
		RejectionReason: deref(row.RejectionReason),
		Notes:           deref(row.Notes),
	}
	if row.DecidedAt != nil {
		t := row.DecidedAt.UTC()
		p.ApprovedAt = &t
	}
	return p
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
