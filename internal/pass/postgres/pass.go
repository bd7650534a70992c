package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/pass-management/internal"
	passDatamodel "github.com/frahmantamala/pass-management/internal/core/datamodel/pass"
	"github.com/frahmantamala/pass-management/internal/pass"
	"gorm.io/gorm"
)

const passWithOwnerColumns = `p.id, p.user_id, p.type, p.purpose, p.location, p.start_date, p.end_date,
p.notes, p.status, p.requested_at, p.decided_by, p.decided_at, p.rejection_reason,
u.full_name AS owner_name, u.email AS owner_email, COALESCE(u.department, '') AS owner_department,
d.full_name AS decider_name`

// PassRepository implements pass.Repository using GORM
type PassRepository struct {
	db *gorm.DB
}

func NewPassRepository(db *gorm.DB) *PassRepository {
	return &PassRepository{db: db}
}

// Create inserts p and assigns its id.
func (r *PassRepository) Create(ctx context.Context, p *pass.Pass) error {
	row := pass.ToDataModel(p)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	p.ID = row.ID
	return nil
}

func (r *PassRepository) GetByID(ctx context.Context, id int64) (*pass.Pass, error) {
	var rows []passDatamodel.PassWithOwner
	err := r.joined(ctx).
		Where("p.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, internal.ErrPassNotFound
	}
	return pass.FromDataModel(&rows[0]), nil
}

// ListByOwner returns ownerID's passes, most recent first.
func (r *PassRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*pass.Pass, error) {
	return r.list(r.joined(ctx).Where("p.user_id = ?", ownerID))
}

// ListAll returns every pass, most recent first.
func (r *PassRepository) ListAll(ctx context.Context) ([]*pass.Pass, error) {
	return r.list(r.joined(ctx))
}

// Decide moves a PENDING pass to its decided status with one conditional
// UPDATE, so concurrent deciders cannot both succeed.
func (r *PassRepository) Decide(ctx context.Context, d pass.Decision) (*pass.Pass, error) {
	updates := map[string]interface{}{
		"status":           string(d.Status),
		"decided_by":       d.DecidedBy,
		"decided_at":       d.DecidedAt.UTC(),
		"rejection_reason": nil,
		"updated_at":       d.DecidedAt.UTC(),
	}
	if d.Status == pass.StatusRejected {
		updates["rejection_reason"] = d.Reason
	}

	result := r.db.WithContext(ctx).
		Model(&passDatamodel.Pass{}).
		Where("id = ? AND status = ?", d.PassID, string(pass.StatusPending)).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		var current passDatamodel.Pass
		err := r.db.WithContext(ctx).Select("id", "status").Where("id = ?", d.PassID).First(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrPassNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, internal.ErrInvalidPassStatus
	}

	return r.GetByID(ctx, d.PassID)
}

func (r *PassRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("passes AS p").
		Select(passWithOwnerColumns).
		Joins("JOIN users u ON u.id = p.user_id").
		Joins("LEFT JOIN users d ON d.id = p.decided_by")
}

func (r *PassRepository) list(q *gorm.DB) ([]*pass.Pass, error) {
	var rows []passDatamodel.PassWithOwner
	if err := q.Order("p.requested_at DESC, p.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	passes := make([]*pass.Pass, 0, len(rows))
	for i := range rows {
		passes = append(passes, pass.FromDataModel(&rows[i]))
	}
	return passes, nil
}
