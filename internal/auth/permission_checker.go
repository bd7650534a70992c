package auth

import "context"

// Operation names an action guarded by a role check.
type Operation string

const (
	OpCreatePass  Operation = "pass:create"
	OpListOwnPass Operation = "pass:list_own"
	OpViewPass    Operation = "pass:view"
	OpListAllPass Operation = "pass:list_all"
	OpApprovePass Operation = "pass:approve"
	OpRejectPass  Operation = "pass:reject"
	OpPassSummary Operation = "pass:summary"
	OpViewProfile Operation = "user:me"
)

var (
	anyRole   = []Role{RoleEmployee, RoleAdmin}
	adminOnly = []Role{RoleAdmin}
)

// DefaultPolicy maps every operation to the set of roles allowed to call it.
var DefaultPolicy = map[Operation][]Role{
	OpCreatePass:  anyRole,
	OpListOwnPass: anyRole,
	OpViewPass:    anyRole,
	OpViewProfile: anyRole,
	OpListAllPass: adminOnly,
	OpApprovePass: adminOnly,
	OpRejectPass:  adminOnly,
	OpPassSummary: adminOnly,
}

type PermissionChecker interface {
	Allowed(role Role, op Operation) bool
}

type RoleChecker struct {
	policy map[Operation][]Role
}

func NewPermissionChecker() *RoleChecker {
	return &RoleChecker{policy: DefaultPolicy}
}

// Allowed reports whether role may perform op. Unknown operations are denied.
func (c *RoleChecker) Allowed(role Role, op Operation) bool {
	for _, r := range c.policy[op] {
		if r == role {
			return true
		}
	}
	return false
}

func (c *RoleChecker) AllowedCtx(ctx context.Context, role Role, op Operation) (bool, error) {
	return c.Allowed(role, op), nil
}
