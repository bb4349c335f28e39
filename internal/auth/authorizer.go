package auth

import (
	"context"
	"fmt"
)

// Authorizer is the capability check every protected route goes through.
type Authorizer interface {
	Authorize(ctx context.Context, p Principal, c Capability) error
}

// RoleAuthorizer grants capabilities by role. Admins may do everything;
// unknown roles get nothing.
type RoleAuthorizer struct {
	grants map[Role]map[Capability]bool
}

func NewRoleAuthorizer() *RoleAuthorizer {
	return &RoleAuthorizer{grants: map[Role]map[Capability]bool{
		RoleClerk: {
			CapStockRead: true, CapStockWrite: true,
			CapPartiesRead: true, CapPartiesWrite: true,
		},
		RoleAccountant: {
			CapStockRead:   true,
			CapPartiesRead: true,
			CapFinanceRead: true, CapFinanceWrite: true,
			CapReportsRead: true,
		},
	}}
}

func (a *RoleAuthorizer) Authorize(_ context.Context, p Principal, c Capability) error {
	if p.Role == RoleAdmin {
		return nil
	}
	if a.grants[p.Role][c] {
		return nil
	}
	return fmt.Errorf("%w: %s lacks %s", ErrForbidden, p.Role, c)
}
