// Package auth authenticates back-office users and decides what each role
// may do.
package auth

import (
	"slices"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
)

// Wildcard grants every permission.
const Wildcard = "*"

const (
	PermProductsView   = "products.view"
	PermProductsCreate = "products.create"
	PermProductsEdit   = "products.edit"
	PermProductsDelete = "products.delete"
	PermCarouselView   = "carousel.view"
	PermCarouselEdit   = "carousel.edit"
	PermAnalyticsView  = "analytics.view"
	PermOrdersView     = "orders.view"
	PermOrdersEdit     = "orders.edit"
	PermOrdersRefund   = "orders.refund"
	PermPaymentsView   = "payments.view"
	PermUsersView      = "users.view"
	PermUsersEdit      = "users.edit"
)

// Policy maps roles to their granted permissions.
type Policy map[entity.Role][]string

// DefaultPolicy returns the role table the storefront ships with.
func DefaultPolicy() Policy {
	return Policy{
		entity.RoleSuperAdmin: {Wildcard},
		entity.RoleProductManager: {
			PermProductsView, PermProductsCreate, PermProductsEdit, PermProductsDelete,
			PermCarouselView, PermCarouselEdit, PermAnalyticsView,
		},
		entity.RoleOrderManager: {PermOrdersView, PermOrdersEdit, PermOrdersRefund, PermPaymentsView},
		entity.RoleMarketing:    {PermCarouselView, PermCarouselEdit, PermProductsView, PermAnalyticsView},
		entity.RoleSupport:      {PermOrdersView, PermPaymentsView, PermUsersView},
	}
}

// Permissions returns a copy of the role's grants; nil for unknown roles.
func (p Policy) Permissions(role entity.Role) []string {
	perms, ok := p[role]
	if !ok {
		return nil
	}
	return slices.Clone(perms)
}

// HasPermission reports whether role holds permission, either exactly or
// through the wildcard.
func (p Policy) HasPermission(role entity.Role, permission string) bool {
	for _, granted := range p[role] {
		if granted == Wildcard || granted == permission {
			return true
		}
	}
	return false
}

// KnownRole reports whether role appears in the table.
func (p Policy) KnownRole(role entity.Role) bool {
	_, ok := p[role]
	return ok
}
