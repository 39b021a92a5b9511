package auth

import (
	"strings"

	"mini-pos/internal/model"
)

// Role is a staff role. The set is closed: only the constants below are valid.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
)

// ParseRole converts user input into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleCashier:
		return RoleCashier, nil
	}
	return "", model.ErrInvalidRole
}

// Permission names a protected operation.
type Permission string

const (
	PermViewCatalog   Permission = "catalog:view"
	PermManageCatalog Permission = "catalog:manage"
	PermSell          Permission = "sales:sell"
	PermAdjustStock   Permission = "stock:adjust"
	PermViewReports   Permission = "reports:view"
	PermViewDashboard Permission = "dashboard:view"
	PermRegisterUser  Permission = "users:register"
	PermSubscribe     Permission = "events:subscribe"
)

var grants = map[Role]map[Permission]bool{
	RoleAdmin: {
		PermViewCatalog:   true,
		PermManageCatalog: true,
		PermSell:          true,
		PermAdjustStock:   true,
		PermViewReports:   true,
		PermViewDashboard: true,
		PermRegisterUser:  true,
		PermSubscribe:     true,
	},
	RoleCashier: {
		PermViewCatalog: true,
		PermSell:        true,
		PermAdjustStock: true,
		PermViewReports: true,
		PermSubscribe:   true,
	},
}

// Authorize returns model.ErrForbidden unless role holds perm.
func Authorize(role Role, perm Permission) error {
	if grants[role][perm] {
		return nil
	}
	return model.ErrForbidden
}
