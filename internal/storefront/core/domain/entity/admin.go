package entity

import "time"

type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleProductManager Role = "product_manager"
	RoleOrderManager   Role = "order_manager"
	RoleMarketing      Role = "marketing"
	RoleSupport        Role = "support"
)

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

type AdminUser struct {
	ID          string
	Email       string
	FullName    string
	Role        Role
	Permissions []string
	Status      UserStatus
	LastLogin   *time.Time
	CreatedAt   time.Time
}

func (u *AdminUser) Clone() *AdminUser {
	if u == nil {
		return nil
	}
	c := *u
	c.Permissions = append([]string(nil), u.Permissions...)
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}

type UserFilter struct {
	Role   Role
	Status UserStatus
	Limit  int
}

// UserUpdate carries the editable fields; nil means unchanged.
type UserUpdate struct {
	Role   *Role
	Status *UserStatus
}
