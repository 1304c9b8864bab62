package domain

import "time"

// AdminRole represents the back-office role of an admin
type AdminRole string

const (
	AdminRoleSuperAdmin AdminRole = "super_admin"
	AdminRoleAdmin      AdminRole = "admin"
	AdminRoleModerator  AdminRole = "moderator"
)

// Admin is a back-office operator. Admins are provisioned out of band and
// matched to a Google identity at sign-in.
type Admin struct {
	ID        int64     `json:"id" db:"id"`
	GoogleID  *string   `json:"-" db:"google_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Avatar    string    `json:"avatar" db:"avatar"`
	Role      AdminRole `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CanManageCatalog reports whether the admin may edit categories and products.
func (a *Admin) CanManageCatalog() bool {
	return a.Role == AdminRoleSuperAdmin || a.Role == AdminRoleAdmin
}

// CanModerate reports whether the admin may moderate customers and reviews.
func (a *Admin) CanModerate() bool {
	switch a.Role {
	case AdminRoleSuperAdmin, AdminRoleAdmin, AdminRoleModerator:
		return true
	}
	return false
}
