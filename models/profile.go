package models

// Role is stored as a small integer on the profile; 1 has always meant admin.
type Role int

const (
	RoleCustomer Role = 0
	RoleAdmin    Role = 1
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleCustomer:
		return "customer"
	default:
		return "unknown"
	}
}

type Capability string

const (
	CapManageCatalog    Capability = "catalog:manage"
	CapManageClients    Capability = "clients:manage"
	CapManageFacilities Capability = "facilities:manage"
	CapUploadMedia      Capability = "media:upload"
	CapViewDashboard    Capability = "dashboard:view"
	CapEditOwnProfile   Capability = "profile:edit"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdmin: {
		CapManageCatalog,
		CapManageClients,
		CapManageFacilities,
		CapUploadMedia,
		CapViewDashboard,
		CapEditOwnProfile,
	},
	RoleCustomer: {
		CapEditOwnProfile,
	},
}

// Can reports whether the role grants capability.
func (r Role) Can(capability Capability) bool {
	for _, c := range roleCapabilities[r] {
		if c == capability {
			return true
		}
	}
	return false
}

type Profile struct {
	Base
	Email    string  `gorm:"uniqueIndex;not null" json:"email"`
	Password string  `gorm:"not null" json:"-"`
	FullName string  `gorm:"not null" json:"full_name"`
	Phone    *string `json:"phone"`
	Avatar   string  `json:"avatar"`
	Role     Role    `gorm:"not null;default:0" json:"role"`
}
