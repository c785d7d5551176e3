package models

import "time"

type Role string

const (
	RoleParent    Role = "parent"
	RoleNanny     Role = "nanny"
	RoleDaycare   Role = "daycare"
	RoleElderCare Role = "eldercare"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleParent, RoleNanny, RoleDaycare, RoleElderCare, RoleAdmin:
		return true
	}
	return false
}

// IsProvider reports whether the role offers care services. Nannies, daycare
// centres and elder-care providers are all providers; the role is the variant tag.
func (r Role) IsProvider() bool {
	return r == RoleNanny || r == RoleDaycare || r == RoleElderCare
}

// User is a parent, a provider or an admin.
type User struct {
	ID         string           `bson:"id" json:"id"`
	Name       string           `bson:"name" json:"name"`
	Phone      string           `bson:"phone" json:"phone"`
	Email      string           `bson:"email,omitempty" json:"email,omitempty"`
	Role       Role             `bson:"role" json:"role"`
	FCMToken   string           `bson:"fcmToken,omitempty" json:"-"`
	Provider   *ProviderProfile `bson:"provider,omitempty" json:"provider,omitempty"`
	Financials Financials       `bson:"financials" json:"financials"`
	CreatedAt  time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time        `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsProvider() bool {
	return u.Role.IsProvider()
}

// ProviderProfile is the fixed-shape profile of a care provider.
type ProviderProfile struct {
	ProviderType    Role     `bson:"providerType" json:"providerType"`
	HourlyRate      float64  `bson:"hourlyRate" json:"hourlyRate" binding:"gte=0"`
	ExperienceYears int      `bson:"experienceYears" json:"experienceYears" binding:"gte=0,lte=80"`
	Bio             string   `bson:"bio" json:"bio" binding:"max=2000"`
	Skills          []string `bson:"skills" json:"skills" binding:"max=30,dive,max=64"`
	Verified        bool     `bson:"verified" json:"verified"`
	Available       bool     `bson:"available" json:"available"`
}

// DefaultProviderProfile returns the profile a provider starts with.
func DefaultProviderProfile(role Role) *ProviderProfile {
	return &ProviderProfile{
		ProviderType: role,
		Skills:       []string{},
		Available:    true,
	}
}

// Financials are the running balance fields of a provider.
type Financials struct {
	TotalEarnings      float64 `bson:"totalEarnings" json:"totalEarnings"`
	AvailableBalance   float64 `bson:"availableBalance" json:"availableBalance"`
	WithdrawnAmount    float64 `bson:"withdrawnAmount" json:"withdrawnAmount"`
	TotalJobsCompleted int     `bson:"totalJobsCompleted" json:"totalJobsCompleted"`
}

// UserUpdateRequest carries the mutable profile fields.
type UserUpdateRequest struct {
	Name     *string          `json:"name,omitempty" binding:"omitempty,min=1,max=120"`
	Email    *string          `json:"email,omitempty" binding:"omitempty,email"`
	Provider *ProviderProfile `json:"provider,omitempty"`
}
