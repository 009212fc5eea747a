package roles

import "strings"

// Role is the coarse permission tier carried on a profile.
type Role string

const (
	SuperAdmin Role = "super_admin"
	Admin      Role = "admin"
	TeamMember Role = "team_member"
	Guest      Role = "guest"
)

// Valid reports whether the role is one of the known tiers.
func (r Role) Valid() bool {
	switch r {
	case SuperAdmin, Admin, TeamMember, Guest:
		return true
	}
	return false
}

// Parse normalises a raw role string, defaulting unknown values to Guest.
func Parse(raw string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !r.Valid() {
		return Guest
	}
	return r
}

// Flags are the derived permission booleans consumed by route gating.
// Higher tiers imply the lower ones: a super admin is also an admin and a
// team member; a guest is none of the three.
type Flags struct {
	IsSuperAdmin bool `json:"is_super_admin"`
	IsAdmin      bool `json:"is_admin"`
	IsTeamMember bool `json:"is_team_member"`
	IsGuest      bool `json:"is_guest"`
}

// FlagsFor derives the permission flags for a role by strict string
// comparison and OR-chaining.
func FlagsFor(r Role) Flags {
	isSuper := r == SuperAdmin
	isAdmin := isSuper || r == Admin
	isTeam := isAdmin || r == TeamMember

	return Flags{
		IsSuperAdmin: isSuper,
		IsAdmin:      isAdmin,
		IsTeamMember: isTeam,
		IsGuest:      r == Guest,
	}
}

// Allows reports whether the role satisfies the required tier.
func (f Flags) Allows(required Role) bool {
	switch required {
	case SuperAdmin:
		return f.IsSuperAdmin
	case Admin:
		return f.IsAdmin
	case TeamMember:
		return f.IsTeamMember
	case Guest:
		return true
	}
	return false
}
