package roles

import "safesite-backend/internal/domain"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
)

// Resolver maps an email address to a role via a static administrator
// allow-list fixed at construction time.
type Resolver struct {
	adminEmails map[string]struct{}
}

func NewResolver(adminEmails []string) *Resolver {
	set := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		set[domain.NormalizeEmail(e)] = struct{}{}
	}
	return &Resolver{adminEmails: set}
}

// Resolve returns RoleAdmin when the normalized email is on the allow-list,
// RoleManager otherwise. Total; an empty email resolves to RoleManager.
func (r *Resolver) Resolve(email string) Role {
	if email == "" {
		return RoleManager
	}
	if _, ok := r.adminEmails[domain.NormalizeEmail(email)]; ok {
		return RoleAdmin
	}
	return RoleManager
}

func IsAdmin(role Role) bool {
	return role == RoleAdmin
}

// DisplayName returns the user-facing label for a role.
func DisplayName(role Role) string {
	switch role {
	case RoleAdmin:
		return "Administrator"
	case RoleManager:
		return "Site Manager"
	default:
		return "User"
	}
}
