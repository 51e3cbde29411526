package evaluator

import "strings"

// Role is the internal key for a lane assignment.
type Role string

const (
	RoleTop     Role = "top"
	RoleJungle  Role = "jungle"
	RoleMid     Role = "mid"
	RoleBot     Role = "bot"
	RoleSupport Role = "support"
	RoleOther   Role = "other"
)

// ParseRole maps provider position strings to role keys. Matching is
// case-insensitive; anything outside the fixed vocabulary is Other.
func ParseRole(position string) Role {
	switch strings.ToLower(position) {
	case "top":
		return RoleTop
	case "jungle":
		return RoleJungle
	case "middle":
		return RoleMid
	case "bottom":
		return RoleBot
	case "utility":
		return RoleSupport
	default:
		return RoleOther
	}
}
