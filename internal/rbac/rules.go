package rbac

// RolePermissions is the default policy. A "-own" permission only applies
// when the subject owns the record; see RequireOwnerOr.
var RolePermissions = map[string][]string{
	"student": {
		"course:view",
		"prereq:view",
		"grade:view-own",
		"standing:view-own",
		"enrollment:check-own",
	},
	"teacher": {
		"course:view",
		"prereq:view",
		"assessment:define",
		"score:enter",
		"grade:*",
		"standing:view",
		"enrollment:check",
	},
	"registrar": {
		"course:*",
		"prereq:*",
		"enrollment:*",
		"grade:view",
		"standing:view",
		"user:manage",
	},
	"admin": {
		"*", // everything
	},
}
