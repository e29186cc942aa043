package models

// ActorRole is the closed set of roles allowed to invoke engine operations.
type ActorRole string

const (
	ActorRoleOperator ActorRole = "operator"
	ActorRoleCustomer ActorRole = "customer"
)

// IsValid reports whether r is a known actor role.
func (r ActorRole) IsValid() bool {
	return r == ActorRoleOperator || r == ActorRoleCustomer
}
