package domain

type Role string

const (
	RoleOwner  Role = "owner"
	RoleTenant Role = "tenant"
)

type User struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     Role
	IsActive bool
}
