package domain

import "time"

// Role represents the role of a user.
type Role string

const (
	RoleClient Role = "client"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

// User represents an account known to the system. Drivers carry the
// verification and availability flags that gate claiming.
type User struct {
	ID        string
	Name      string
	Phone     string
	Role      Role
	APIToken  string
	Verified  bool
	Available bool // meaningful for drivers only
	CreatedAt time.Time
}
