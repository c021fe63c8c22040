package domain

import "time"

// UserRole distinguishes customers, bike owners and administrators.
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleOwner    UserRole = "owner"
	UserRoleAdmin    UserRole = "admin"
)

// User represents an account known to the marketplace.
type User struct {
	ID          string
	Name        string
	Email       string
	Role        UserRole
	DeviceToken string // push token, empty when the user has no registered device
	CreatedAt   time.Time
}
