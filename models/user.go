package models

import "time"

// ActorRole distinguishes the two lifecycle actors. The auth provider is the
// system of record; the engine trusts the role carried in the token.
type ActorRole string

const (
	RoleCustomer   ActorRole = "customer"
	RoleTechnician ActorRole = "technician"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User is the customer snapshot consumed by settlement: wallet refunds and
// loyalty penalties land here.
type User struct {
	UserID        string     `json:"userID" dynamodbav:"userID"`
	Email         string     `json:"email" dynamodbav:"email"`
	Name          string     `json:"name" dynamodbav:"name"`
	Phone         string     `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
	PasswordHash  string     `json:"-" dynamodbav:"passwordHash"`
	Status        UserStatus `json:"status" dynamodbav:"status"`
	Address       *Address   `json:"address,omitempty" dynamodbav:"address,omitempty"`
	WalletBalance int        `json:"walletBalance" dynamodbav:"walletBalance"`
	LoyaltyPoints int        `json:"loyaltyPoints" dynamodbav:"loyaltyPoints"`
	CreatedAt     time.Time  `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" dynamodbav:"updatedAt"`
}
