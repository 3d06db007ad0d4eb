package entity

import (
	"time"
)

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

type Location struct {
	City    string `json:"city" firestore:"city"`
	Region  string `json:"region" firestore:"region"`
	Country string `json:"country" firestore:"country"`
}

type DeliveryAddress struct {
	ID        string `json:"id" firestore:"id"`
	Label     string `json:"label" firestore:"label"`
	Details   string `json:"details" firestore:"details"`
	IsDefault bool   `json:"isDefault" firestore:"isDefault"`
}

type User struct {
	ID           string `json:"id" firestore:"id"`
	FullName     string `json:"fullName" firestore:"fullName"`
	Email        string `json:"email" firestore:"email"`
	PhoneNumber  string `json:"phoneNumber" firestore:"phoneNumber"`
	PasswordHash string `json:"-" firestore:"passwordHash"`
	Role         string `json:"role" firestore:"role"`
	Provider     string `json:"provider,omitempty" firestore:"provider,omitempty"`

	IsVerifiedSeller  bool              `json:"isVerifiedSeller" firestore:"isVerifiedSeller"`
	ProfilePhotoURL   string            `json:"profilePhotoUrl,omitempty" firestore:"profilePhotoUrl,omitempty"`
	Location          Location          `json:"location" firestore:"location"`
	DeliveryAddresses []DeliveryAddress `json:"deliveryAddresses" firestore:"deliveryAddresses"`

	LastLogin time.Time `json:"lastLogin,omitempty" firestore:"lastLogin"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

func (u *User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// DefaultAddress returns the flagged default, if any.
func (u *User) DefaultAddress() (DeliveryAddress, bool) {
	for _, a := range u.DeliveryAddresses {
		if a.IsDefault {
			return a, true
		}
	}
	return DeliveryAddress{}, false
}
