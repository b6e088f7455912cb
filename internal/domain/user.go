package domain

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

type MembershipStatus string

const (
	MembershipPending            MembershipStatus = "pending"
	MembershipWaitingForApproval MembershipStatus = "waiting_for_approval"
	MembershipActive             MembershipStatus = "active"
)

type User struct {
	ID                  int32            `json:"id"`
	Name                string           `json:"name"`
	Email               string           `json:"email"`
	PasswordHash        string           `json:"-"`
	Role                Role             `json:"role"`
	MembershipStatus    MembershipStatus `json:"membership_status"`
	ResetToken          *string          `json:"-"`
	ResetTokenExpiresOn *time.Time       `json:"-"`
	CreatedOn           time.Time        `json:"created_on"`
	UpdatedOn           time.Time        `json:"updated_on"`
}
