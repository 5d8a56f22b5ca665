package models

import (
	"time"

	"faktura/internal/rbac"
)

type User struct {
	Base
	Email      string    `gorm:"uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"not null" json:"-"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Role       rbac.Role `gorm:"not null;default:'user'" json:"role"`
	BusinessID string    `gorm:"type:uuid;not null" json:"businessId"`
	Business   *Business `json:"business,omitempty"`
	Invites    []BusinessInvite `gorm:"foreignKey:InviterID" json:"invites,omitempty"`
	Files      []File           `gorm:"foreignKey:UserID" json:"files,omitempty"`
}

// FullName joins the name fields for display.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Identity builds the typed request identity carried through the gate.
func (u *User) Identity() rbac.Identity {
	return rbac.Identity{
		ID:         u.ID,
		Role:       u.Role,
		BusinessID: u.BusinessID,
		Email:      u.Email,
		FullName:   u.FullName(),
	}
}

type PasswordReset struct {
	Base
	User      *User     `json:"user,omitempty"`
	UserID    string    `gorm:"type:uuid;not null" json:"userId"`
	Code      string    `gorm:"not null" json:"code"`
	Used      bool      `gorm:"default:false" json:"used"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AuthTransaction struct {
	Base
	UserID     string    `gorm:"type:uuid;not null" json:"userId"`
	User       *User     `json:"user,omitempty"`
	BusinessID string    `gorm:"type:uuid;not null" json:"businessId"`
	Business   *Business `json:"business,omitempty"`
	Token      string    `gorm:"not null" json:"token"`
	Refresh    string    `gorm:"not null" json:"refresh"`
	IPAddress  string    `json:"ipAddress"`
	UserAgent  string    `json:"userAgent"`
	ExpiresAt  time.Time `json:"expiresAt"`
}
