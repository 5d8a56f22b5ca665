package models

import (
	"faktura/internal/events"
	"faktura/internal/rbac"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Business is the tenant boundary. Every domain record carries exactly
// one business id, and identities never cross it.
type Business struct {
	Base
	Name    string           `gorm:"not null" json:"name" validate:"required,min=2"`
	Email   string           `json:"email" validate:"omitempty,email"`
	Address string           `json:"address"`
	VATID   string           `json:"vatId"`
	LogoID  string           `gorm:"type:uuid;default:NULL" json:"logoId,omitempty"`
	Logo    *File            `json:"logo,omitempty"`
	Users   []User           `gorm:"foreignKey:BusinessID;references:ID" json:"users,omitempty"`
	Invites []BusinessInvite `gorm:"foreignKey:BusinessID;references:ID;constraint:OnDelete:CASCADE" json:"invites,omitempty"`
}

func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

func (b *Business) AfterCreate(tx *gorm.DB) error {
	events.Emit("business.created", b)
	return nil
}

type BusinessInvite struct {
	Base
	Email      string       `gorm:"not null" json:"email" validate:"required,email"`
	Name       string       `gorm:"not null" json:"name" validate:"required,min=2"`
	BusinessID string       `gorm:"type:uuid;not null" json:"businessId" validate:"required,uuid"`
	Business   *Business    `json:"business,omitempty"`
	InviterID  string       `gorm:"type:uuid;not null" json:"inviterId" validate:"required,uuid"`
	Inviter    *User        `json:"inviter,omitempty"`
	Role       rbac.Role    `gorm:"not null;default:'user'" json:"role" validate:"required,user_role"`
	Code       string       `gorm:"not null" json:"code" validate:"required"`
	Status     InviteStatus `gorm:"not null;default:'PENDING'" json:"status" validate:"required,invite_status"`
	ExpiresAt  time.Time    `gorm:"not null" json:"expiresAt" validate:"required,gt=now"`
}

// Client is a customer of a business that invoices are addressed to.
type Client struct {
	Base
	BusinessID string    `gorm:"type:uuid;not null;index" json:"businessId" validate:"required,uuid"`
	Business   *Business `json:"business,omitempty"`
	Name       string    `gorm:"not null" json:"name" validate:"required,min=2"`
	Email      string    `json:"email" validate:"omitempty,email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	VATID      string    `json:"vatId"`
	Notes      string    `json:"notes"`
}

// Item is a reusable product or service line put on invoices.
type Item struct {
	Base
	BusinessID  string    `gorm:"type:uuid;not null;index" json:"businessId" validate:"required,uuid"`
	Business    *Business `json:"business,omitempty"`
	Name        string    `gorm:"not null" json:"name" validate:"required"`
	Description string    `json:"description"`
	UnitPrice   float64   `gorm:"not null" json:"unitPrice" validate:"gte=0"`
	Unit        string    `gorm:"default:'pcs'" json:"unit"`
	TaxRate     float64   `json:"taxRate" validate:"gte=0,lte=100"`
}

// Layout is a custom invoice form. The definition is an opaque document
// the web client renders; the backend only stores and serves it.
type Layout struct {
	Base
	BusinessID string         `gorm:"type:uuid;not null;index" json:"businessId" validate:"required,uuid"`
	Business   *Business      `json:"business,omitempty"`
	Name       string         `gorm:"not null" json:"name" validate:"required"`
	IsDefault  bool           `gorm:"default:false" json:"isDefault"`
	Definition datatypes.JSON `gorm:"type:jsonb" json:"definition"`
	LogoID     string         `gorm:"type:uuid;default:NULL" json:"logoId,omitempty"`
	Logo       *File          `json:"logo,omitempty"`
}

type Invoice struct {
	Base
	BusinessID string         `gorm:"type:uuid;not null;index" json:"businessId" validate:"required,uuid"`
	Business   *Business      `json:"business,omitempty"`
	ClientID   string         `gorm:"type:uuid;not null" json:"clientId" validate:"required,uuid"`
	Client     *Client        `json:"client,omitempty"`
	LayoutID   string         `gorm:"type:uuid;default:NULL" json:"layoutId,omitempty"`
	Layout     *Layout        `json:"layout,omitempty"`
	Number     string         `gorm:"not null" json:"number" validate:"required"`
	Status     InvoiceStatus  `gorm:"not null;default:'DRAFT'" json:"status" validate:"omitempty,invoice_status"`
	Currency   string         `gorm:"default:'EUR'" json:"currency"`
	Lines      datatypes.JSON `gorm:"type:jsonb" json:"lines"`
	Total      float64        `json:"total" validate:"gte=0"`
	IssuedAt   time.Time      `json:"issuedAt"`
	DueAt      time.Time      `json:"dueAt"`
	SentAt     *time.Time     `json:"sentAt,omitempty"`
	PaidAt     *time.Time     `json:"paidAt,omitempty"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	if i.Status == "" {
		i.Status = InvoiceStatusDraft
	}
	return nil
}

type File struct {
	Base
	BusinessID string    `gorm:"type:uuid" json:"businessId" validate:"omitempty,uuid"`
	Business   *Business `json:"business,omitempty"`
	Path       string    `gorm:"not null" json:"path" validate:"required"`
	UserID     string    `gorm:"type:uuid;default:NULL" json:"userId" validate:"omitempty,uuid"`
	User       *User     `json:"user,omitempty"`
	Name       string    `gorm:"not null" json:"name" validate:"required"`
	Size       int64     `gorm:"not null" json:"size" validate:"required,min=1"`
	Type       string    `gorm:"not null" json:"type" validate:"required"`
	SignedURL  string    `gorm:"-" json:"signedUrl,omitempty"` // Virtual field
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

func (f *File) AfterFind(tx *gorm.DB) error {
	registryMu.RLock()
	generator := urlGenerator
	registryMu.RUnlock()

	if generator != nil {
		// Generate URL with 1-hour expiry
		url, err := generator.GetSignedURL(tx.Statement.Context, f.Path, time.Hour)
		if err != nil {
			return fmt.Errorf("failed to generate signed URL: %w", err)
		}
		f.SignedURL = url
	}
	return nil
}
