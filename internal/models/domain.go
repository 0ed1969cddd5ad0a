package models

import (
	"time"
)

// Domain is a protected site the proxy fronts. SecurityLevel tunes how the
// generated proxy treats the domain; RateLimit is its per-client hourly
// request budget.
type Domain struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UUID          string    `json:"uuid" gorm:"uniqueIndex"`
	DomainName    string    `json:"domain_name" gorm:"uniqueIndex;size:255;not null"`
	TargetURL     string    `json:"target_url" gorm:"size:500;not null"`
	SecurityLevel string    `json:"security_level" gorm:"size:20;default:moderate"` // strict, moderate, relaxed
	RateLimit     int       `json:"rate_limit" gorm:"default:1000"`
	IsActive      bool      `json:"is_active" gorm:"default:true"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
