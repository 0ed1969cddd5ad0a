package models

import (
	"time"
)

// AttackPattern mirrors a catalog signature into the database so operators
// can review the active rule set. The inspection core matches against its
// own compiled catalog; these rows are the browsable record of it.
type AttackPattern struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UUID         string    `json:"uuid" gorm:"uniqueIndex"`
	PatternName  string    `json:"pattern_name" gorm:"size:100;not null"`
	PatternRegex string    `json:"pattern_regex" gorm:"size:1000;not null"`
	Severity     string    `json:"severity" gorm:"size:20;default:medium"` // low, medium, high, critical
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
}
