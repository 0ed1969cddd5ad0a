package models

import (
	"time"
)

// SecurityLog is one audit event per decided request: who asked for what
// and why it was allowed or blocked. Details holds the verdict evidence as
// a JSON document.
type SecurityLog struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UUID          string    `json:"uuid" gorm:"uniqueIndex"`
	ClientIP      string    `json:"client_ip" gorm:"size:45;index;not null"`
	RequestPath   string    `json:"request_path" gorm:"size:500;not null"`
	RequestMethod string    `json:"request_method" gorm:"size:10;not null"`
	Reason        string    `json:"reason" gorm:"size:100;not null"`
	Details       string    `json:"details" gorm:"type:text"`
	UserAgent     string    `json:"user_agent" gorm:"size:500"`
	Referer       string    `json:"referer" gorm:"size:500"`
	Timestamp     time.Time `json:"timestamp" gorm:"index"`
}
