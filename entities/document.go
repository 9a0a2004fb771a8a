package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Document is the sqlite row behind every document collection. The payload
// lives in a JSON column so collections stay schemaless.
type Document struct {
	Collection string         `gorm:"primaryKey;size:64"`
	ID         string         `gorm:"primaryKey;size:64"`
	Data       datatypes.JSON `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
