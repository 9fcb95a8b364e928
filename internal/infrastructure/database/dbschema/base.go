package dbschema

import "time"

// BaseModel is the shared primary key and timestamp columns.
type BaseModel struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
