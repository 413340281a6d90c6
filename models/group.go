package models

import (
	"time"

	"github.com/google/uuid"
)

type Group struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null;unique" json:"name"`
	Slug      string    `gorm:"size:150;uniqueIndex" json:"slug"`
	IsDefault bool      `gorm:"default:false" json:"is_default"` // nhóm mặc định, không xóa được
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Terms []Term `gorm:"foreignKey:GroupID" json:"terms,omitempty"`
}
