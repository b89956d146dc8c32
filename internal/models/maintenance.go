package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaintenanceRecord is one append-only service event against one equipment.
// Records are never edited or deleted once written.
type MaintenanceRecord struct {
	ID              string    `gorm:"primaryKey;size:36" json:"_id"`
	EquipmentID     string    `gorm:"size:36;index;not null" json:"equipment"`
	MaintenanceDate time.Time `gorm:"index;not null" json:"maintenanceDate"`
	Description     string    `gorm:"type:text;not null" json:"description"`
	PerformedByID   string    `gorm:"size:36;not null" json:"-"`
	Cost            *float64  `json:"cost,omitempty"`
	Notes           *string   `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	Equipment   *Equipment `gorm:"foreignKey:EquipmentID;constraint:OnDelete:CASCADE" json:"-"`
	PerformedBy *User      `gorm:"foreignKey:PerformedByID" json:"-"`
}

// BeforeCreate assigns a UUID primary key when none is set.
func (m *MaintenanceRecord) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
