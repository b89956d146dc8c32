package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Equipment types (labels kept in French, as displayed everywhere in the app).
const (
	TypeOrdinateur = "Ordinateur"
	TypeImprimante = "Imprimante"
	TypeServeur    = "Serveur"
	TypeReseau     = "Réseau"
	TypeAutre      = "Autre"
)

// Equipment statuses.
const (
	StatusEnService     = "En service"
	StatusEnPanne       = "En panne"
	StatusEnMaintenance = "En maintenance"
	StatusHorsService   = "Hors service"
)

// EquipmentTypes lists the valid equipment types.
var EquipmentTypes = []string{TypeOrdinateur, TypeImprimante, TypeServeur, TypeReseau, TypeAutre}

// EquipmentStatuses lists the valid equipment statuses.
var EquipmentStatuses = []string{StatusEnService, StatusEnPanne, StatusEnMaintenance, StatusHorsService}

// Equipment represents one tracked asset of the fleet.
// Optional fields are pointers so a cleared value is stored as NULL,
// never as an empty string.
type Equipment struct {
	ID              string     `gorm:"primaryKey;size:36" json:"_id"`
	Name            string     `gorm:"size:128;index;not null" json:"name"`
	Type            string     `gorm:"size:32;index;not null" json:"type"`
	SerialNumber    string     `gorm:"size:64;uniqueIndex;not null" json:"serialNumber"`
	Manufacturer    *string    `gorm:"size:64" json:"manufacturer,omitempty"`
	Model           *string    `gorm:"size:64" json:"model,omitempty"`
	PurchaseDate    *time.Time `json:"purchaseDate,omitempty"`
	WarrantyEndDate *time.Time `json:"warrantyEndDate,omitempty"`
	Status          string     `gorm:"size:32;index;not null" json:"status"`
	AssignedToID    *string    `gorm:"size:36;index" json:"-"`
	CreatedByID     string     `gorm:"size:36" json:"-"`
	Location        string     `gorm:"size:128;not null" json:"location"`
	Notes           *string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	AssignedTo *User `gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedBy  *User `gorm:"foreignKey:CreatedByID" json:"-"`
}

// BeforeCreate assigns a UUID primary key when none is set.
func (e *Equipment) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// ValidType reports whether t is one of the known equipment types.
func ValidType(t string) bool {
	for _, v := range EquipmentTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is one of the known equipment statuses.
func ValidStatus(s string) bool {
	for _, v := range EquipmentStatuses {
		if v == s {
			return true
		}
	}
	return false
}
