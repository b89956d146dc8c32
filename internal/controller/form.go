package controller

import (
	"strings"
	"time"

	"github.com/davehub/parc-manager/internal/apperr"
	"github.com/davehub/parc-manager/internal/client"
	"github.com/davehub/parc-manager/internal/util"
)

// EquipmentForm holds the editable field state of the equipment form. All
// fields are plain strings, as typed; Submit normalizes them into a record.
type EquipmentForm struct {
	EditingID       string
	Name            string
	Type            string
	SerialNumber    string
	Manufacturer    string
	Model           string
	PurchaseDate    string
	WarrantyEndDate string
	Status          string
	AssignedTo      string
	Location        string
	Notes           string
}

// NewEquipmentForm initializes the form from an existing record (edit) or to
// the type defaults (create): type Ordinateur, status En service.
func NewEquipmentForm(existing *client.Equipment) *EquipmentForm {
	if existing == nil {
		return &EquipmentForm{
			Type:   "Ordinateur",
			Status: "En service",
		}
	}

	f := &EquipmentForm{
		EditingID:    existing.ID,
		Name:         existing.Name,
		Type:         existing.Type,
		SerialNumber: existing.SerialNumber,
		Status:       existing.Status,
		Location:     existing.Location,
	}
	if existing.Manufacturer != nil {
		f.Manufacturer = *existing.Manufacturer
	}
	if existing.Model != nil {
		f.Model = *existing.Model
	}
	if existing.PurchaseDate != nil {
		f.PurchaseDate = existing.PurchaseDate.Format("2006-01-02")
	}
	if existing.WarrantyEndDate != nil {
		f.WarrantyEndDate = existing.WarrantyEndDate.Format("2006-01-02")
	}
	if existing.AssignedTo != nil {
		f.AssignedTo = existing.AssignedTo.ID
	}
	if existing.Notes != nil {
		f.Notes = *existing.Notes
	}
	return f
}

// Submit validates the required fields and assembles the normalized record:
// optional fields left blank become nil, never empty strings, so storage can
// tell "cleared" from "never set". Persistence stays with the caller.
//
// No cross-field checks are made; a warranty end before the purchase date
// goes through unchallenged.
func (f *EquipmentForm) Submit() (*client.EquipmentInput, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return nil, apperr.Validation("name", "required")
	}
	serial := strings.TrimSpace(f.SerialNumber)
	if serial == "" {
		return nil, apperr.Validation("serialNumber", "required")
	}
	location := strings.TrimSpace(f.Location)
	if location == "" {
		return nil, apperr.Validation("location", "required")
	}
	if !validOneOf(f.Type, "Ordinateur", "Imprimante", "Serveur", "Réseau", "Autre") {
		return nil, apperr.Validation("type", "unknown equipment type")
	}
	if !validOneOf(f.Status, "En service", "En panne", "En maintenance", "Hors service") {
		return nil, apperr.Validation("status", "unknown equipment status")
	}

	purchaseDate, err := optionalDate(f.PurchaseDate)
	if err != nil {
		return nil, apperr.Validation("purchaseDate", err.Error())
	}
	warrantyEndDate, err := optionalDate(f.WarrantyEndDate)
	if err != nil {
		return nil, apperr.Validation("warrantyEndDate", err.Error())
	}

	return &client.EquipmentInput{
		Name:            name,
		Type:            f.Type,
		SerialNumber:    serial,
		Manufacturer:    optional(f.Manufacturer),
		Model:           optional(f.Model),
		PurchaseDate:    purchaseDate,
		WarrantyEndDate: warrantyEndDate,
		Status:          f.Status,
		AssignedTo:      optional(f.AssignedTo),
		Location:        location,
		Notes:           optional(f.Notes),
	}, nil
}

// UserForm holds the editable field state of the user form.
type UserForm struct {
	EditingID string
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      string
	Password  string
}

// NewUserForm initializes the form from an existing user or to defaults
// (role user).
func NewUserForm(existing *client.AppUser) *UserForm {
	if existing == nil {
		return &UserForm{Role: "user"}
	}
	return &UserForm{
		EditingID: existing.ID,
		Username:  existing.Username,
		Email:     existing.Email,
		FirstName: existing.FirstName,
		LastName:  existing.LastName,
		Role:      existing.Role,
	}
}

// Submit validates the required fields and assembles the normalized record.
func (f *UserForm) Submit() (*client.UserInput, error) {
	username := strings.TrimSpace(f.Username)
	if username == "" {
		return nil, apperr.Validation("username", "required")
	}
	email := strings.TrimSpace(f.Email)
	if email == "" {
		return nil, apperr.Validation("email", "required")
	}
	if err := util.ValidateEmail(email); err != nil {
		return nil, apperr.Validation("email", err.Error())
	}
	if !validOneOf(f.Role, "admin", "user") {
		return nil, apperr.Validation("role", "must be admin or user")
	}

	return &client.UserInput{
		Username:  username,
		Email:     email,
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Role:      f.Role,
		Password:  f.Password,
	}, nil
}

// ---------- helpers ----------

func validOneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optionalDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := util.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
