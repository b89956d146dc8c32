package controller

import (
	"errors"
	"testing"

	"github.com/davehub/parc-manager/internal/apperr"
	"github.com/davehub/parc-manager/internal/client"
)

func validEquipmentForm() *EquipmentForm {
	f := NewEquipmentForm(nil)
	f.Name = "Poste comptabilité"
	f.SerialNumber = "SN-001"
	f.Location = "Bureau 12"
	return f
}

func TestNewEquipmentForm_Defaults(t *testing.T) {
	f := NewEquipmentForm(nil)
	if f.Type != "Ordinateur" {
		t.Errorf("default Type = %q, want Ordinateur", f.Type)
	}
	if f.Status != "En service" {
		t.Errorf("default Status = %q, want En service", f.Status)
	}
}

func TestNewEquipmentForm_FromExisting(t *testing.T) {
	manufacturer := "Dell"
	existing := &client.Equipment{
		ID:           "id-1",
		Name:         "pc-01",
		Type:         "Ordinateur",
		SerialNumber: "SN-1",
		Manufacturer: &manufacturer,
		Status:       "En panne",
		Location:     "Atelier",
		AssignedTo:   &client.UserRef{ID: "id-bob", Username: "bob"},
	}

	f := NewEquipmentForm(existing)
	if f.EditingID != "id-1" {
		t.Errorf("EditingID = %q, want id-1", f.EditingID)
	}
	if f.Manufacturer != "Dell" {
		t.Errorf("Manufacturer = %q, want Dell", f.Manufacturer)
	}
	if f.AssignedTo != "id-bob" {
		t.Errorf("AssignedTo = %q, want the user id", f.AssignedTo)
	}
}

func TestEquipmentForm_SubmitRequiredFields(t *testing.T) {
	testCases := []struct {
		field string
		mut   func(*EquipmentForm)
	}{
		{"name", func(f *EquipmentForm) { f.Name = "  " }},
		{"serialNumber", func(f *EquipmentForm) { f.SerialNumber = "" }},
		{"location", func(f *EquipmentForm) { f.Location = "" }},
	}

	for _, tc := range testCases {
		f := validEquipmentForm()
		tc.mut(f)
		_, err := f.Submit()
		var ve *apperr.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("Submit() with blank %s error = %v, want ValidationError", tc.field, err)
			continue
		}
		if ve.Field != tc.field {
			t.Errorf("ValidationError.Field = %q, want %q", ve.Field, tc.field)
		}
	}
}

func TestEquipmentForm_SubmitRejectsUnknownEnums(t *testing.T) {
	f := validEquipmentForm()
	f.Type = "Tablette"
	if _, err := f.Submit(); err == nil {
		t.Error("Submit() with unknown type error = nil, want error")
	}

	f = validEquipmentForm()
	f.Status = "Cassé"
	if _, err := f.Submit(); err == nil {
		t.Error("Submit() with unknown status error = nil, want error")
	}
}

func TestEquipmentForm_SubmitNormalizesOptionals(t *testing.T) {
	f := validEquipmentForm()
	f.Manufacturer = "   "
	f.Model = ""
	f.AssignedTo = ""
	f.Notes = "\t"

	in, err := f.Submit()
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if in.Manufacturer != nil {
		t.Errorf("Manufacturer = %v, want nil for blank input", *in.Manufacturer)
	}
	if in.Model != nil {
		t.Errorf("Model = %v, want nil", *in.Model)
	}
	if in.AssignedTo != nil {
		t.Errorf("AssignedTo = %v, want nil, never an empty string", *in.AssignedTo)
	}
	if in.Notes != nil {
		t.Errorf("Notes = %v, want nil", *in.Notes)
	}
	if in.PurchaseDate != nil || in.WarrantyEndDate != nil {
		t.Error("blank dates must normalize to nil")
	}
}

func TestEquipmentForm_SubmitParsesDates(t *testing.T) {
	f := validEquipmentForm()
	f.PurchaseDate = "2023-03-01"
	f.WarrantyEndDate = "2026-03-01"

	in, err := f.Submit()
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if in.PurchaseDate == nil || in.PurchaseDate.Year() != 2023 {
		t.Errorf("PurchaseDate = %v, want 2023-03-01", in.PurchaseDate)
	}
	if in.WarrantyEndDate == nil || in.WarrantyEndDate.Year() != 2026 {
		t.Errorf("WarrantyEndDate = %v, want 2026-03-01", in.WarrantyEndDate)
	}
}

func TestEquipmentForm_SubmitRejectsBadDate(t *testing.T) {
	f := validEquipmentForm()
	f.PurchaseDate = "01/03/2023"

	_, err := f.Submit()
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) || ve.Field != "purchaseDate" {
		t.Errorf("Submit() error = %v, want ValidationError on purchaseDate", err)
	}
}

func TestEquipmentForm_SubmitTrimsRequired(t *testing.T) {
	f := validEquipmentForm()
	f.Name = "  pc-01  "

	in, err := f.Submit()
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if in.Name != "pc-01" {
		t.Errorf("Name = %q, want trimmed", in.Name)
	}
}

func TestNewUserForm_Defaults(t *testing.T) {
	f := NewUserForm(nil)
	if f.Role != "user" {
		t.Errorf("default Role = %q, want user", f.Role)
	}
}

func TestUserForm_Submit(t *testing.T) {
	f := NewUserForm(nil)
	f.Username = "jean"
	f.Email = "jean@example.fr"
	f.FirstName = " Jean "
	f.Password = "password123"

	in, err := f.Submit()
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if in.FirstName != "Jean" {
		t.Errorf("FirstName = %q, want trimmed", in.FirstName)
	}
	if in.Role != "user" {
		t.Errorf("Role = %q, want user", in.Role)
	}
}

func TestUserForm_SubmitValidation(t *testing.T) {
	testCases := []struct {
		name  string
		field string
		mut   func(*UserForm)
	}{
		{"blank username", "username", func(f *UserForm) { f.Username = "" }},
		{"blank email", "email", func(f *UserForm) { f.Email = "" }},
		{"bad email", "email", func(f *UserForm) { f.Email = "not-an-email" }},
		{"unknown role", "role", func(f *UserForm) { f.Role = "root" }},
	}

	for _, tc := range testCases {
		f := NewUserForm(nil)
		f.Username = "jean"
		f.Email = "jean@example.fr"
		tc.mut(f)

		_, err := f.Submit()
		var ve *apperr.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: Submit() error = %v, want ValidationError", tc.name, err)
			continue
		}
		if ve.Field != tc.field {
			t.Errorf("%s: ValidationError.Field = %q, want %q", tc.name, ve.Field, tc.field)
		}
	}
}
