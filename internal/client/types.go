// Package client is the typed HTTP client for the parc-manager API.
// Its types mirror the wire shapes, not the server's storage models.
package client

import "time"

// UserRef is the compact user reference embedded in other records.
type UserRef struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AppUser is a full directory entry.
type AppUser struct {
	ID        string `json:"_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// Equipment is one tracked asset as served by the API.
type Equipment struct {
	ID              string     `json:"_id"`
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	SerialNumber    string     `json:"serialNumber"`
	Manufacturer    *string    `json:"manufacturer"`
	Model           *string    `json:"model"`
	PurchaseDate    *time.Time `json:"purchaseDate"`
	WarrantyEndDate *time.Time `json:"warrantyEndDate"`
	Status          string     `json:"status"`
	AssignedTo      *UserRef   `json:"assignedTo"`
	Location        string     `json:"location"`
	Notes           *string    `json:"notes"`
}

// EquipmentInput is the normalized record emitted by the equipment form.
// Optional fields are nil when cleared, never empty strings.
type EquipmentInput struct {
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	SerialNumber    string     `json:"serialNumber"`
	Manufacturer    *string    `json:"manufacturer"`
	Model           *string    `json:"model"`
	PurchaseDate    *time.Time `json:"purchaseDate"`
	WarrantyEndDate *time.Time `json:"warrantyEndDate"`
	Status          string     `json:"status"`
	AssignedTo      *string    `json:"assignedTo"`
	Location        string     `json:"location"`
	Notes           *string    `json:"notes"`
}

// UserInput is the normalized record emitted by the user form.
type UserInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	Password  string `json:"password,omitempty"`
}

// MaintenanceRecord is one service event in an equipment's history.
type MaintenanceRecord struct {
	ID              string    `json:"_id"`
	Equipment       string    `json:"equipment"`
	MaintenanceDate time.Time `json:"maintenanceDate"`
	Description     string    `json:"description"`
	PerformedBy     *UserRef  `json:"performedBy"`
	Cost            *float64  `json:"cost"`
	Notes           *string   `json:"notes"`
}

// MaintenanceInput is the payload for appending a maintenance record.
type MaintenanceInput struct {
	EquipmentID     string   `json:"equipmentId"`
	MaintenanceDate string   `json:"maintenanceDate"`
	Description     string   `json:"description"`
	Cost            *float64 `json:"cost,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}

// EquipmentFilter describes the list query. Empty / "all" values are omitted
// from the request, they are never sent as wildcards.
type EquipmentFilter struct {
	Search     string
	Type       string
	Status     string
	AssignedTo string
	Page       int
	Limit      int
}

// EquipmentPage is one page of equipment plus the pagination totals.
type EquipmentPage struct {
	Equipments  []Equipment `json:"equipments"`
	CurrentPage int         `json:"currentPage"`
	TotalPages  int         `json:"totalPages"`
	TotalCount  int64       `json:"totalCount"`
}

// Credentials is the auth response: the token plus the minimal descriptor
// the session keeps.
type Credentials struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
