// Package repository abstracts the inventory data source. The original app
// mixed two sources for the same entities (REST API in some views, local
// snapshots in others); here both live behind one interface and the active
// one is picked by configuration.
package repository

import (
	"context"
	"fmt"

	"github.com/davehub/parc-manager/internal/client"
	"github.com/davehub/parc-manager/internal/config"
	"github.com/davehub/parc-manager/internal/session"
)

// Inventory is the role-scoped data-access contract every controller
// depends on.
type Inventory interface {
	ListEquipments(ctx context.Context, filter client.EquipmentFilter) (*client.EquipmentPage, error)
	GetEquipment(ctx context.Context, id string) (*client.Equipment, error)
	CreateEquipment(ctx context.Context, in client.EquipmentInput) (*client.Equipment, error)
	UpdateEquipment(ctx context.Context, id string, in client.EquipmentInput) (*client.Equipment, error)
	DeleteEquipment(ctx context.Context, id string) error

	ListUsers(ctx context.Context) ([]client.AppUser, error)
	CreateUser(ctx context.Context, in client.UserInput) (*client.AppUser, error)
	UpdateUser(ctx context.Context, id string, in client.UserInput) (*client.AppUser, error)
	DeleteUser(ctx context.Context, id string) error

	ListMaintenance(ctx context.Context, equipmentID string) ([]client.MaintenanceRecord, error)
	AddMaintenance(ctx context.Context, in client.MaintenanceInput) (*client.MaintenanceRecord, error)
}

// ActorFunc reports the acting user, used by the snapshot store to stamp
// performedBy the way the backend stamps it from the bearer token.
type ActorFunc func() *session.User

// Select returns the Inventory implementation chosen by the configuration.
func Select(cfg config.StorageConfig, api *client.Client, pageSize int, actor ActorFunc) (Inventory, error) {
	switch cfg.Mode {
	case "", "api":
		return NewRemote(api), nil
	case "snapshot":
		return NewSnapshot(cfg.SnapshotDir, pageSize, actor), nil
	default:
		return nil, fmt.Errorf("unknown storage mode: %q", cfg.Mode)
	}
}

// Remote is the API-backed Inventory: a thin delegation to the HTTP client,
// which already maps auth/not-found/transport failures to the shared taxonomy.
type Remote struct {
	api *client.Client
}

// NewRemote builds the API-backed repository.
func NewRemote(api *client.Client) *Remote {
	return &Remote{api: api}
}

func (r *Remote) ListEquipments(ctx context.Context, filter client.EquipmentFilter) (*client.EquipmentPage, error) {
	return r.api.ListEquipments(ctx, filter)
}

func (r *Remote) GetEquipment(ctx context.Context, id string) (*client.Equipment, error) {
	return r.api.GetEquipment(ctx, id)
}

func (r *Remote) CreateEquipment(ctx context.Context, in client.EquipmentInput) (*client.Equipment, error) {
	return r.api.CreateEquipment(ctx, in)
}

func (r *Remote) UpdateEquipment(ctx context.Context, id string, in client.EquipmentInput) (*client.Equipment, error) {
	return r.api.UpdateEquipment(ctx, id, in)
}

func (r *Remote) DeleteEquipment(ctx context.Context, id string) error {
	return r.api.DeleteEquipment(ctx, id)
}

func (r *Remote) ListUsers(ctx context.Context) ([]client.AppUser, error) {
	return r.api.ListUsers(ctx)
}

func (r *Remote) CreateUser(ctx context.Context, in client.UserInput) (*client.AppUser, error) {
	return r.api.CreateUser(ctx, in)
}

func (r *Remote) UpdateUser(ctx context.Context, id string, in client.UserInput) (*client.AppUser, error) {
	return r.api.UpdateUser(ctx, id, in)
}

func (r *Remote) DeleteUser(ctx context.Context, id string) error {
	return r.api.DeleteUser(ctx, id)
}

func (r *Remote) ListMaintenance(ctx context.Context, equipmentID string) ([]client.MaintenanceRecord, error) {
	return r.api.ListMaintenance(ctx, equipmentID)
}

func (r *Remote) AddMaintenance(ctx context.Context, in client.MaintenanceInput) (*client.MaintenanceRecord, error) {
	return r.api.AddMaintenance(ctx, in)
}
