package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/davehub/parc-manager/internal/apperr"
	"github.com/davehub/parc-manager/internal/client"
	"github.com/davehub/parc-manager/internal/util"

	"github.com/google/uuid"
)

// Snapshot is the offline Inventory: two keyed collections (equipment and
// users) plus the maintenance log, each persisted as a whole-collection JSON
// file rewritten on every mutation, exactly as the original client treated
// its local storage.
type Snapshot struct {
	dir      string
	pageSize int
	actor    ActorFunc
}

// NewSnapshot builds a snapshot repository rooted at dir.
func NewSnapshot(dir string, pageSize int, actor ActorFunc) *Snapshot {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Snapshot{dir: dir, pageSize: pageSize, actor: actor}
}

const (
	equipmentsFile   = "equipments.json"
	usersFile        = "users.json"
	maintenancesFile = "maintenances.json"
)

func loadCollection[T any](path string) ([]T, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		// corrupt snapshot reads as empty, same contract as the session store
		return nil, nil
	}
	return items, nil
}

func saveCollection[T any](path string, items []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	raw, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (s *Snapshot) path(name string) string { return filepath.Join(s.dir, name) }

// ---------- equipment ----------

func matchesFilter(e *client.Equipment, filter client.EquipmentFilter) bool {
	if search := strings.TrimSpace(filter.Search); search != "" {
		needle := strings.ToLower(search)
		hay := strings.ToLower(e.Name + " " + e.SerialNumber + " " + e.Location)
		if e.Manufacturer != nil {
			hay += " " + strings.ToLower(*e.Manufacturer)
		}
		if e.Model != nil {
			hay += " " + strings.ToLower(*e.Model)
		}
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	if filter.Type != "" && filter.Type != "all" && e.Type != filter.Type {
		return false
	}
	if filter.Status != "" && filter.Status != "all" && e.Status != filter.Status {
		return false
	}
	if filter.AssignedTo != "" && filter.AssignedTo != "all" {
		if e.AssignedTo == nil || e.AssignedTo.ID != filter.AssignedTo {
			return false
		}
	}
	return true
}

func (s *Snapshot) ListEquipments(_ context.Context, filter client.EquipmentFilter) (*client.EquipmentPage, error) {
	all, err := loadCollection[client.Equipment](s.path(equipmentsFile))
	if err != nil {
		return nil, err
	}

	matched := make([]client.Equipment, 0, len(all))
	for i := range all {
		if matchesFilter(&all[i], filter) {
			matched = append(matched, all[i])
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = s.pageSize
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	total := len(matched)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &client.EquipmentPage{
		Equipments:  matched[start:end],
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  int64(total),
	}, nil
}

func (s *Snapshot) GetEquipment(_ context.Context, id string) (*client.Equipment, error) {
	all, err := loadCollection[client.Equipment](s.path(equipmentsFile))
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, apperr.NotFound("equipment " + id)
}

// lookupUserRef resolves an assigned-user id against the user collection:
// assignedTo must reference an existing user.
func (s *Snapshot) lookupUserRef(id string) (*client.UserRef, error) {
	users, err := loadCollection[client.AppUser](s.path(usersFile))
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &client.UserRef{ID: users[i].ID, Username: users[i].Username, Email: users[i].Email}, nil
		}
	}
	return nil, apperr.Validation("assignedTo", "assigned user does not exist")
}

func (s *Snapshot) applyInput(e *client.Equipment, in client.EquipmentInput) error {
	var assigned *client.UserRef
	if in.AssignedTo != nil && *in.AssignedTo != "" {
		ref, err := s.lookupUserRef(*in.AssignedTo)
		if err != nil {
			return err
		}
		assigned = ref
	}
	e.Name = in.Name
	e.Type = in.Type
	e.SerialNumber = in.SerialNumber
	e.Manufacturer = in.Manufacturer
	e.Model = in.Model
	e.PurchaseDate = in.PurchaseDate
	e.WarrantyEndDate = in.WarrantyEndDate
	e.Status = in.Status
	e.AssignedTo = assigned
	e.Location = in.Location
	e.Notes = in.Notes
	return nil
}

func (s *Snapshot) CreateEquipment(_ context.Context, in client.EquipmentInput) (*client.Equipment, error) {
	all, err := loadCollection[client.Equipment](s.path(equipmentsFile))
	if err != nil {
		return nil, err
	}

	equipment := client.Equipment{ID: uuid.NewString()}
	if err := s.applyInput(&equipment, in); err != nil {
		return nil, err
	}

	all = append(all, equipment)
	if err := saveCollection(s.path(equipmentsFile), all); err != nil {
		return nil, err
	}
	return &equipment, nil
}

func (s *Snapshot) UpdateEquipment(_ context.Context, id string, in client.EquipmentInput) (*client.Equipment, error) {
	all, err := loadCollection[client.Equipment](s.path(equipmentsFile))
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID != id {
			continue
		}
		if err := s.applyInput(&all[i], in); err != nil {
			return nil, err
		}
		if err := saveCollection(s.path(equipmentsFile), all); err != nil {
			return nil, err
		}
		return &all[i], nil
	}
	return nil, apperr.NotFound("equipment " + id)
}

func (s *Snapshot) DeleteEquipment(_ context.Context, id string) error {
	all, err := loadCollection[client.Equipment](s.path(equipmentsFile))
	if err != nil {
		return err
	}
	kept := all[:0]
	found := false
	for i := range all {
		if all[i].ID == id {
			found = true
			continue
		}
		kept = append(kept, all[i])
	}
	if !found {
		return apperr.NotFound("equipment " + id)
	}
	return saveCollection(s.path(equipmentsFile), kept)
}

// ---------- users ----------

func (s *Snapshot) ListUsers(_ context.Context) ([]client.AppUser, error) {
	users, err := loadCollection[client.AppUser](s.path(usersFile))
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (s *Snapshot) CreateUser(_ context.Context, in client.UserInput) (*client.AppUser, error) {
	users, err := loadCollection[client.AppUser](s.path(usersFile))
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Username, in.Username) {
			return nil, apperr.Validation("username", "username already taken")
		}
	}

	user := client.AppUser{
		ID:        uuid.NewString(),
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      in.Role,
	}
	users = append(users, user)
	if err := saveCollection(s.path(usersFile), users); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Snapshot) UpdateUser(_ context.Context, id string, in client.UserInput) (*client.AppUser, error) {
	users, err := loadCollection[client.AppUser](s.path(usersFile))
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID != id {
			continue
		}
		users[i].Username = in.Username
		users[i].Email = in.Email
		users[i].FirstName = in.FirstName
		users[i].LastName = in.LastName
		users[i].Role = in.Role
		if err := saveCollection(s.path(usersFile), users); err != nil {
			return nil, err
		}
		return &users[i], nil
	}
	return nil, apperr.NotFound("user " + id)
}

func (s *Snapshot) DeleteUser(_ context.Context, id string) error {
	users, err := loadCollection[client.AppUser](s.path(usersFile))
	if err != nil {
		return err
	}
	kept := users[:0]
	found := false
	for i := range users {
		if users[i].ID == id {
			found = true
			continue
		}
		kept = append(kept, users[i])
	}
	if !found {
		return apperr.NotFound("user " + id)
	}
	if err := saveCollection(s.path(usersFile), kept); err != nil {
		return err
	}

	// unassign the deleted user's equipment, mirroring the backend's SET NULL
	equipments, err := loadCollection[client.Equipment](s.path(equipmentsFile))
	if err != nil {
		return err
	}
	changed := false
	for i := range equipments {
		if equipments[i].AssignedTo != nil && equipments[i].AssignedTo.ID == id {
			equipments[i].AssignedTo = nil
			changed = true
		}
	}
	if changed {
		return saveCollection(s.path(equipmentsFile), equipments)
	}
	return nil
}

// ---------- maintenance ----------

func (s *Snapshot) ListMaintenance(_ context.Context, equipmentID string) ([]client.MaintenanceRecord, error) {
	records, err := loadCollection[client.MaintenanceRecord](s.path(maintenancesFile))
	if err != nil {
		return nil, err
	}
	matched := make([]client.MaintenanceRecord, 0, len(records))
	for i := range records {
		if records[i].Equipment == equipmentID {
			matched = append(matched, records[i])
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].MaintenanceDate.After(matched[j].MaintenanceDate)
	})
	return matched, nil
}

func (s *Snapshot) AddMaintenance(_ context.Context, in client.MaintenanceInput) (*client.MaintenanceRecord, error) {
	if _, err := s.GetEquipment(context.Background(), in.EquipmentID); err != nil {
		return nil, err
	}

	date, err := util.ParseDate(in.MaintenanceDate)
	if err != nil {
		return nil, apperr.Validation("maintenanceDate", err.Error())
	}

	record := client.MaintenanceRecord{
		ID:              uuid.NewString(),
		Equipment:       in.EquipmentID,
		MaintenanceDate: date,
		Description:     in.Description,
		Cost:            in.Cost,
		Notes:           in.Notes,
	}
	// stamp the acting user, the way the backend stamps the bearer identity
	if s.actor != nil {
		if actor := s.actor(); actor != nil {
			record.PerformedBy = &client.UserRef{ID: actor.ID, Username: actor.Username}
		}
	}

	records, err := loadCollection[client.MaintenanceRecord](s.path(maintenancesFile))
	if err != nil {
		return nil, err
	}
	records = append(records, record)
	if err := saveCollection(s.path(maintenancesFile), records); err != nil {
		return nil, err
	}
	return &record, nil
}
