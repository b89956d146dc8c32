// Package controller holds the view-side logic of the app: the filtered,
// paginated equipment listing and the create/edit forms. Controllers depend
// only on the repository interface and the auth guard.
package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/davehub/parc-manager/internal/apperr"
	"github.com/davehub/parc-manager/internal/authguard"
	"github.com/davehub/parc-manager/internal/client"
	"github.com/davehub/parc-manager/internal/repository"
)

// Messages surfaced inline by the list view.
const (
	msgSessionExpired = "Votre session a expiré, veuillez vous reconnecter."
	msgLoadFailed     = "Le chargement des équipements a échoué, veuillez réessayer."
)

// EquipmentList drives the equipment listing view: filters, pagination and
// the loaded page. Changing any filter resets the page cursor to 1, so the
// cursor can never point past the new total.
type EquipmentList struct {
	repo     repository.Inventory
	guard    *authguard.Guard
	pageSize int

	mu      sync.Mutex
	search  string
	eqType  string
	status  string
	assignd string
	page    int
	seq     uint64
	loading bool

	items       []client.Equipment
	totalCount  int64
	totalPages  int
	currentPage int
	message     string
	loaded      bool
}

// NewEquipmentList builds a list controller with a fixed page size.
func NewEquipmentList(repo repository.Inventory, guard *authguard.Guard, pageSize int) *EquipmentList {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &EquipmentList{repo: repo, guard: guard, pageSize: pageSize, page: 1}
}

// SetSearch updates the free-text filter and resets the page cursor.
func (l *EquipmentList) SetSearch(s string) { l.setFilter(&l.search, s) }

// SetType updates the type filter and resets the page cursor.
func (l *EquipmentList) SetType(t string) { l.setFilter(&l.eqType, t) }

// SetStatus updates the status filter and resets the page cursor.
func (l *EquipmentList) SetStatus(s string) { l.setFilter(&l.status, s) }

// SetAssignedTo updates the assigned-user filter (admin view) and resets the
// page cursor.
func (l *EquipmentList) SetAssignedTo(id string) { l.setFilter(&l.assignd, id) }

func (l *EquipmentList) setFilter(field *string, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if *field == value {
		return
	}
	*field = value
	l.page = 1
}

// SetPage moves the page cursor.
func (l *EquipmentList) SetPage(page int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if page <= 0 {
		page = 1
	}
	l.page = page
}

// Page returns the current page cursor.
func (l *EquipmentList) Page() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page
}

// Filter returns the query the next Load will issue.
func (l *EquipmentList) Filter() client.EquipmentFilter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filterLocked()
}

func (l *EquipmentList) filterLocked() client.EquipmentFilter {
	return client.EquipmentFilter{
		Search:     l.search,
		Type:       l.eqType,
		Status:     l.status,
		AssignedTo: l.assignd,
		Page:       l.page,
		Limit:      l.pageSize,
	}
}

// Load fetches the page described by the current filters. Responses to
// superseded requests are discarded (last request wins), so rapid filter
// changes never flicker back to outdated data.
//
// A 401/403 means the session is no longer valid: the guard is logged out and
// a re-authenticate message surfaced. Any other failure keeps the previously
// loaded data untouched.
func (l *EquipmentList) Load(ctx context.Context) error {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	filter := l.filterLocked()
	l.loading = true
	l.mu.Unlock()

	result, err := l.repo.ListEquipments(ctx, filter)

	l.mu.Lock()
	defer l.mu.Unlock()

	if seq != l.seq {
		// a newer request was issued while this one was in flight
		return nil
	}
	l.loading = false

	if err != nil {
		var authErr *apperr.AuthError
		if errors.As(err, &authErr) {
			_ = l.guard.Logout()
			l.message = msgSessionExpired
		} else {
			l.message = msgLoadFailed
		}
		return err
	}

	l.items = result.Equipments
	l.totalCount = result.TotalCount
	l.totalPages = result.TotalPages
	l.currentPage = result.CurrentPage
	l.message = ""
	l.loaded = true
	return nil
}

// Items returns the loaded page.
func (l *EquipmentList) Items() []client.Equipment {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items
}

// TotalCount returns the total number of matching records.
func (l *EquipmentList) TotalCount() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalCount
}

// TotalPages returns the page count for the pagination controls.
func (l *EquipmentList) TotalPages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalPages
}

// CurrentPage returns the page the loaded data belongs to.
func (l *EquipmentList) CurrentPage() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentPage
}

// Empty reports whether the last load succeeded with zero matches: the view
// renders an explicit "no results" state, not an empty table.
func (l *EquipmentList) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded && l.totalCount == 0
}

// Loading reports whether a request is outstanding; the view uses it to
// disable duplicate submissions.
func (l *EquipmentList) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Message returns the inline, dismissable message, if any.
func (l *EquipmentList) Message() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.message
}

// DismissMessage clears the inline message.
func (l *EquipmentList) DismissMessage() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.message = ""
}
