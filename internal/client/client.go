package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/davehub/parc-manager/internal/apperr"
)

// Client talks to the parc-manager HTTP API. It carries the bearer token of
// the current session; a 401/403 from any call is surfaced as
// apperr.AuthError(Unauthorized), the universal session-invalid signal.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// New builds a Client against baseURL (e.g. "http://localhost:8080/api").
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken installs the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) { c.token = token }

// ClearToken drops the bearer token.
func (c *Client) ClearToken() { c.token = "" }

type apiMessage struct {
	Message string `json:"message"`
}

func readMessage(body io.Reader) string {
	var m apiMessage
	if err := json.NewDecoder(body).Decode(&m); err != nil {
		return ""
	}
	return m.Message
}

// do performs a request and decodes a 2xx JSON body into out (out may be nil).
func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return apperr.Network(method+" "+path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperr.Network(method+" "+path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Network(method+" "+path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperr.Network(method+" "+path, err)
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperr.Auth(apperr.Unauthorized, readMessage(resp.Body))
	case resp.StatusCode == http.StatusNotFound:
		return apperr.NotFound(method + " " + path)
	default:
		msg := readMessage(resp.Body)
		if msg == "" {
			msg = resp.Status
		}
		return apperr.Network(method+" "+path, fmt.Errorf("%s", msg))
	}
}

// ---------- auth ----------

// Login authenticates and returns the credentials on success. A 4xx answer
// maps to AuthError(InvalidCredentials); transport failures to NetworkError.
func (c *Client) Login(ctx context.Context, username, password string) (*Credentials, error) {
	payload := map[string]string{"username": username, "password": password}
	creds, err := c.postAuth(ctx, "/auth/login", payload)
	if err != nil {
		return nil, err
	}
	c.token = creds.Token
	return creds, nil
}

// Register creates an account and returns its credentials, logging the new
// user in on the spot (same contract as Login).
func (c *Client) Register(ctx context.Context, username, email, password, role string) (*Credentials, error) {
	payload := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
		"role":     role,
	}
	creds, err := c.postAuth(ctx, "/auth/register", payload)
	if err != nil {
		return nil, err
	}
	c.token = creds.Token
	return creds, nil
}

func (c *Client) postAuth(ctx context.Context, path string, payload interface{}) (*Credentials, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Network("POST "+path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, apperr.Network("POST "+path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Network("POST "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, apperr.Auth(apperr.InvalidCredentials, readMessage(resp.Body))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.Network("POST "+path, fmt.Errorf("%s", resp.Status))
	}

	var creds Credentials
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return nil, apperr.Network("POST "+path, err)
	}
	return &creds, nil
}

// ---------- users ----------

// ListUsers returns the full user directory.
func (c *Client) ListUsers(ctx context.Context) ([]AppUser, error) {
	var users []AppUser
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser creates a user account (admin only).
func (c *Client) CreateUser(ctx context.Context, in UserInput) (*AppUser, error) {
	var user AppUser
	if err := c.do(ctx, http.MethodPost, "/users", in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser edits a user account (admin only).
func (c *Client) UpdateUser(ctx context.Context, id string, in UserInput) (*AppUser, error) {
	var user AppUser
	if err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user account (admin only).
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}

// ---------- equipment ----------

// ListEquipments fetches one filtered page of equipment.
func (c *Client) ListEquipments(ctx context.Context, filter EquipmentFilter) (*EquipmentPage, error) {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Type != "" && filter.Type != "all" {
		q.Set("type", filter.Type)
	}
	if filter.Status != "" && filter.Status != "all" {
		q.Set("status", filter.Status)
	}
	if filter.AssignedTo != "" && filter.AssignedTo != "all" {
		q.Set("assignedTo", filter.AssignedTo)
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	var result EquipmentPage
	if err := c.do(ctx, http.MethodGet, "/equipments?"+q.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetEquipment fetches one equipment record.
func (c *Client) GetEquipment(ctx context.Context, id string) (*Equipment, error) {
	var equipment Equipment
	if err := c.do(ctx, http.MethodGet, "/equipments/"+url.PathEscape(id), nil, &equipment); err != nil {
		return nil, err
	}
	return &equipment, nil
}

// CreateEquipment registers a new equipment record (admin only).
func (c *Client) CreateEquipment(ctx context.Context, in EquipmentInput) (*Equipment, error) {
	var equipment Equipment
	if err := c.do(ctx, http.MethodPost, "/equipments", in, &equipment); err != nil {
		return nil, err
	}
	return &equipment, nil
}

// UpdateEquipment edits an equipment record (admin only).
func (c *Client) UpdateEquipment(ctx context.Context, id string, in EquipmentInput) (*Equipment, error) {
	var equipment Equipment
	if err := c.do(ctx, http.MethodPut, "/equipments/"+url.PathEscape(id), in, &equipment); err != nil {
		return nil, err
	}
	return &equipment, nil
}

// DeleteEquipment removes an equipment record (admin only).
func (c *Client) DeleteEquipment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/equipments/"+url.PathEscape(id), nil, nil)
}

// ---------- maintenance ----------

// ListMaintenance returns the maintenance history of one equipment.
func (c *Client) ListMaintenance(ctx context.Context, equipmentID string) ([]MaintenanceRecord, error) {
	var records []MaintenanceRecord
	if err := c.do(ctx, http.MethodGet, "/maintenances/"+url.PathEscape(equipmentID), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// AddMaintenance appends one maintenance record.
func (c *Client) AddMaintenance(ctx context.Context, in MaintenanceInput) (*MaintenanceRecord, error) {
	var record MaintenanceRecord
	if err := c.do(ctx, http.MethodPost, "/maintenances", in, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
