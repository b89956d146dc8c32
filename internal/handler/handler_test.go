package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/davehub/parc-manager/internal/config"
	"github.com/davehub/parc-manager/internal/database"
	"github.com/davehub/parc-manager/internal/middleware"
	"github.com/davehub/parc-manager/internal/models"
	"github.com/davehub/parc-manager/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testJWTSecret = "handler-test-secret"

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("database.Init() error = %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("database.AutoMigrate() error = %v", err)
	}
	return db
}

// testRouter wires the same route tree the server runs, against a throwaway
// database. Self-service admin registration stays off unless a test flips it.
func testRouter(t *testing.T, db *gorm.DB, allowSelfServiceAdmin bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()

	api := r.Group("/api")

	// bcrypt.MinCost keeps the suite fast; production cost comes from config
	authHandler := NewAuthHandler(db, testJWTSecret, 1, bcrypt.MinCost, allowSelfServiceAdmin)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(testJWTSecret, db))
	protected.GET("/me", GetMe)

	userHandler := NewUserHandler(db, bcrypt.MinCost)
	protected.GET("/users", userHandler.ListUsers)

	equipmentHandler := NewEquipmentHandler(db, 10)
	protected.GET("/equipments", equipmentHandler.ListEquipments)
	protected.GET("/equipments/:id", equipmentHandler.GetEquipment)

	maintenanceHandler := NewMaintenanceHandler(db)
	protected.GET("/maintenances/:equipmentId", maintenanceHandler.ListForEquipment)
	protected.POST("/maintenances", maintenanceHandler.Create)

	admin := protected.Group("")
	admin.Use(middleware.RequireAdmin())
	admin.POST("/users", userHandler.CreateUser)
	admin.PUT("/users/:id", userHandler.UpdateUser)
	admin.DELETE("/users/:id", userHandler.DeleteUser)
	admin.POST("/equipments", equipmentHandler.CreateEquipment)
	admin.PUT("/equipments/:id", equipmentHandler.UpdateEquipment)
	admin.DELETE("/equipments/:id", equipmentHandler.DeleteEquipment)

	exportHandler := NewExportHandler(db)
	admin.GET("/export/equipments.csv", exportHandler.ExportCSV)
	admin.GET("/export/equipments.xlsx", exportHandler.ExportXLSX)

	return r
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	user := models.User{
		Username:     username,
		Email:        username + "@example.fr",
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	token, err := util.GenerateToken(testJWTSecret, user.ID, user.Role, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return &user, token
}

func seedEquipment(t *testing.T, db *gorm.DB, name, eqType, status string, assignedTo *models.User) *models.Equipment {
	t.Helper()
	e := models.Equipment{
		Name:         name,
		Type:         eqType,
		SerialNumber: "SN-" + name,
		Status:       status,
		Location:     "Bureau",
	}
	if assignedTo != nil {
		e.AssignedToID = &assignedTo.ID
	}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("seed equipment %s: %v", name, err)
	}
	return &e
}

// doJSON performs one request and decodes the response body into out (nilable).
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload, out interface{}) int {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if out != nil && w.Code < 300 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response (%d): %v\n%s", w.Code, err, w.Body.String())
		}
	}
	return w.Code
}

// ---------- auth ----------

func TestRegister_Success(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)

	var resp map[string]string
	code := doJSON(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "jean",
		"email":    "jean@example.fr",
		"password": "password123",
	}, &resp)
	if code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", code)
	}
	if resp["token"] == "" {
		t.Error("register response has no token")
	}
	if resp["role"] != models.RoleUser {
		t.Errorf("role = %q, want defaulted to user", resp["role"])
	}
}

func TestRegister_AdminRoleDisabledByDefault(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)

	code := doJSON(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "wannabe",
		"email":    "w@example.fr",
		"password": "password123",
		"role":     "admin",
	}, nil)
	if code != http.StatusForbidden {
		t.Errorf("self-service admin register status = %d, want 403", code)
	}
}

func TestRegister_AdminRoleWhenEnabled(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, true)

	var resp map[string]string
	code := doJSON(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "boss",
		"email":    "boss@example.fr",
		"password": "password123",
		"role":     "admin",
	}, &resp)
	if code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", code)
	}
	if resp["role"] != models.RoleAdmin {
		t.Errorf("role = %q, want admin", resp["role"])
	}
}

func TestRegister_DuplicateUsernameCaseInsensitive(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)
	seedUser(t, db, "Alice", models.RoleUser)

	code := doJSON(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "a@example.fr",
		"password": "password123",
	}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("duplicate register status = %d, want 400", code)
	}
}

func TestRegister_Validation(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)

	testCases := []struct {
		name    string
		payload map[string]string
	}{
		{"short username", map[string]string{"username": "ab", "email": "a@b.fr", "password": "password123"}},
		{"bad email", map[string]string{"username": "jean", "email": "nope", "password": "password123"}},
		{"short password", map[string]string{"username": "jean", "email": "a@b.fr", "password": "short"}},
		{"unknown role", map[string]string{"username": "jean", "email": "a@b.fr", "password": "password123", "role": "root"}},
	}

	for _, tc := range testCases {
		code := doJSON(t, r, http.MethodPost, "/api/auth/register", "", tc.payload, nil)
		if code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, code)
		}
	}
}

func TestLogin(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)
	seedUser(t, db, "alice", models.RoleAdmin)

	var resp map[string]string
	code := doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "ALICE", // case-insensitive match
		"password": "password123",
	}, &resp)
	if code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", code)
	}
	if resp["token"] == "" || resp["username"] != "alice" || resp["role"] != models.RoleAdmin {
		t.Errorf("login response = %+v", resp)
	}

	code = doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	}, nil)
	if code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", code)
	}

	code = doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "nobody",
		"password": "password123",
	}, nil)
	if code != http.StatusUnauthorized {
		t.Errorf("unknown user status = %d, want 401", code)
	}
}

// ---------- middleware ----------

func TestAuthMiddleware(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)
	_, token := seedUser(t, db, "alice", models.RoleUser)

	if code := doJSON(t, r, http.MethodGet, "/api/me", "", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", code)
	}
	if code := doJSON(t, r, http.MethodGet, "/api/me", "garbage", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", code)
	}
	if code := doJSON(t, r, http.MethodGet, "/api/me", token, nil, nil); code != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", code)
	}
	// token in the query string works too (used for export downloads)
	if code := doJSON(t, r, http.MethodGet, "/api/me?token="+token, "", nil, nil); code != http.StatusOK {
		t.Errorf("query token status = %d, want 200", code)
	}
}

func TestRequireAdmin(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)
	_, userToken := seedUser(t, db, "bob", models.RoleUser)

	code := doJSON(t, r, http.MethodPost, "/api/equipments", userToken, map[string]string{
		"name": "pc", "type": "Ordinateur", "serialNumber": "SN-1",
		"status": "En service", "location": "Bureau",
	}, nil)
	if code != http.StatusForbidden {
		t.Errorf("non-admin create status = %d, want 403", code)
	}
}

// ---------- equipment ----------

type equipmentPageResp struct {
	Equipments  []equipmentResp `json:"equipments"`
	CurrentPage int             `json:"currentPage"`
	TotalPages  int             `json:"totalPages"`
	TotalCount  int64           `json:"totalCount"`
}

func TestListEquipments_RoleScoping(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)
	_, adminToken := seedUser(t, db, "admin", models.RoleAdmin)
	bob, bobToken := seedUser(t, db, "bob", models.RoleUser)

	seedEquipment(t, db, "pc-bob", models.TypeOrdinateur, models.StatusEnService, bob)
	seedEquipment(t, db, "pc-libre", models.TypeOrdinateur, models.StatusEnService, nil)
	seedEquipment(t, db, "srv-01", models.TypeServeur, models.StatusEnPanne, nil)

	var page equipmentPageResp
	if code := doJSON(t, r, http.MethodGet, "/api/equipments", adminToken, nil, &page); code != http.StatusOK {
		t.Fatalf("admin list status = %d", code)
	}
	if page.TotalCount != 3 {
		t.Errorf("admin TotalCount = %d, want 3", page.TotalCount)
	}

	page = equipmentPageResp{}
	if code := doJSON(t, r, http.MethodGet, "/api/equipments", bobToken, nil, &page); code != http.StatusOK {
		t.Fatalf("user list status = %d", code)
	}
	if page.TotalCount != 1 || page.Equipments[0].Name != "pc-bob" {
		t.Errorf("user page = %+v, want only pc-bob", page.Equipments)
	}

	// a plain user cannot widen their scope with the assignedTo filter
	page = equipmentPageResp{}
	if code := doJSON(t, r, http.MethodGet, "/api/equipments?assignedTo=all", bobToken, nil, &page); code != http.StatusOK {
		t.Fatalf("user filtered list status = %d", code)
	}
	if page.TotalCount != 1 {
		t.Errorf("user TotalCount with assignedTo=all = %d, want still 1", page.TotalCount)
	}
}

func TestListEquipments_Filters(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)
	_, adminToken := seedUser(t, db, "admin", models.RoleAdmin)

	seedEquipment(t, db, "pc-compta", models.TypeOrdinateur, models.StatusEnService, nil)
	seedEquipment(t, db, "imprimante-accueil", models.TypeImprimante, models.StatusEnPanne, nil)
	seedEquipment(t, db, "srv-backup", models.TypeServeur, models.StatusEnService, nil)

	testCases := []struct {
		query string
		want  int64
	}{
		{"", 3},
		{"?type=Serveur", 1},
		{"?type=all", 3},
		{"?status=En+panne", 1},
		{"?search=compta", 1},
		{"?search=SN-srv", 1},
		{"?search=zzz", 0},
		{"?type=Ordinateur&status=En+panne", 0},
	}

	for _, tc := range testCases {
		var page equipmentPageResp
		if code := doJSON(t, r, http.MethodGet, "/api/equipments"+tc.query, adminToken, nil, &page); code != http.StatusOK {
			t.Fatalf("list %q status = %d", tc.query, code)
		}
		if page.TotalCount != tc.want {
			t.Errorf("list %q TotalCount = %d, want %d", tc.query, page.TotalCount, tc.want)
		}
	}
}

func TestListEquipments_Pagination(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)
	_, adminToken := seedUser(t, db, "admin", models.RoleAdmin)

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		seedEquipment(t, db, name, models.TypeAutre, models.StatusEnService, nil)
	}

	var page equipmentPageResp
	if code := doJSON(t, r, http.MethodGet, "/api/equipments?page=2&limit=2", adminToken, nil, &page); code != http.StatusOK {
		t.Fatalf("list status = %d", code)
	}
	if page.TotalCount != 5 || page.TotalPages != 3 || page.CurrentPage != 2 {
		t.Errorf("totals = %d/%d/%d, want 5/3/2", page.TotalCount, page.TotalPages, page.CurrentPage)
	}
	if len(page.Equipments) != 2 || page.Equipments[0].Name != "c" {
		t.Errorf("page 2 = %+v, want [c d]", page.Equipments)
	}
}

func TestGetEquipment_Access(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)
	_, adminToken := seedUser(t, db, "admin", models.RoleAdmin)
	bob, bobToken := seedUser(t, db, "bob", models.RoleUser)

	mine := seedEquipment(t, db, "pc-bob", models.TypeOrdinateur, models.StatusEnService, bob)
	other := seedEquipment(t, db, "pc-autre", models.TypeOrdinateur, models.StatusEnService, nil)

	if code := doJSON(t, r, http.MethodGet, "/api/equipments/"+mine.ID, bobToken, nil, nil); code != http.StatusOK {
		t.Errorf("own equipment status = %d, want 200", code)
	}
	if code := doJSON(t, r, http.MethodGet, "/api/equipments/"+other.ID, bobToken, nil, nil); code != http.StatusForbidden {
		t.Errorf("other equipment status = %d, want 403", code)
	}
	if code := doJSON(t, r, http.MethodGet, "/api/equipments/"+other.ID, adminToken, nil, nil); code != http.StatusOK {
		t.Errorf("admin on any equipment status = %d, want 200", code)
	}
	if code := doJSON(t, r, http.MethodGet, "/api/equipments/missing", adminToken, nil, nil); code != http.StatusNotFound {
		t.Errorf("missing equipment status = %d, want 404", code)
	}
}

func TestCreateEquipment(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)
	_, adminToken := seedUser(t, db, "admin", models.RoleAdmin)
	bob, _ := seedUser(t, db, "bob", models.RoleUser)

	var resp equipmentResp
	code := doJSON(t, r, http.MethodPost, "/api/equipments", adminToken, map[string]string{
		"name":         "pc-01",
		"type":         models.TypeOrdinateur,
		"serialNumber": "SN-001",
		"status":       models.StatusEnService,
		"location":     "Bureau 12",
		"assignedTo":   bob.ID,
		"purchaseDate": "2023-03-01",
	}, &resp)
	if code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", code)
	}
	if resp.ID == "" {
		t.Error("created equipment has no id")
	}
	if resp.AssignedTo == nil || resp.AssignedTo.Username != "bob" {
		t.Errorf("AssignedTo = %+v, want bob populated", resp.AssignedTo)
	}
	if resp.PurchaseDate == nil || resp.PurchaseDate.Year() != 2023 {
		t.Errorf("PurchaseDate = %v, want 2023-03-01", resp.PurchaseDate)
	}
	// empty optionals come back as null, not empty strings
	if resp.Manufacturer != nil || resp.Notes != nil {
		t.Errorf("blank optionals = %v / %v, want nil", resp.Manufacturer, resp.Notes)
	}
}

func TestCreateEquipment_Validation(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)
	_, adminToken := seedUser(t, db, "admin", models.RoleAdmin)

	base := map[string]string{
		"name": "pc", "type": models.TypeOrdinateur, "serialNumber": "SN-1",
		"status": models.StatusEnService, "location": "Bureau",
	}

	testCases := []struct {
		name     string
		override map[string]string
	}{
		{"unknown type", map[string]string{"type": "Tablette"}},
		{"unknown status", map[string]string{"status": "Cassé"}},
		{"bad purchase date", map[string]string{"purchaseDate": "01/03/2023"}},
		{"ghost assignee", map[string]string{"assignedTo": "no-such-user"}},
	}

	for _, tc := range testCases {
		payload := map[string]string{}
		for k, v := range base {
			payload[k] = v
		}
		for k, v := range tc.override {
			payload[k] = v
		}
		if code := doJSON(t, r, http.MethodPost, "/api/equipments", adminToken, payload, nil); code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, code)
		}
	}
}

func TestUpdateEquipment_ClearsOptionals(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)
	_, adminToken := seedUser(t, db, "admin", models.RoleAdmin)
	bob, _ := seedUser(t, db, "bob", models.RoleUser)

	manufacturer := "Dell"
	e := models.Equipment{
		Name: "pc-01", Type: models.TypeOrdinateur, SerialNumber: "SN-1",
		Status: models.StatusEnService, Location: "Bureau",
		Manufacturer: &manufacturer, AssignedToID: &bob.ID,
	}
	if err := db.Create(&e).Error; err != nil {
		t.Fatal(err)
	}

	// the update sends the optionals blank: they must persist as NULL
	var resp equipmentResp
	code := doJSON(t, r, http.MethodPut, "/api/equipments/"+e.ID, adminToken, map[string]string{
		"name":         "pc-01",
		"type":         models.TypeOrdinateur,
		"serialNumber": "SN-1",
		"status":       models.StatusHorsService,
		"location":     "Stock",
	}, &resp)
	if code != http.StatusOK {
		t.Fatalf("update status = %d, want 200", code)
	}
	if resp.Manufacturer != nil {
		t.Errorf("Manufacturer = %q, want cleared to nil", *resp.Manufacturer)
	}
	if resp.AssignedTo != nil {
		t.Errorf("AssignedTo = %+v, want cleared to nil", resp.AssignedTo)
	}

	var reloaded models.Equipment
	if err := db.First(&reloaded, "id = ?", e.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.Manufacturer != nil || reloaded.AssignedToID != nil {
		t.Error("cleared optionals still set in storage")
	}
	if reloaded.Status != models.StatusHorsService {
		t.Errorf("Status = %q, want %q", reloaded.Status, models.StatusHorsService)
	}
}

func TestDeleteEquipment(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)
	_, adminToken := seedUser(t, db, "admin", models.RoleAdmin)
	e := seedEquipment(t, db, "pc-01", models.TypeOrdinateur, models.StatusEnService, nil)

	if code := doJSON(t, r, http.MethodDelete, "/api/equipments/"+e.ID, adminToken, nil, nil); code != http.StatusOK {
		t.Errorf("delete status = %d, want 200", code)
	}
	if code := doJSON(t, r, http.MethodDelete, "/api/equipments/"+e.ID, adminToken, nil, nil); code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", code)
	}
}

// ---------- users ----------

func TestDeleteUser_SelfDeleteBlocked(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)
	admin, adminToken := seedUser(t, db, "admin", models.RoleAdmin)

	if code := doJSON(t, r, http.MethodDelete, "/api/users/"+admin.ID, adminToken, nil, nil); code != http.StatusBadRequest {
		t.Errorf("self delete status = %d, want 400", code)
	}
}

func TestDeleteUser_UnassignsEquipment(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)
	_, adminToken := seedUser(t, db, "admin", models.RoleAdmin)
	bob, _ := seedUser(t, db, "bob", models.RoleUser)
	e := seedEquipment(t, db, "pc-bob", models.TypeOrdinateur, models.StatusEnService, bob)

	if code := doJSON(t, r, http.MethodDelete, "/api/users/"+bob.ID, adminToken, nil, nil); code != http.StatusOK {
		t.Fatalf("delete user status = %d, want 200", code)
	}

	var reloaded models.Equipment
	if err := db.First(&reloaded, "id = ?", e.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.AssignedToID != nil {
		t.Errorf("AssignedToID = %v after owner deletion, want NULL", *reloaded.AssignedToID)
	}
}

func TestCreateUser_AdminOnly(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)
	_, adminToken := seedUser(t, db, "admin", models.RoleAdmin)

	var resp models.User
	code := doJSON(t, r, http.MethodPost, "/api/users", adminToken, map[string]string{
		"username": "jean",
		"email":    "jean@example.fr",
		"role":     "user",
		"password": "password123",
	}, &resp)
	if code != http.StatusCreated {
		t.Fatalf("create user status = %d, want 201", code)
	}
	if resp.ID == "" || resp.Username != "jean" {
		t.Errorf("created user = %+v", resp)
	}

	// an admin creating another admin is allowed; self-service is what's gated
	code = doJSON(t, r, http.MethodPost, "/api/users", adminToken, map[string]string{
		"username": "chef",
		"email":    "chef@example.fr",
		"role":     "admin",
		"password": "password123",
	}, nil)
	if code != http.StatusCreated {
		t.Errorf("admin-created admin status = %d, want 201", code)
	}
}

// ---------- maintenance ----------

func TestMaintenance_Permissions(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)
	_, adminToken := seedUser(t, db, "admin", models.RoleAdmin)
	bob, bobToken := seedUser(t, db, "bob", models.RoleUser)
	_, evaToken := seedUser(t, db, "eva", models.RoleUser)

	e := seedEquipment(t, db, "pc-bob", models.TypeOrdinateur, models.StatusEnService, bob)

	payload := map[string]interface{}{
		"equipmentId":     e.ID,
		"maintenanceDate": "2024-01-10",
		"description":     "Remplacement disque",
	}

	if code := doJSON(t, r, http.MethodPost, "/api/maintenances", bobToken, payload, nil); code != http.StatusCreated {
		t.Errorf("assigned user create status = %d, want 201", code)
	}
	if code := doJSON(t, r, http.MethodPost, "/api/maintenances", adminToken, payload, nil); code != http.StatusCreated {
		t.Errorf("admin create status = %d, want 201", code)
	}
	if code := doJSON(t, r, http.MethodPost, "/api/maintenances", evaToken, payload, nil); code != http.StatusForbidden {
		t.Errorf("unrelated user create status = %d, want 403", code)
	}

	if code := doJSON(t, r, http.MethodGet, "/api/maintenances/"+e.ID, evaToken, nil, nil); code != http.StatusForbidden {
		t.Errorf("unrelated user list status = %d, want 403", code)
	}
}

func TestMaintenance_CreateAndList(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)
	admin, adminToken := seedUser(t, db, "admin", models.RoleAdmin)
	e := seedEquipment(t, db, "pc-01", models.TypeOrdinateur, models.StatusEnService, nil)

	cost := 49.90
	var created maintenanceResp
	code := doJSON(t, r, http.MethodPost, "/api/maintenances", adminToken, map[string]interface{}{
		"equipmentId":     e.ID,
		"maintenanceDate": "2024-01-10",
		"description":     "Remplacement disque",
		"cost":            cost,
	}, &created)
	if code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", code)
	}
	if created.PerformedBy == nil || created.PerformedBy.ID != admin.ID {
		t.Errorf("PerformedBy = %+v, want stamped from the caller", created.PerformedBy)
	}
	if created.Cost == nil || *created.Cost != cost {
		t.Errorf("Cost = %v, want %v", created.Cost, cost)
	}

	if code := doJSON(t, r, http.MethodPost, "/api/maintenances", adminToken, map[string]interface{}{
		"equipmentId":     e.ID,
		"maintenanceDate": "2024-05-02",
		"description":     "Nettoyage",
	}, nil); code != http.StatusCreated {
		t.Fatal("second create failed")
	}

	var records []maintenanceResp
	if code := doJSON(t, r, http.MethodGet, "/api/maintenances/"+e.ID, adminToken, nil, &records); code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", code)
	}
	if len(records) != 2 {
		t.Fatalf("list = %d records, want 2", len(records))
	}
	if records[0].Description != "Nettoyage" {
		t.Errorf("records[0] = %q, want the most recent first", records[0].Description)
	}
}

func TestMaintenance_Validation(t *testing.T) {
	db := testDB(t)
	r := testRouter(t, db, false)
	_, adminToken := seedUser(t, db, "admin", models.RoleAdmin)
	e := seedEquipment(t, db, "pc-01", models.TypeOrdinateur, models.StatusEnService, nil)

	negative := -5.0
	code := doJSON(t, r, http.MethodPost, "/api/maintenances", adminToken, map[string]interface{}{
		"equipmentId":     e.ID,
		"maintenanceDate": "2024-01-10",
		"description":     "x",
		"cost":            negative,
	}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("negative cost status = %d, want 400", code)
	}

	code = doJSON(t, r, http.MethodPost, "/api/maintenances", adminToken, map[string]interface{}{
		"equipmentId":     "missing",
		"maintenanceDate": "2024-01-10",
		"description":     "x",
	}, nil)
	if code != http.StatusNotFound {
		t.Errorf("unknown equipment status = %d, want 404", code)
	}
}
