package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughpos/config"
	"github.com/talkincode/toughpos/internal/auth"
	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/repository"
	"github.com/talkincode/toughpos/internal/repository/repotest"
	"github.com/talkincode/toughpos/internal/service"
	"github.com/talkincode/toughpos/internal/storage"
	"github.com/talkincode/toughpos/internal/webserver"
)

var pngData = []byte("\x89PNG\r\n\x1a\nfake image body")

type testEnv struct {
	t      *testing.T
	server *webserver.Server
	users  *repository.GormUserRepository
	store  *storage.MemoryStore
}

type envelope struct {
	Meta struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	} `json:"meta"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		CurrentPage int   `json:"currentPage"`
		TotalPages  int   `json:"totalPages"`
		Total       int64 `json:"total"`
		PerPage     int   `json:"perPage"`
	} `json:"pagination"`
	Errors []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := repotest.NewDB(t)
	store := storage.NewMemoryStore()
	users := repository.NewGormUserRepository(db)
	categories := repository.NewGormCategoryRepository(db)
	products := repository.NewGormProductRepository(db)
	refs := repository.NewGormImageRefs(db)
	tokens := auth.NewTokenService("test-secret", users)

	userSvc := service.NewUserService(users)
	if _, err := userSvc.Create(context.Background(), service.UserInput{Name: "Admin", Email: "a@b.com", Password: "secret1"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	cfg := config.DefaultAppConfig()
	cfg.Web.Secret = "test-secret"
	server := webserver.NewServer(cfg, tokens)
	cleanImages := func(context.Context) (int, error) { return 3, nil }
	New(Services{
		Auth:        service.NewAuthService(users, tokens),
		Users:       userSvc,
		Categories:  service.NewCategoryService(categories, products, refs, store),
		Products:    service.NewProductService(products, categories, refs, store),
		Customers:   service.NewCustomerService(repository.NewGormCustomerRepository(db)),
		Store:       store,
		CleanImages: cleanImages,
	}).Init(server)

	return &testEnv{t: t, server: server, users: users, store: store}
}

func (e *testEnv) do(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	e.t.Helper()
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Echo().ServeHTTP(rec, req)
	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			e.t.Fatalf("decode %s: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func (e *testEnv) json(method, target, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.do(req, token)
}

func (e *testEnv) multipart(method, target, token string, fields map[string]string, image []byte) (*httptest.ResponseRecorder, envelope) {
	e.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			e.t.Fatal(err)
		}
	}
	if image != nil {
		fw, err := w.CreateFormFile("image", "photo.png")
		if err != nil {
			e.t.Fatal(err)
		}
		if _, err := fw.Write(image); err != nil {
			e.t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		e.t.Fatal(err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return e.do(req, token)
}

func (e *testEnv) login() string {
	e.t.Helper()
	rec, env := e.json(http.MethodPost, "/api/login", "", map[string]string{"email": "a@b.com", "password": "secret1"})
	if rec.Code != http.StatusOK {
		e.t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		e.t.Fatalf("login data = %s (%v)", env.Data, err)
	}
	return data.Token
}

func errorFields(env envelope) map[string]bool {
	fields := make(map[string]bool)
	for _, fe := range env.Errors {
		fields[fe.Field] = true
	}
	return fields
}

func TestLoginLogout(t *testing.T) {
	e := newTestEnv(t)

	rec, env := e.json(http.MethodPost, "/api/login", "", map[string]string{"email": "a@b.com", "password": "secret1"})
	if rec.Code != http.StatusOK || !env.Meta.Success {
		t.Fatalf("login = %d: %s", rec.Code, rec.Body.String())
	}
	var data struct {
		Token string                 `json:"token"`
		User  map[string]interface{} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Token == "" {
		t.Error("missing token")
	}
	if _, ok := data.User["password"]; ok {
		t.Error("user password serialized")
	}
	if data.User["email"] != "a@b.com" || data.User["isLoggedIn"] != true {
		t.Errorf("user = %v", data.User)
	}

	u, err := e.users.GetByEmail(context.Background(), "a@b.com")
	if err != nil || !u.IsLoggedIn {
		t.Fatalf("flag after login = %+v, %v", u, err)
	}

	rec, _ = e.json(http.MethodPost, "/api/logout", data.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout = %d: %s", rec.Code, rec.Body.String())
	}
	if u, _ = e.users.GetByEmail(context.Background(), "a@b.com"); u.IsLoggedIn {
		t.Error("flag still set after logout")
	}
}

func TestLoginFailures(t *testing.T) {
	e := newTestEnv(t)
	tests := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{"unknown user", map[string]string{"email": "x@b.com", "password": "secret1"}, http.StatusNotFound},
		{"wrong password", map[string]string{"email": "a@b.com", "password": "secret2"}, http.StatusUnauthorized},
		{"short password", map[string]string{"email": "a@b.com", "password": "123"}, http.StatusUnprocessableEntity},
		{"missing email", map[string]string{"password": "secret1"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := e.json(http.MethodPost, "/api/login", "", tt.body)
			if rec.Code != tt.status || env.Meta.Success {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestRoutesRequireToken(t *testing.T) {
	e := newTestEnv(t)
	for _, target := range []string{"/api/users", "/api/categories", "/api/products", "/api/customers", "/api/products-export"} {
		rec, env := e.json(http.MethodGet, target, "", nil)
		if rec.Code != http.StatusUnauthorized || env.Meta.Success {
			t.Errorf("%s without token = %d", target, rec.Code)
		}
		rec, _ = e.json(http.MethodGet, target, "not-a-token", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s with bad token = %d", target, rec.Code)
		}
	}
}

func TestCategoryEndpoints(t *testing.T) {
	e := newTestEnv(t)
	token := e.login()

	rec, env := e.multipart(http.MethodPost, "/api/categories", token, map[string]string{"description": "Chips"}, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid create = %d: %s", rec.Code, rec.Body.String())
	}
	if f := errorFields(env); !f["name"] || !f["image"] {
		t.Errorf("errors = %+v", env.Errors)
	}

	rec, env = e.multipart(http.MethodPost, "/api/categories", token,
		map[string]string{"name": "Snacks", "description": "Chips and crackers"}, pngData)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}
	var cat struct {
		ID    int64  `json:"id"`
		Image string `json:"image"`
	}
	if err := json.Unmarshal(env.Data, &cat); err != nil || cat.ID == 0 {
		t.Fatalf("created = %s", env.Data)
	}

	// the stored image is served publicly
	rec, _ = e.do(httptest.NewRequest(http.MethodGet, "/"+cat.Image, nil), "")
	if rec.Code != http.StatusOK || !bytes.Equal(rec.Body.Bytes(), pngData) {
		t.Errorf("GET image = %d", rec.Code)
	}

	rec, env = e.json(http.MethodGet, "/api/categories?page=x&limit=0&search=snack", token, nil)
	if rec.Code != http.StatusOK || env.Pagination == nil {
		t.Fatalf("list = %d: %s", rec.Code, rec.Body.String())
	}
	if p := env.Pagination; p.CurrentPage != 1 || p.PerPage != 5 || p.Total != 1 || p.TotalPages != 1 {
		t.Errorf("pagination = %+v", *p)
	}

	rec, env = e.json(http.MethodGet, "/api/categories?limit=9223372036854775807&page=9223372036854775807", token, nil)
	if rec.Code != http.StatusOK || env.Pagination == nil {
		t.Fatalf("huge window list = %d: %s", rec.Code, rec.Body.String())
	}
	if p := env.Pagination; p.PerPage != domain.MaxPerPage || p.Total != 1 {
		t.Errorf("huge window pagination = %+v", *p)
	}

	rec, _ = e.multipart(http.MethodPut, "/api/categories/999", token,
		map[string]string{"name": "Ghost", "description": "none"}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("update missing = %d", rec.Code)
	}
	rec, _ = e.multipart(http.MethodPut, "/api/categories/999", token, map[string]string{"description": "none"}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("invalid update of missing category = %d", rec.Code)
	}
	rec, _ = e.json(http.MethodGet, "/api/categories/abc", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id = %d", rec.Code)
	}

	rec, _ = e.json(http.MethodDelete, "/api/categories/"+itoa(cat.ID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete = %d: %s", rec.Code, rec.Body.String())
	}
	if e.store.Len() != 0 {
		t.Errorf("image left after delete: %d blobs", e.store.Len())
	}
	rec, _ = e.json(http.MethodDelete, "/api/categories/"+itoa(cat.ID), token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete = %d", rec.Code)
	}
}

func TestProductEndpoints(t *testing.T) {
	e := newTestEnv(t)
	token := e.login()

	_, env := e.multipart(http.MethodPost, "/api/categories", token,
		map[string]string{"name": "Snacks", "description": "Chips"}, pngData)
	var cat struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &cat); err != nil {
		t.Fatal(err)
	}

	fields := map[string]string{
		"barcode": "12345", "title": "Potato chips", "description": "Salted",
		"buy_price": "1000", "sell_price": "1500", "stock": "10", "category_id": itoa(cat.ID),
	}
	rec, env := e.multipart(http.MethodPost, "/api/products", token, fields, pngData)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}
	var product struct {
		ID       int64 `json:"id"`
		Category struct {
			Name string `json:"name"`
		} `json:"category"`
	}
	if err := json.Unmarshal(env.Data, &product); err != nil || product.Category.Name != "Snacks" {
		t.Fatalf("created = %s", env.Data)
	}

	rec, env = e.multipart(http.MethodPost, "/api/products", token, fields, pngData)
	if rec.Code != http.StatusUnprocessableEntity || !errorFields(env)["barcode"] {
		t.Errorf("duplicate barcode = %d: %s", rec.Code, rec.Body.String())
	}

	fields["stock"] = "0"
	rec, _ = e.multipart(http.MethodPut, "/api/products/"+itoa(product.ID), token, fields, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("update own barcode = %d: %s", rec.Code, rec.Body.String())
	}

	// a missing id wins over a barcode owned by another product
	rec, _ = e.multipart(http.MethodPut, "/api/products/999", token, fields, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("update missing product = %d: %s", rec.Code, rec.Body.String())
	}

	fields["stock"] = "-1"
	rec, env = e.multipart(http.MethodPut, "/api/products/"+itoa(product.ID), token, fields, nil)
	if rec.Code != http.StatusUnprocessableEntity || !errorFields(env)["stock"] {
		t.Errorf("negative stock = %d: %s", rec.Code, rec.Body.String())
	}

	rec, env = e.json(http.MethodPost, "/api/products-by-barcode", token, map[string]string{"barcode": "12345"})
	if rec.Code != http.StatusOK || !strings.Contains(string(env.Data), `"barcode":"12345"`) {
		t.Errorf("by barcode = %d: %s", rec.Code, rec.Body.String())
	}
	rec, _ = e.json(http.MethodPost, "/api/products-by-barcode", token, map[string]string{"barcode": "000"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown barcode = %d", rec.Code)
	}

	rec, env = e.json(http.MethodGet, "/api/products-by-category/"+itoa(cat.ID), token, nil)
	if rec.Code != http.StatusOK || !strings.Contains(string(env.Data), "Potato chips") {
		t.Errorf("by category = %d: %s", rec.Code, rec.Body.String())
	}

	rec, _ = e.json(http.MethodDelete, "/api/categories/"+itoa(cat.ID), token, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("delete used category = %d", rec.Code)
	}

	rec, _ = e.json(http.MethodGet, "/api/products-export", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export = %d", rec.Code)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "id,barcode,title,category") || !strings.Contains(lines[1], "12345") {
		t.Errorf("export body = %q", rec.Body.String())
	}
}

func TestCustomerEndpoints(t *testing.T) {
	e := newTestEnv(t)
	token := e.login()

	rec, env := e.json(http.MethodPost, "/api/customers", token, map[string]string{"name": "Budi"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid create = %d", rec.Code)
	}
	if f := errorFields(env); !f["no_telp"] || !f["address"] {
		t.Errorf("errors = %+v", env.Errors)
	}

	rec, env = e.json(http.MethodPost, "/api/customers", token,
		map[string]string{"name": "Budi", "no_telp": "0812", "address": "Jl. Merdeka 1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}
	var customer struct {
		ID     int64  `json:"id"`
		NoTelp string `json:"no_telp"`
	}
	if err := json.Unmarshal(env.Data, &customer); err != nil || customer.NoTelp != "0812" {
		t.Fatalf("created = %s", env.Data)
	}

	rec, env = e.json(http.MethodPut, "/api/customers/"+itoa(customer.ID), token,
		map[string]string{"name": "Budi S", "no_telp": "0813", "address": "Jl. Merdeka 2"})
	if rec.Code != http.StatusOK || !strings.Contains(string(env.Data), "0813") {
		t.Errorf("update = %d: %s", rec.Code, rec.Body.String())
	}

	rec, _ = e.json(http.MethodDelete, "/api/customers/"+itoa(customer.ID), token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete = %d", rec.Code)
	}
	rec, _ = e.json(http.MethodGet, "/api/customers/"+itoa(customer.ID), token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get deleted = %d", rec.Code)
	}
}

func TestUserEndpoints(t *testing.T) {
	e := newTestEnv(t)
	token := e.login()

	rec, env := e.json(http.MethodPost, "/api/users", token,
		map[string]string{"name": "Other", "email": "a@b.com", "password": "secret9"})
	if rec.Code != http.StatusUnprocessableEntity || !errorFields(env)["email"] {
		t.Errorf("duplicate email = %d: %s", rec.Code, rec.Body.String())
	}

	rec, env = e.json(http.MethodPost, "/api/users", token,
		map[string]string{"name": "Cashier", "email": "c@b.com", "password": "secret9"})
	if rec.Code != http.StatusCreated || strings.Contains(string(env.Data), "password") {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}

	rec, env = e.json(http.MethodGet, "/api/users?limit=1", token, nil)
	if rec.Code != http.StatusOK || env.Pagination == nil || env.Pagination.TotalPages != 2 {
		t.Errorf("list = %d: %s", rec.Code, rec.Body.String())
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestTriggerImageGC(t *testing.T) {
	env := newTestEnv(t)
	rec, _ := env.json(http.MethodPost, "/api/maintenance/image-gc", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("without token = %d", rec.Code)
	}

	rec, body := env.json(http.MethodPost, "/api/maintenance/image-gc", env.login(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("image gc = %d: %s", rec.Code, rec.Body.String())
	}
	var data struct {
		Deleted int `json:"deleted"`
	}
	if err := json.Unmarshal(body.Data, &data); err != nil || data.Deleted != 3 {
		t.Errorf("data = %s, %v", body.Data, err)
	}
}
