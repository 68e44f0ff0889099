package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/talkincode/toughpos/config"
	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/repository"
	"github.com/talkincode/toughpos/internal/repository/repotest"
	"github.com/talkincode/toughpos/internal/storage"
)

func newTestApp(t *testing.T) (*Application, *storage.MemoryStore) {
	t.Helper()
	cfg := config.DefaultAppConfig()
	cfg.System.Workdir = t.TempDir()
	cfg.Database.Type = "sqlite"
	cfg.Web.Secret = "test-secret"

	store := storage.NewMemoryStore()
	a := NewApplication(cfg)
	a.OverrideDB(repotest.NewDB(t))
	a.OverrideStore(store)
	if err := a.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return a, store
}

func TestInitSeedsAdmin(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	users := repository.NewGormUserRepository(a.DB())
	admin, err := users.GetByEmail(ctx, superEmail)
	if err != nil {
		t.Fatalf("seeded admin: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(superPassword)); err != nil {
		t.Errorf("seeded password does not match: %v", err)
	}

	a.checkSuper(ctx)
	if n, _ := users.Count(ctx); n != 1 {
		t.Errorf("users after second check = %d, want 1", n)
	}

	result, err := a.services.Auth.Login(ctx, superEmail, superPassword)
	if err != nil || result.Token == "" {
		t.Fatalf("Login as seeded admin: %v", err)
	}
}

func TestInitDbResetsData(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()
	if err := a.DB().Create(&domain.Customer{Name: "Budi", NoTelp: "0812", Address: "Bandung"}).Error; err != nil {
		t.Fatal(err)
	}
	if err := a.InitDb(ctx); err != nil {
		t.Fatalf("InitDb: %v", err)
	}
	var customers int64
	a.DB().Model(&domain.Customer{}).Count(&customers)
	if customers != 0 {
		t.Errorf("customers after InitDb = %d", customers)
	}
	if n, _ := repository.NewGormUserRepository(a.DB()).Count(ctx); n != 1 {
		t.Errorf("users after InitDb = %d, want the seeded admin", n)
	}
}

func TestWebServerRoutes(t *testing.T) {
	a, _ := newTestApp(t)
	e := a.NewWebServer().Echo()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET / = %d", rec.Code)
	}

	body := `{"email":"admin@gmail.com","password":"password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("POST /api/login = %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/products without token = %d", rec.Code)
	}
}

func TestCollectOrphans(t *testing.T) {
	ctx := context.Background()
	db := repotest.NewDB(t)
	store := storage.NewMemoryStore()
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return t0 })

	held := storage.UploadPath("a.png")
	old := storage.UploadPath("b.png")
	for _, p := range []string{held, old} {
		if err := store.Put(ctx, p, []byte(p), "image/png"); err != nil {
			t.Fatal(err)
		}
	}
	store.SetClock(func() time.Time { return t0.Add(2 * time.Hour) })
	fresh := storage.UploadPath("c.png")
	if err := store.Put(ctx, fresh, []byte("fresh"), "image/png"); err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&domain.Category{Name: "Drinks", Description: "Cold", Image: held}).Error; err != nil {
		t.Fatal(err)
	}

	n, err := collectOrphans(ctx, store, repository.NewGormImageRefs(db), t0.Add(time.Hour), 4)
	if err != nil {
		t.Fatalf("collectOrphans: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	for p, want := range map[string]bool{held: true, old: false, fresh: true} {
		if ok, _ := store.Exists(ctx, p); ok != want {
			t.Errorf("Exists(%s) = %v, want %v", p, ok, want)
		}
	}
}

func TestCleanOrphanImagesUsesGrace(t *testing.T) {
	a, store := newTestApp(t)
	ctx := context.Background()
	a.Config().Storage.GCGrace = time.Hour

	p := storage.UploadPath("x.png")
	if err := store.Put(ctx, p, []byte("new"), "image/png"); err != nil {
		t.Fatal(err)
	}
	n, err := a.CleanOrphanImages(ctx)
	if err != nil || n != 0 {
		t.Fatalf("CleanOrphanImages = %d, %v; a blob inside the grace period must stay", n, err)
	}

	a.Config().Storage.GCGrace = 0
	store.SetClock(func() time.Time { return time.Now().Add(-time.Minute) })
	p2 := storage.UploadPath("y.png")
	if err := store.Put(ctx, p2, []byte("older"), "image/png"); err != nil {
		t.Fatal(err)
	}
	n, err = a.CleanOrphanImages(ctx)
	if err != nil || n != 2 {
		t.Fatalf("CleanOrphanImages = %d, %v, want 2", n, err)
	}
	if store.Len() != 0 {
		t.Errorf("store still holds %d blobs", store.Len())
	}
}

func TestInitJobRejectsBadSchedule(t *testing.T) {
	a, _ := newTestApp(t)
	a.Config().Storage.GCSchedule = "every now and then"
	if err := a.initJob(); err == nil {
		t.Fatal("expected an error for a bad schedule")
	}
}
