package storage

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestUploadPath(t *testing.T) {
	a := UploadPath("Photo.JPG")
	b := UploadPath("Photo.JPG")
	if a == b {
		t.Errorf("two uploads share the path %s", a)
	}
	if !strings.HasPrefix(a, KeyPrefix+"/") || !strings.HasSuffix(a, ".jpg") {
		t.Errorf("unexpected path %s", a)
	}
	if _, err := CleanPath(a); err != nil {
		t.Errorf("UploadPath produced an unclean path: %v", err)
	}
	if p := UploadPath("noext"); strings.Contains(strings.TrimPrefix(p, KeyPrefix+"/"), ".") {
		t.Errorf("unexpected extension in %s", p)
	}
}

func TestCleanPath(t *testing.T) {
	valid := []string{"uploads/a.jpg", "uploads/x/y.png"}
	for _, p := range valid {
		if _, err := CleanPath(p); err != nil {
			t.Errorf("CleanPath(%q) unexpected error: %v", p, err)
		}
	}
	invalid := []string{"", "/etc/passwd", "../secret", "uploads/../../x", "uploads//a.jpg", ".."}
	for _, p := range invalid {
		if _, err := CleanPath(p); err == nil {
			t.Errorf("CleanPath(%q) expected error", p)
		}
	}
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	data := []byte("chips and crackers")
	p := UploadPath("snacks.png")

	if ok, err := s.Exists(ctx, p); err != nil || ok {
		t.Fatalf("Exists before Put = %v, %v", ok, err)
	}
	if err := s.Put(ctx, p, data, "image/png"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ok, err := s.Exists(ctx, p); err != nil || !ok {
		t.Fatalf("Exists after Put = %v, %v", ok, err)
	}

	rc, err := s.Open(ctx, p)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(got) != string(data) {
		t.Errorf("Open content = %q", got)
	}

	objs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(objs) != 1 || objs[0].Path != p || objs[0].Size != int64(len(data)) {
		t.Errorf("List = %+v", objs)
	}

	if err := s.Delete(ctx, p); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// second delete is a no-op
	if err := s.Delete(ctx, p); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if ok, _ := s.Exists(ctx, p); ok {
		t.Error("blob still exists after Delete")
	}
	if _, err := s.Open(ctx, p); err != ErrNotExist {
		t.Errorf("Open missing = %v, want ErrNotExist", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	testStore(t, s)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(context.Background(), "../escape.txt", []byte("x"), ""); err == nil {
		t.Fatal("expected traversal to be rejected")
	}
}
