package storage

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// LocalStore keeps blobs as files below a root directory.
type LocalStore struct {
	root string
}

var _ Store = (*LocalStore)(nil)

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(root, KeyPrefix), 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload dir")
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) file(p string) (string, error) {
	key, err := CleanPath(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

// Put writes through a temp file so readers never see a partial blob.
func (s *LocalStore) Put(_ context.Context, p string, data []byte, _ string) error {
	name, err := s.file(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return errors.Wrap(err, "create blob dir")
	}
	tmp, err := os.CreateTemp(filepath.Dir(name), ".upload-*")
	if err != nil {
		return errors.Wrap(err, "create temp blob")
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "write blob")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "close blob")
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "rename blob")
	}
	return nil
}

func (s *LocalStore) Delete(_ context.Context, p string) error {
	name, err := s.file(p)
	if err != nil {
		return err
	}
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "delete blob")
	}
	return nil
}

func (s *LocalStore) Exists(_ context.Context, p string) (bool, error) {
	name, err := s.file(p)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(name)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, errors.Wrap(err, "stat blob")
	}
}

func (s *LocalStore) Open(_ context.Context, p string) (io.ReadCloser, error) {
	name, err := s.file(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(name)
	if os.IsNotExist(err) {
		return nil, ErrNotExist
	}
	return f, err
}

// List walks the upload prefix, skipping in-flight temp files.
func (s *LocalStore) List(_ context.Context) ([]Object, error) {
	var objs []Object
	base := filepath.Join(s.root, KeyPrefix)
	err := filepath.WalkDir(base, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Base(name)[0] == '.' {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, name)
		if err != nil {
			return err
		}
		objs = append(objs, Object{
			Path:    filepath.ToSlash(rel),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list blobs")
	}
	return objs, nil
}
