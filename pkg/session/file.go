package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const fileSuffix = ".session.json"

// FileStore keeps one JSON document per session in a directory.
type FileStore struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string, ttl time.Duration) (store *FileStore, err error) {
	if dir == "" {
		err = errors.New("session directory is required")
		return store, err
	}

	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create session directory: %s", dir)
		return store, err
	}

	store = &FileStore{
		dir: dir,
		ttl: ttl,
		now: time.Now,
	}

	return store, err
}

func (f *FileStore) path(id string) (path string, err error) {
	// IDs become file names, so only accept the ones New hands out
	if !ValidID(id) {
		err = errors.Wrapf(ErrNotFound, "invalid session id %q", id)
		return path, err
	}
	path = filepath.Join(f.dir, id+fileSuffix)
	return path, err
}

// Get loads a session. Expired sessions are removed and reported as not found.
func (f *FileStore) Get(ctx context.Context, id string) (s Session, err error) {
	var path string
	path, err = f.path(id)
	if err != nil {
		return s, err
	}

	s, err = f.load(path)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			err = errors.Wrapf(ErrNotFound, "session %s", id)
		}
		return s, err
	}

	if f.expired(s) {
		_ = os.Remove(path)
		s = Session{}
		err = errors.Wrapf(ErrNotFound, "session %s expired", id)
		return s, err
	}

	return s, err
}

// Save writes the session atomically.
func (f *FileStore) Save(ctx context.Context, s *Session) (err error) {
	var path string
	path, err = f.path(s.ID)
	if err != nil {
		return err
	}

	s.UpdatedAt = f.now()

	var data []byte
	data, err = encode(s)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	err = os.WriteFile(tmp, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write session file: %s", tmp)
		return err
	}

	err = os.Rename(tmp, path)
	if err != nil {
		err = errors.Wrapf(err, "failed to move session file into place: %s", path)
		return err
	}

	return err
}

// Delete removes a session file. Deleting a missing session is not an error.
func (f *FileStore) Delete(ctx context.Context, id string) (err error) {
	var path string
	path, err = f.path(id)
	if err != nil {
		err = nil
		return err
	}

	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		err = errors.Wrapf(err, "failed to delete session file: %s", path)
		return err
	}

	err = nil
	return err
}

// Sweep removes every expired or unreadable session file.
func (f *FileStore) Sweep(ctx context.Context) (removed int, err error) {
	walkErr := filepath.Walk(f.dir, func(path string, info os.FileInfo, walkErr error) (walkFuncErr error) {
		if walkErr != nil {
			walkFuncErr = walkErr
			return walkFuncErr
		}

		if info.IsDir() {
			if path != f.dir {
				walkFuncErr = filepath.SkipDir
			}
			return walkFuncErr
		}

		if !strings.HasSuffix(info.Name(), fileSuffix) {
			return walkFuncErr
		}

		s, loadErr := f.load(path)
		if loadErr == nil && !f.expired(s) {
			return walkFuncErr
		}

		if os.Remove(path) == nil {
			removed++
		}
		return walkFuncErr
	})

	if walkErr != nil {
		err = errors.Wrap(walkErr, "failed to walk session directory")
		return removed, err
	}

	return removed, err
}

func (f *FileStore) load(path string) (s Session, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.WithMessagef(err, "failed to read session file: %s", path)
		return s, err
	}

	s, err = decode(data)
	return s, err
}

func (f *FileStore) expired(s Session) (expired bool) {
	expired = f.ttl > 0 && !f.now().Before(s.UpdatedAt.Add(f.ttl))
	return expired
}

// ReadFile loads a session document written by FileStore, regardless of age.
func ReadFile(path string) (s Session, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read session file: %s", path)
		return s, err
	}

	s, err = decode(data)
	return s, err
}

// WriteFile saves a session document in the format FileStore uses.
func WriteFile(path string, s *Session) (err error) {
	var data []byte
	data, err = json.MarshalIndent(s, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal session")
		return err
	}

	err = os.MkdirAll(filepath.Dir(path), 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create directory for %s", path)
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write session file: %s", path)
		return err
	}

	return err
}
