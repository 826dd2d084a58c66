package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/navsphere/pkg/types"
)

// Commit records one document write. ID is derived from every other field,
// so two commits with the same content, parent, and time share an id.
type Commit struct {
	ID      string    `json:"commit"`
	Parent  string    `json:"parent,omitempty"`
	Path    string    `json:"path"`
	Blob    string    `json:"blob"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// blobID is the hex SHA-256 of data.
func blobID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func commitID(c Commit) string {
	h := sha256.New()
	fmt.Fprintf(h, "parent %s\npath %s\nblob %s\ntime %s\n\n%s",
		c.Parent, c.Path, c.Blob, c.Time.UTC().Format(time.RFC3339Nano), c.Message)
	return hex.EncodeToString(h.Sum(nil))
}

// commit stores data as a blob, replaces the working copy at name, and
// appends a commit record whose parent is the current head. The caller
// holds writeMu.
func (s *Store) commit(fs billy.Filesystem, name string, data []byte, message string) (Commit, error) {
	head, err := s.head(fs)
	if err != nil {
		return Commit{}, err
	}

	c := Commit{
		Parent:  head.ID,
		Path:    name,
		Blob:    blobID(data),
		Message: message,
		Time:    s.now().UTC(),
	}
	c.ID = commitID(c)

	object := path.Join(objectsDir, c.Blob)
	if _, err := fs.Stat(object); errors.Is(err, os.ErrNotExist) {
		if err := writeAtomic(fs, object, data); err != nil {
			return Commit{}, &types.StoreError{Op: "write blob", Err: err}
		}
	}
	if err := writeAtomic(fs, name, data); err != nil {
		return Commit{}, &types.StoreError{Op: "write " + name, Err: err}
	}
	if err := appendLine(fs, commitLog, c); err != nil {
		return Commit{}, &types.StoreError{Op: "append commit", Err: err}
	}

	s.log.Debug("committed",
		zap.String("path", name),
		zap.String("commit", c.ID),
		zap.String("message", message),
	)
	return c, nil
}

// commitJSON encodes v as indented JSON and commits it.
func (s *Store) commitJSON(fs billy.Filesystem, name string, v any, message string) (Commit, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return Commit{}, fmt.Errorf("encoding %s: %w", name, err)
	}
	return s.commit(fs, name, append(data, '\n'), message)
}

func (s *Store) history(fs billy.Filesystem) ([]Commit, error) {
	lines, err := readLines(fs, commitLog)
	if err != nil {
		return nil, &types.StoreError{Op: "read commit log", Err: err}
	}
	out := make([]Commit, 0, len(lines))
	for _, line := range lines {
		var c Commit
		if err := json.Unmarshal(line, &c); err != nil || c.ID == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) head(fs billy.Filesystem) (Commit, error) {
	all, err := s.history(fs)
	if err != nil || len(all) == 0 {
		return Commit{}, err
	}
	return all[len(all)-1], nil
}

// Head returns the latest commit, or the zero Commit when nothing has been
// written.
func (s *Store) Head(ctx context.Context) (Commit, error) {
	fs, release, err := s.acquire(ctx)
	if err != nil {
		return Commit{}, err
	}
	defer release()
	return s.head(fs)
}

// History returns the commits that touched name, newest first. An empty name
// returns every commit.
func (s *Store) History(ctx context.Context, name string) ([]Commit, error) {
	fs, release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	all, err := s.history(fs)
	if err != nil {
		return nil, err
	}
	out := make([]Commit, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if name == "" || all[i].Path == name {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// Blob returns the content stored under a blob id.
func (s *Store) Blob(ctx context.Context, id string) ([]byte, error) {
	fs, release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	data, err := util.ReadFile(fs, path.Join(objectsDir, id))
	if err != nil {
		return nil, &types.StoreError{Op: "read blob", Err: err}
	}
	if blobID(data) != id {
		return nil, &types.StoreError{Op: "read blob", Err: fmt.Errorf("blob %s is corrupt", id)}
	}
	return data, nil
}
