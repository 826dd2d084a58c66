package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/navsphere/internal/tree"
	"github.com/mesh-intelligence/navsphere/pkg/types"
)

// readJSON decodes the document at name into v. It reports false without
// error when the document does not exist.
func readJSON(fs billy.Filesystem, name string, v any) (bool, error) {
	data, err := util.ReadFile(fs, name)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &types.StoreError{Op: "read " + name, Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, &types.StoreError{Op: "decode " + name, Err: err}
	}
	return true, nil
}

// NavigationTree returns the stored tree without disabled categories or
// resources. A missing document is an empty tree.
func (s *Store) NavigationTree(ctx context.Context) (types.NavigationData, error) {
	data, err := s.ExportNavigationTree(ctx)
	if err != nil {
		return types.NavigationData{}, err
	}
	return types.NavigationData{NavigationItems: enabledOnly(data.NavigationItems)}, nil
}

// ExportNavigationTree returns the stored tree as written.
func (s *Store) ExportNavigationTree(ctx context.Context) (types.NavigationData, error) {
	return s.readNavigation(ctx, NavigationPath)
}

// DefaultNavigation returns the tree kept in navigation-default.json, the
// source for restoring the navigation.
func (s *Store) DefaultNavigation(ctx context.Context) (types.NavigationData, error) {
	return s.readNavigation(ctx, DefaultNavigationPath)
}

func (s *Store) readNavigation(ctx context.Context, name string) (types.NavigationData, error) {
	fs, release, err := s.acquire(ctx)
	if err != nil {
		return types.NavigationData{}, err
	}
	defer release()

	var data types.NavigationData
	found, err := readJSON(fs, name, &data)
	if err != nil {
		return types.NavigationData{}, err
	}
	if !found || data.NavigationItems == nil {
		return types.EmptyNavigation(), nil
	}
	return data, nil
}

// ReplaceNavigationTree validates data and commits it as the navigation
// document. A single file write cannot leave a partial tree.
func (s *Store) ReplaceNavigationTree(ctx context.Context, data types.NavigationData) error {
	if _, _, err := tree.Flatten(data.NavigationItems); err != nil {
		return err
	}
	if data.NavigationItems == nil {
		data = types.EmptyNavigation()
	}
	return s.write(ctx, NavigationPath, data, "Update navigation")
}

// SiteConfig returns the site document, or DefaultSiteConfig when it does
// not exist. Empty theme or link target fields read as their defaults.
func (s *Store) SiteConfig(ctx context.Context) (types.SiteConfig, error) {
	fs, release, err := s.acquire(ctx)
	if err != nil {
		return types.SiteConfig{}, err
	}
	defer release()

	cfg := types.DefaultSiteConfig()
	if _, err := readJSON(fs, SitePath, &cfg); err != nil {
		return types.SiteConfig{}, err
	}
	if cfg.Appearance.Theme == "" {
		cfg.Appearance.Theme = types.ThemeSystem
	}
	if cfg.Navigation.LinkTarget == "" {
		cfg.Navigation.LinkTarget = types.LinkTargetBlank
	}
	return cfg, nil
}

// UpsertSiteConfig validates cfg and commits it as the site document.
func (s *Store) UpsertSiteConfig(ctx context.Context, cfg types.SiteConfig) error {
	if err := cfg.Normalize(); err != nil {
		return err
	}
	return s.write(ctx, SitePath, cfg, "Update site config")
}

// AppendResourceMetadata prepends an entry to the metadata document. The id
// is the version ref when one is given, matching how uploads identify an
// asset by the commit that added it. When the version ref is empty or
// already used as an id, the id is derived from the path and time instead,
// so ids in the document stay unique.
func (s *Store) AppendResourceMetadata(ctx context.Context, p, versionRef string) (types.ResourceMetadataEntry, error) {
	if p == "" {
		return types.ResourceMetadataEntry{}, types.ErrMissingPath
	}
	var entry types.ResourceMetadataEntry
	err := s.updateMetadata(ctx, "Update resource metadata", func(doc *types.ResourceMetadataDocument) (bool, error) {
		entry = types.ResourceMetadataEntry{
			ID:         versionRef,
			Path:       p,
			VersionRef: versionRef,
			CreatedAt:  s.now().UTC(),
		}
		if entry.ID == "" || hasMetadataID(doc.Metadata, entry.ID) {
			entry.ID = derivedMetadataID(doc.Metadata, p, entry.CreatedAt)
		}
		doc.Metadata = slices.Insert(doc.Metadata, 0, entry)
		return true, nil
	})
	if err != nil {
		return types.ResourceMetadataEntry{}, err
	}
	return entry, nil
}

func hasMetadataID(entries []types.ResourceMetadataEntry, id string) bool {
	return slices.ContainsFunc(entries, func(e types.ResourceMetadataEntry) bool { return e.ID == id })
}

// derivedMetadataID hashes the path and time, adding a counter until the
// result is not taken.
func derivedMetadataID(entries []types.ResourceMetadataEntry, p string, at time.Time) string {
	seed := p + "\n" + at.String()
	id := blobID([]byte(seed))
	for n := 1; hasMetadataID(entries, id); n++ {
		id = blobID([]byte(fmt.Sprintf("%s\n%d", seed, n)))
	}
	return id
}

// ListResourceMetadata returns the metadata document's entries in stored
// order, newest first.
func (s *Store) ListResourceMetadata(ctx context.Context) ([]types.ResourceMetadataEntry, error) {
	fs, release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	doc, err := readMetadata(fs)
	if err != nil {
		return nil, err
	}
	return doc.Metadata, nil
}

// DeleteResourceMetadata drops every entry whose id is in ids and returns
// how many were dropped. Nothing is committed when no entry matches.
func (s *Store) DeleteResourceMetadata(ctx context.Context, ids []string) (int, error) {
	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			remove[id] = true
		}
	}
	if len(remove) == 0 {
		return 0, types.ErrEmptyIDSet
	}

	var deleted int
	err := s.updateMetadata(ctx, "", func(doc *types.ResourceMetadataDocument) (bool, error) {
		before := len(doc.Metadata)
		doc.Metadata = slices.DeleteFunc(doc.Metadata, func(e types.ResourceMetadataEntry) bool {
			return remove[e.ID]
		})
		deleted = before - len(doc.Metadata)
		return deleted > 0, nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// ReplaceResourceMetadata commits entries as the whole metadata document.
func (s *Store) ReplaceResourceMetadata(ctx context.Context, entries []types.ResourceMetadataEntry) error {
	if err := types.ValidateResourceMetadata(entries); err != nil {
		return err
	}
	if entries == nil {
		entries = []types.ResourceMetadataEntry{}
	}
	return s.write(ctx, ResourceMetadataPath,
		types.ResourceMetadataDocument{Metadata: entries}, "Replace resource metadata")
}

func readMetadata(fs billy.Filesystem) (types.ResourceMetadataDocument, error) {
	var doc types.ResourceMetadataDocument
	if _, err := readJSON(fs, ResourceMetadataPath, &doc); err != nil {
		return doc, err
	}
	if doc.Metadata == nil {
		doc.Metadata = []types.ResourceMetadataEntry{}
	}
	return doc, nil
}

// updateMetadata reads, edits, and commits the metadata document under the
// write lock. edit reports whether anything changed. An empty message is
// derived from the entry count change.
func (s *Store) updateMetadata(ctx context.Context, message string, edit func(*types.ResourceMetadataDocument) (bool, error)) error {
	fs, release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc, err := readMetadata(fs)
	if err != nil {
		return err
	}
	before := len(doc.Metadata)
	changed, err := edit(&doc)
	if err != nil || !changed {
		return err
	}
	if message == "" {
		message = fmt.Sprintf("Delete %d resource(s)", before-len(doc.Metadata))
	}
	_, err = s.commitJSON(fs, ResourceMetadataPath, doc, message)
	return err
}

// write commits v as the document at name under the write lock.
func (s *Store) write(ctx context.Context, name string, v any, message string) error {
	fs, release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err = s.commitJSON(fs, name, v, message)
	return err
}

var extPattern = regexp.MustCompile(`^[a-z0-9]{1,8}$`)

// Asset is an uploaded file and the commit that added it. Path is the
// public URL path, without the "public" prefix.
type Asset struct {
	Path   string `json:"path"`
	Commit Commit `json:"commit"`
}

// UploadAsset commits data as public/assets/img_<unix ms>.<ext>. The
// extension defaults to png.
func (s *Store) UploadAsset(ctx context.Context, data []byte, ext string) (Asset, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		ext = "png"
	}
	if !extPattern.MatchString(ext) {
		return Asset{}, &types.ValidationError{Field: "ext", Reason: "must be 1-8 lowercase letters or digits"}
	}
	if len(data) == 0 {
		return Asset{}, &types.ValidationError{Field: "data", Reason: "must not be empty"}
	}

	fs, release, err := s.acquire(ctx)
	if err != nil {
		return Asset{}, err
	}
	defer release()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	name := fmt.Sprintf("img_%d.%s", s.now().UnixMilli(), ext)
	stored := path.Join(AssetsDir, name)
	c, err := s.commit(fs, stored, data, "Upload "+stored)
	if err != nil {
		return Asset{}, err
	}
	s.log.Info("asset uploaded", zap.String("path", stored), zap.Int("bytes", len(data)))
	return Asset{Path: "/assets/" + name, Commit: c}, nil
}

// enabledOnly returns a copy of nodes without disabled categories, and
// without disabled resources inside the ones that remain.
func enabledOnly(nodes []types.NavigationItem) []types.NavigationItem {
	out := make([]types.NavigationItem, 0, len(nodes))
	for _, n := range nodes {
		if !n.Enabled {
			continue
		}
		items := make([]types.Resource, 0, len(n.Items))
		for _, r := range n.Items {
			if r.Enabled {
				items = append(items, r)
			}
		}
		n.Items = items
		n.SubCategories = enabledOnly(n.SubCategories)
		out = append(out, n)
	}
	return out
}
