// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/AIR-hl/syncpilot/internal/logger"
	"github.com/AIR-hl/syncpilot/models"
)

// profilesKey is the KeyValue key the profile list is persisted under.
const profilesKey = "connection-profiles"

// profileIDNamespace is the UUIDv5 namespace for deterministic profile IDs.
var profileIDNamespace = uuid.MustParse("9f2c1f1e-6d3a-4c8e-b6a1-2f4a9c0d7e51")

type profileStore struct {
	kv  KeyValue
	log *logger.Logger
	now func() time.Time
}

// NewProfileStore returns a ProfileStore persisting through kv.
func NewProfileStore(kv KeyValue, log *logger.Logger) ProfileStore {
	return &profileStore{kv: kv, log: log, now: time.Now}
}

// persistedProfile mirrors models.ConnectionProfile with loose types so one
// corrupt record never poisons the whole list: required fields are validated
// per record after decoding.
type persistedProfile struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	LocalPath             string    `json:"localPath"`
	RemotePath            string    `json:"remotePath"`
	Mode                  string    `json:"mode"`
	IgnoreVCS             *bool     `json:"ignoreVcs,omitempty"`
	IgnorePaths           []string  `json:"ignorePaths,omitempty"`
	WorkspaceFolder       string    `json:"workspaceFolder"`
	LastSessionIdentifier string    `json:"lastSessionIdentifier,omitempty"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

func (p persistedProfile) toModel() models.ConnectionProfile {
	tri := models.TriStateUnset
	if p.IgnoreVCS != nil {
		if *p.IgnoreVCS {
			tri = models.TriStateTrue
		} else {
			tri = models.TriStateFalse
		}
	}
	return models.ConnectionProfile{
		ID:                    p.ID,
		Name:                  p.Name,
		LocalPath:             p.LocalPath,
		RemotePath:            p.RemotePath,
		Mode:                  models.SyncMode(p.Mode),
		IgnoreVCS:             tri,
		IgnorePaths:           p.IgnorePaths,
		WorkspaceFolder:       p.WorkspaceFolder,
		LastSessionIdentifier: p.LastSessionIdentifier,
		UpdatedAt:             p.UpdatedAt,
	}
}

func fromModel(m models.ConnectionProfile) persistedProfile {
	var ignoreVCS *bool
	if v, ok := m.IgnoreVCS.Bool(); ok {
		ignoreVCS = &v
	}
	return persistedProfile{
		ID:                    m.ID,
		Name:                  m.Name,
		LocalPath:             m.LocalPath,
		RemotePath:            m.RemotePath,
		Mode:                  string(m.Mode),
		IgnoreVCS:             ignoreVCS,
		IgnorePaths:           m.IgnorePaths,
		WorkspaceFolder:       m.WorkspaceFolder,
		LastSessionIdentifier: m.LastSessionIdentifier,
		UpdatedAt:             m.UpdatedAt,
	}
}

// load re-parses the full profile list from the backing store. Records with
// missing required fields or the wrong shape are dropped with a warning: the
// store must never fail to load because of one corrupt entry.
func (s *profileStore) load(ctx context.Context) ([]models.ConnectionProfile, error) {
	raw, err := s.kv.Get(ctx, profilesKey)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var entries []json.RawMessage
	if err = json.Unmarshal(raw, &entries); err != nil {
		s.log.Warn().Err(err).Msg("profile list is not a JSON array, starting empty")
		return nil, nil
	}

	profiles := make([]models.ConnectionProfile, 0, len(entries))
	for i, entry := range entries {
		var p persistedProfile
		if err = json.Unmarshal(entry, &p); err != nil {
			s.log.Warn().Err(err).Int("index", i).Msg("dropping malformed profile record")
			continue
		}
		if p.ID == "" || p.LocalPath == "" || p.RemotePath == "" || p.WorkspaceFolder == "" {
			s.log.Warn().Int("index", i).Msg("dropping profile record with missing required fields")
			continue
		}
		profiles = append(profiles, p.toModel())
	}
	return profiles, nil
}

func (s *profileStore) save(ctx context.Context, profiles []models.ConnectionProfile) error {
	entries := make([]persistedProfile, 0, len(profiles))
	for _, p := range profiles {
		entries = append(entries, fromModel(p))
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}
	if err = s.kv.Set(ctx, profilesKey, data); err != nil {
		return fmt.Errorf("save profiles: %w", err)
	}
	return nil
}

func (s *profileStore) List(ctx context.Context) ([]models.ConnectionProfile, error) {
	return s.load(ctx)
}

func (s *profileStore) GetByID(ctx context.Context, id string) (*models.ConnectionProfile, error) {
	profiles, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].ID == id {
			return &profiles[i], nil
		}
	}
	return nil, nil
}

func (s *profileStore) GetForWorkspace(ctx context.Context, folder string) ([]models.ConnectionProfile, error) {
	profiles, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	want := NormalizePath(folder)
	var out []models.ConnectionProfile
	for _, p := range profiles {
		if NormalizePath(p.WorkspaceFolder) == want {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *profileStore) Upsert(ctx context.Context, input models.ProfileInput) (models.ConnectionProfile, error) {
	if input.LocalPath == "" || input.RemotePath == "" || input.WorkspaceFolder == "" {
		return models.ConnectionProfile{}, ErrInvalidProfileInput
	}

	// Re-read immediately before writing: overlapping async upserts must see
	// each other's entries where possible.
	profiles, err := s.load(ctx)
	if err != nil {
		return models.ConnectionProfile{}, err
	}

	now := s.now()
	key := dedupKey(input.WorkspaceFolder, input.LocalPath, input.RemotePath)

	updated := models.ConnectionProfile{
		Name:                  input.Name,
		LocalPath:             input.LocalPath,
		RemotePath:            input.RemotePath,
		Mode:                  input.Mode,
		IgnoreVCS:             input.IgnoreVCS,
		IgnorePaths:           input.IgnorePaths,
		WorkspaceFolder:       input.WorkspaceFolder,
		LastSessionIdentifier: input.LastSessionIdentifier,
		UpdatedAt:             now,
	}

	for i, existing := range profiles {
		if dedupKey(existing.WorkspaceFolder, existing.LocalPath, existing.RemotePath) != key {
			continue
		}
		updated.ID = existing.ID
		if updated.LastSessionIdentifier == "" {
			updated.LastSessionIdentifier = existing.LastSessionIdentifier
		}
		profiles[i] = updated
		if err = s.save(ctx, profiles); err != nil {
			return models.ConnectionProfile{}, err
		}
		s.log.Debug().Str("profile", updated.ID).Msg("replaced connection profile")
		return updated, nil
	}

	updated.ID = newProfileID(key, now)
	profiles = append(profiles, updated)
	if err = s.save(ctx, profiles); err != nil {
		return models.ConnectionProfile{}, err
	}
	s.log.Debug().Str("profile", updated.ID).Msg("created connection profile")
	return updated, nil
}

func (s *profileStore) UpdateLastSessionIdentifier(ctx context.Context, id, sessionID string) error {
	profiles, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range profiles {
		if profiles[i].ID == id {
			profiles[i].LastSessionIdentifier = sessionID
			profiles[i].UpdatedAt = s.now()
			return s.save(ctx, profiles)
		}
	}
	return ErrProfileNotFound
}

func (s *profileStore) Remove(ctx context.Context, id string) (bool, error) {
	profiles, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	for i := range profiles {
		if profiles[i].ID == id {
			profiles = append(profiles[:i], profiles[i+1:]...)
			return true, s.save(ctx, profiles)
		}
	}
	return false, nil
}

// NormalizePath canonicalizes a local filesystem path for comparison:
// absolute where resolvable, cleaned, and without a trailing separator.
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Clean(path)
}

// dedupKey is the uniqueness key for the profile triple. Local sides are
// normalized; the remote side is compared as the string the user supplied.
func dedupKey(workspace, local, remote string) string {
	return NormalizePath(workspace) + "\x00" + NormalizePath(local) + "\x00" + remote
}

// newProfileID derives a stable ID from the dedup triple plus creation time,
// so recreating the same triple after deletion yields a distinct ID.
func newProfileID(key string, createdAt time.Time) string {
	return uuid.NewSHA1(profileIDNamespace, []byte(key+"\x00"+strconv.FormatInt(createdAt.UnixNano(), 10))).String()
}
