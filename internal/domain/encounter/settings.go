package encounter

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tusharj03/EMT-AI-Agent/internal/store"
)

// settingsKey is the document key holding the settings document.
const settingsKey = "emt-settings"

// Settings is process-wide configuration consulted by the recording flow.
type Settings struct {
	AutoTranscribe        bool   `json:"autoTranscribe"`
	AutoGenerateReport    bool   `json:"autoGenerateReport"`
	DefaultRecordingTitle string `json:"defaultRecordingTitle"`
	OrganizationName      string `json:"organizationName"`
	ProviderName          string `json:"providerName"`
	ProviderID            string `json:"providerID"`
}

// DefaultSettings are applied when no settings document has been persisted.
func DefaultSettings() Settings {
	return Settings{
		AutoTranscribe:        true,
		AutoGenerateReport:    true,
		DefaultRecordingTitle: "Patient Encounter",
	}
}

// SettingsStore persists settings across sessions. Settings are mutated only
// through explicit setters and never deleted, only reset by absence.
type SettingsStore struct {
	mu     sync.RWMutex
	cur    Settings
	kv     store.KV
	logger *zap.Logger
}

// NewSettingsStore loads persisted settings, falling back to defaults.
func NewSettingsStore(ctx context.Context, kv store.KV, logger *zap.Logger) (*SettingsStore, error) {
	s := &SettingsStore{cur: DefaultSettings(), kv: kv, logger: logger}

	raw, err := kv.Get(ctx, settingsKey)
	if err != nil {
		if err == store.ErrMiss {
			return s, nil
		}
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &s.cur); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	return s, nil
}

func (s *SettingsStore) persist(ctx context.Context) error {
	data, err := json.MarshalIndent(s.cur, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := s.kv.Set(ctx, settingsKey, string(data)); err != nil {
		return fmt.Errorf("persisting settings: %w", err)
	}
	return nil
}

// Get returns the current settings.
func (s *SettingsStore) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *SettingsStore) set(ctx context.Context, fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.cur)
	return s.persist(ctx)
}

func (s *SettingsStore) ToggleAutoTranscribe(ctx context.Context) error {
	return s.set(ctx, func(c *Settings) { c.AutoTranscribe = !c.AutoTranscribe })
}

func (s *SettingsStore) ToggleAutoGenerateReport(ctx context.Context) error {
	return s.set(ctx, func(c *Settings) { c.AutoGenerateReport = !c.AutoGenerateReport })
}

func (s *SettingsStore) SetDefaultRecordingTitle(ctx context.Context, title string) error {
	return s.set(ctx, func(c *Settings) { c.DefaultRecordingTitle = title })
}

func (s *SettingsStore) SetOrganizationName(ctx context.Context, name string) error {
	return s.set(ctx, func(c *Settings) { c.OrganizationName = name })
}

func (s *SettingsStore) SetProviderName(ctx context.Context, name string) error {
	return s.set(ctx, func(c *Settings) { c.ProviderName = name })
}

func (s *SettingsStore) SetProviderID(ctx context.Context, id string) error {
	return s.set(ctx, func(c *Settings) { c.ProviderID = id })
}
