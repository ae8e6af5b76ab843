package encounter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tusharj03/EMT-AI-Agent/internal/store"
)

func TestSettingsDefaults(t *testing.T) {
	kv, err := store.NewFileKV(t.TempDir())
	require.NoError(t, err)

	s, err := NewSettingsStore(context.Background(), kv, zap.NewNop())
	require.NoError(t, err)

	got := s.Get()
	require.True(t, got.AutoTranscribe)
	require.True(t, got.AutoGenerateReport)
	require.Equal(t, "Patient Encounter", got.DefaultRecordingTitle)
	require.Empty(t, got.OrganizationName)
}

func TestSettingsPersistAcrossLoads(t *testing.T) {
	ctx := context.Background()
	kv, err := store.NewFileKV(t.TempDir())
	require.NoError(t, err)

	s, err := NewSettingsStore(ctx, kv, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.ToggleAutoTranscribe(ctx))
	require.NoError(t, s.SetProviderName(ctx, "EMT Johnson"))
	require.NoError(t, s.SetOrganizationName(ctx, "Memorial EMS"))

	reloaded, err := NewSettingsStore(ctx, kv, zap.NewNop())
	require.NoError(t, err)

	got := reloaded.Get()
	require.False(t, got.AutoTranscribe)
	require.True(t, got.AutoGenerateReport)
	require.Equal(t, "EMT Johnson", got.ProviderName)
	require.Equal(t, "Memorial EMS", got.OrganizationName)
}
