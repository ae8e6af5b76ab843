package encounter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tusharj03/EMT-AI-Agent/internal/store"
)

func newTestStore(t *testing.T) (*Store, store.KV) {
	t.Helper()
	kv, err := store.NewFileKV(t.TempDir())
	require.NoError(t, err)
	s, err := NewStore(context.Background(), kv, zap.NewNop())
	require.NoError(t, err)
	return s, kv
}

func testReport(recordingID string) Report {
	return Report{
		ID:          "rep-1",
		RecordingID: recordingID,
		Date:        time.Now().UTC(),
		Vitals: []Vital{
			{Type: VitalPulse, Value: "88", Unit: "bpm", Timestamp: 0},
		},
		Symptoms:   []string{"chest pain"},
		Treatments: []string{"oxygen therapy"},
		SOAPNote: SOAPNote{
			Subjective: "s", Objective: "o", Assessment: "a", Plan: "p",
		},
	}
}

func TestStartStopLifecycle(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	rec, err := s.Start(ctx, "Patient Encounter")
	require.NoError(t, err)
	require.Equal(t, StatusRecording, rec.Status)
	require.NotEmpty(t, rec.ID)
	require.Empty(t, s.List(), "in-progress recording must not be in the list yet")

	// A second concurrent capture is an explicit error, not a silent replace.
	_, err = s.Start(ctx, "Another")
	require.ErrorIs(t, err, ErrCaptureInProgress)

	stopped, err := s.Stop(ctx)
	require.NoError(t, err)
	require.Equal(t, rec.ID, stopped.ID)
	require.Equal(t, StatusProcessing, stopped.Status)

	list := s.List()
	require.Len(t, list, 1)
	require.Equal(t, rec.ID, list[0].ID)
}

func TestStopWithoutCurrentFails(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Stop(context.Background())
	require.ErrorIs(t, err, ErrNoActiveRecording)
}

func TestListOrderingNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	var ids []string
	for i := 0; i < 3; i++ {
		rec, err := s.Start(ctx, "Encounter")
		require.NoError(t, err)
		_, err = s.Stop(ctx)
		require.NoError(t, err)
		require.NoError(t, s.ClearCurrent(ctx))
		ids = append(ids, rec.ID)
	}

	list := s.List()
	require.Len(t, list, 3)
	require.Equal(t, ids[2], list[0].ID)
	require.Equal(t, ids[0], list[2].ID)
}

func TestSetReportMarksCompletedAtomically(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	rec, err := s.Start(ctx, "Encounter")
	require.NoError(t, err)
	_, err = s.Stop(ctx)
	require.NoError(t, err)

	require.NoError(t, s.SetReport(ctx, rec.ID, testReport(rec.ID)))

	got, err := s.Get(rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Report)
	require.Equal(t, StatusCompleted, got.Status)
}

func TestStatusCannotRegressWithReportAttached(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	rec, err := s.Start(ctx, "Encounter")
	require.NoError(t, err)
	_, err = s.Stop(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SetReport(ctx, rec.ID, testReport(rec.ID)))

	err = s.SetStatus(ctx, rec.ID, StatusProcessing)
	require.ErrorIs(t, err, ErrReportAttached)
	err = s.SetStatus(ctx, rec.ID, StatusError)
	require.ErrorIs(t, err, ErrReportAttached)

	got, err := s.Get(rec.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, got.Status)

	// Clearing the report re-opens the status.
	require.NoError(t, s.ClearReport(ctx, rec.ID))
	require.NoError(t, s.SetStatus(ctx, rec.ID, StatusProcessing))
}

func TestSetTranscriptionIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	rec, err := s.Start(ctx, "Encounter")
	require.NoError(t, err)
	_, err = s.Stop(ctx)
	require.NoError(t, err)

	require.NoError(t, s.SetTranscription(ctx, rec.ID, "pulse is 88"))
	require.NoError(t, s.SetTranscription(ctx, rec.ID, "pulse is 88"))

	got, err := s.Get(rec.ID)
	require.NoError(t, err)
	require.Equal(t, "pulse is 88", got.Transcription)
	require.Equal(t, StatusProcessing, got.Status, "setting transcription must not change status")
}

func TestSetOperationsUnknownID(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.ErrorIs(t, s.SetTranscription(ctx, "missing", "text"), ErrNotFound)
	require.ErrorIs(t, s.SetStatus(ctx, "missing", StatusError), ErrNotFound)
	require.ErrorIs(t, s.SetReport(ctx, "missing", testReport("missing")), ErrNotFound)
}

func TestDeleteOnEmptyStoreIsSafe(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.DeleteAll(ctx))
	require.NoError(t, s.Delete(ctx, "any-id"))
}

func TestDeleteClearsCurrent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	rec, err := s.Start(ctx, "Encounter")
	require.NoError(t, err)
	_, err = s.Stop(ctx)
	require.NoError(t, err)
	require.NotNil(t, s.Current())

	require.NoError(t, s.Delete(ctx, rec.ID))
	require.Nil(t, s.Current())
	require.Empty(t, s.List())
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)

	rec, err := s.Start(ctx, "Encounter")
	require.NoError(t, err)
	_, err = s.Stop(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SetTranscription(ctx, rec.ID, "patient John Smith, pulse is 88"))
	require.NoError(t, s.SetReport(ctx, rec.ID, testReport(rec.ID)))

	// A store loaded from the same documents sees identical structured data.
	reloaded, err := NewStore(ctx, kv, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, s.List(), reloaded.List())
	require.Equal(t, s.Current(), reloaded.Current())
}

func TestCapturePersistsAcrossProcesses(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)

	_, err := s.Start(ctx, "Encounter")
	require.NoError(t, err)
	require.NoError(t, s.AttachCapture(ctx, 4242, "/tmp/capture.wav"))

	// Simulate a fresh CLI invocation picking up the in-flight capture.
	reloaded, err := NewStore(ctx, kv, zap.NewNop())
	require.NoError(t, err)
	cur := reloaded.Current()
	require.NotNil(t, cur)
	require.Equal(t, 4242, cur.PID)
	require.Equal(t, "/tmp/capture.wav", cur.AudioPath)

	stopped, err := reloaded.Stop(ctx)
	require.NoError(t, err)
	require.Equal(t, StatusProcessing, stopped.Status)
	require.GreaterOrEqual(t, stopped.Duration, int64(0))
}
