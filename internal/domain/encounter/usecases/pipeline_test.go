package usecases

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tusharj03/EMT-AI-Agent/internal/domain/encounter"
	"github.com/tusharj03/EMT-AI-Agent/internal/store"
)

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeReports struct {
	err    error
	calls  int
	before func() // runs between the request and the response, to race edits
}

func (f *fakeReports) Derive(_ context.Context, recordingID, transcription string) (encounter.Report, error) {
	f.calls++
	if f.before != nil {
		f.before()
	}
	if f.err != nil {
		return encounter.Report{}, f.err
	}
	return encounter.Report{
		ID:          "rep-1",
		RecordingID: recordingID,
		Date:        time.Now().UTC(),
		Symptoms:    []string{"chest pain"},
		SOAPNote: encounter.SOAPNote{
			Subjective: "subjective", Objective: "objective",
			Assessment: "assessment", Plan: "plan",
		},
	}, nil
}

type pipelineEnv struct {
	pipeline    *Pipeline
	store       *encounter.Store
	settings    *encounter.SettingsStore
	transcriber *fakeTranscriber
	reports     *fakeReports
	dataDir     string
}

func newPipelineEnv(t *testing.T) *pipelineEnv {
	t.Helper()
	ctx := context.Background()
	dataDir := t.TempDir()

	kv, err := store.NewFileKV(dataDir)
	require.NoError(t, err)
	recStore, err := encounter.NewStore(ctx, kv, zap.NewNop())
	require.NoError(t, err)
	settings, err := encounter.NewSettingsStore(ctx, kv, zap.NewNop())
	require.NoError(t, err)

	transcriber := &fakeTranscriber{text: "pulse is 88 and blood pressure is 130/85"}
	reports := &fakeReports{}

	return &pipelineEnv{
		pipeline: &Pipeline{
			Store:       recStore,
			Settings:    settings,
			Transcriber: transcriber,
			Reports:     reports,
			DataDir:     dataDir,
			Logger:      zap.NewNop(),
		},
		store:       recStore,
		settings:    settings,
		transcriber: transcriber,
		reports:     reports,
		dataDir:     dataDir,
	}
}

// stoppedRecording creates a recording that has been captured and stopped,
// with a transient audio file on disk.
func (e *pipelineEnv) stoppedRecording(t *testing.T) (encounter.Recording, string) {
	t.Helper()
	ctx := context.Background()

	rec, err := e.store.Start(ctx, "Patient Encounter")
	require.NoError(t, err)
	_, err = e.store.Stop(ctx)
	require.NoError(t, err)

	transient := filepath.Join(e.dataDir, "capture-"+rec.ID+".wav")
	require.NoError(t, os.WriteFile(transient, []byte("RIFF"), 0o644))
	return rec, transient
}

func TestProcessFullPipeline(t *testing.T) {
	ctx := context.Background()
	env := newPipelineEnv(t)
	rec, transient := env.stoppedRecording(t)

	require.NoError(t, env.pipeline.Process(ctx, rec.ID, transient))

	got, err := env.store.Get(rec.ID)
	require.NoError(t, err)
	require.Equal(t, encounter.StatusCompleted, got.Status)
	require.Equal(t, "pulse is 88 and blood pressure is 130/85", got.Transcription)
	require.NotNil(t, got.Report)
	require.NotEmpty(t, got.Report.SOAPNote.Subjective)
	require.NotEmpty(t, got.Report.SOAPNote.Objective)
	require.NotEmpty(t, got.Report.SOAPNote.Assessment)
	require.NotEmpty(t, got.Report.SOAPNote.Plan)

	// Audio moved into stable storage.
	require.Equal(t, filepath.Join(env.dataDir, "recording-"+rec.ID+".wav"), got.AudioURI)
	_, statErr := os.Stat(got.AudioURI)
	require.NoError(t, statErr)
}

func TestProcessAudioMoveFailureDegrades(t *testing.T) {
	ctx := context.Background()
	env := newPipelineEnv(t)
	rec, _ := env.stoppedRecording(t)

	// Point the pipeline at a transient path that cannot be moved.
	missing := filepath.Join(env.dataDir, "gone.wav")
	require.NoError(t, env.pipeline.Process(ctx, rec.ID, missing))

	got, err := env.store.Get(rec.ID)
	require.NoError(t, err)
	require.Equal(t, missing, got.AudioURI, "pipeline continues with the transient reference")
	require.Equal(t, encounter.StatusCompleted, got.Status)
}

func TestProcessTranscribeFailureSetsError(t *testing.T) {
	ctx := context.Background()
	env := newPipelineEnv(t)
	env.transcriber.err = errors.New("connection refused")
	rec, transient := env.stoppedRecording(t)

	err := env.pipeline.Process(ctx, rec.ID, transient)
	require.Error(t, err)

	got, getErr := env.store.Get(rec.ID)
	require.NoError(t, getErr)
	require.Equal(t, encounter.StatusError, got.Status)
	require.Empty(t, got.Transcription)
	require.Zero(t, env.reports.calls, "pipeline stops after a failed transcription")
}

func TestProcessReportFailureKeepsTranscription(t *testing.T) {
	ctx := context.Background()
	env := newPipelineEnv(t)
	env.reports.err = errors.New("model overloaded")
	rec, transient := env.stoppedRecording(t)

	err := env.pipeline.Process(ctx, rec.ID, transient)
	require.Error(t, err)

	got, getErr := env.store.Get(rec.ID)
	require.NoError(t, getErr)
	require.Equal(t, encounter.StatusError, got.Status)
	require.Equal(t, env.transcriber.text, got.Transcription, "transcription survives report failure")
	require.Nil(t, got.Report)
}

func TestProcessHonorsAutoTranscribeOff(t *testing.T) {
	ctx := context.Background()
	env := newPipelineEnv(t)
	require.NoError(t, env.settings.ToggleAutoTranscribe(ctx))
	rec, transient := env.stoppedRecording(t)

	require.NoError(t, env.pipeline.Process(ctx, rec.ID, transient))

	got, err := env.store.Get(rec.ID)
	require.NoError(t, err)
	require.Equal(t, encounter.StatusProcessing, got.Status, "left for manual continuation")
	require.Zero(t, env.transcriber.calls)
	require.Zero(t, env.reports.calls)
}

func TestProcessHonorsAutoReportOff(t *testing.T) {
	ctx := context.Background()
	env := newPipelineEnv(t)
	require.NoError(t, env.settings.ToggleAutoGenerateReport(ctx))
	rec, transient := env.stoppedRecording(t)

	require.NoError(t, env.pipeline.Process(ctx, rec.ID, transient))

	got, err := env.store.Get(rec.ID)
	require.NoError(t, err)
	require.Equal(t, encounter.StatusProcessing, got.Status)
	require.NotEmpty(t, got.Transcription)
	require.Nil(t, got.Report)
	require.Zero(t, env.reports.calls)
}

func TestRetranscribeSingleStep(t *testing.T) {
	ctx := context.Background()
	env := newPipelineEnv(t)
	rec, transient := env.stoppedRecording(t)

	require.NoError(t, env.pipeline.Process(ctx, rec.ID, transient))
	require.Equal(t, 1, env.reports.calls)

	env.transcriber.text = "updated transcription, pulse is 92"
	require.NoError(t, env.pipeline.Retranscribe(ctx, rec.ID))

	got, err := env.store.Get(rec.ID)
	require.NoError(t, err)
	require.Equal(t, "updated transcription, pulse is 92", got.Transcription)
	require.Equal(t, 1, env.reports.calls, "retranscribe never triggers report derivation")
	// The existing report stays attached until the user regenerates it.
	require.NotNil(t, got.Report)
	require.Equal(t, encounter.StatusCompleted, got.Status)
}

func TestRetranscribeWithoutAudio(t *testing.T) {
	ctx := context.Background()
	env := newPipelineEnv(t)

	rec, err := env.store.Start(ctx, "Encounter")
	require.NoError(t, err)
	_, err = env.store.Stop(ctx)
	require.NoError(t, err)

	require.ErrorIs(t, env.pipeline.Retranscribe(ctx, rec.ID), ErrNoAudio)
}

func TestGenerateReportUsesStoredTranscription(t *testing.T) {
	ctx := context.Background()
	env := newPipelineEnv(t)
	rec, transient := env.stoppedRecording(t)
	require.NoError(t, env.pipeline.Process(ctx, rec.ID, transient))

	// Manual edit, then regenerate: the edited text feeds the derivation.
	require.NoError(t, env.store.SetTranscription(ctx, rec.ID, "edited text, pulse is 95"))
	require.NoError(t, env.pipeline.GenerateReport(ctx, rec.ID))

	got, err := env.store.Get(rec.ID)
	require.NoError(t, err)
	require.Equal(t, encounter.StatusCompleted, got.Status)
	require.NotNil(t, got.Report)
	require.Equal(t, 2, env.reports.calls)
}

func TestGenerateReportRequiresTranscription(t *testing.T) {
	ctx := context.Background()
	env := newPipelineEnv(t)

	rec, err := env.store.Start(ctx, "Encounter")
	require.NoError(t, err)
	_, err = env.store.Stop(ctx)
	require.NoError(t, err)

	require.ErrorIs(t, env.pipeline.GenerateReport(ctx, rec.ID), ErrNoTranscription)
}

func TestLateReportDroppedAfterEdit(t *testing.T) {
	ctx := context.Background()
	env := newPipelineEnv(t)
	rec, transient := env.stoppedRecording(t)
	require.NoError(t, env.store.SetAudioURI(ctx, rec.ID, transient))
	require.NoError(t, env.store.SetTranscription(ctx, rec.ID, "original text"))

	// The transcription changes while the derivation call is in flight.
	env.reports.before = func() {
		require.NoError(t, env.store.SetTranscription(ctx, rec.ID, "newer edit"))
	}

	err := env.pipeline.GenerateReport(ctx, rec.ID)
	require.ErrorIs(t, err, ErrStaleResponse)

	got, getErr := env.store.Get(rec.ID)
	require.NoError(t, getErr)
	require.Nil(t, got.Report, "stale response must not attach a report")
	require.Equal(t, "newer edit", got.Transcription)
}
