package usecases

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tusharj03/EMT-AI-Agent/internal/domain/encounter"
)

// Recorder drives the background audio capture process.
type Recorder interface {
	CheckFFmpeg() error
	StartBackground(outputPath string) (int, error)
	StopProcess(pid int) error
}

// StartEncounter begins capturing a new patient encounter.
type StartEncounter struct {
	Store    *encounter.Store
	Settings *encounter.SettingsStore
	Recorder Recorder
	DataDir  string
	Logger   *zap.Logger
}

// Execute creates the recording and starts the capture process. An empty
// title falls back to the configured default.
func (s *StartEncounter) Execute(ctx context.Context, title string) (encounter.Recording, error) {
	if title == "" {
		title = s.Settings.Get().DefaultRecordingTitle
	}

	// Capture permission check happens before any state transition.
	if err := s.Recorder.CheckFFmpeg(); err != nil {
		return encounter.Recording{}, fmt.Errorf("%w: %v", encounter.ErrPermissionDenied, err)
	}

	rec, err := s.Store.Start(ctx, title)
	if err != nil {
		return encounter.Recording{}, err
	}

	capturePath := filepath.Join(s.DataDir, "capture-"+rec.ID+".wav")
	pid, err := s.Recorder.StartBackground(capturePath)
	if err != nil {
		_ = s.Store.ClearCurrent(ctx)
		return encounter.Recording{}, fmt.Errorf("starting capture: %w", err)
	}

	if err := s.Store.AttachCapture(ctx, pid, capturePath); err != nil {
		_ = s.Recorder.StopProcess(pid)
		_ = s.Store.ClearCurrent(ctx)
		return encounter.Recording{}, err
	}

	return rec, nil
}

// StopEncounter ends the current capture and hands the recording to the
// processing pipeline.
type StopEncounter struct {
	Store    *encounter.Store
	Recorder Recorder
	Logger   *zap.Logger
}

// Execute stops the capture process, fixes the duration, and returns the
// recording together with the transient audio path for the pipeline.
func (s *StopEncounter) Execute(ctx context.Context) (encounter.Recording, string, error) {
	cur := s.Store.Current()
	if cur == nil || cur.Recording.Status != encounter.StatusRecording {
		return encounter.Recording{}, "", encounter.ErrNoActiveRecording
	}

	if cur.PID > 0 {
		if err := s.Recorder.StopProcess(cur.PID); err != nil {
			// Process may have died on its own; the audio file is still usable.
			s.Logger.Warn("could not stop capture process", zap.Int("pid", cur.PID), zap.Error(err))
		}
	}

	rec, err := s.Store.Stop(ctx)
	if err != nil {
		return encounter.Recording{}, "", err
	}

	return rec, cur.AudioPath, nil
}
