package usecases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/tusharj03/EMT-AI-Agent/internal/domain/encounter"
)

var (
	// ErrNoAudio is returned when a retranscribe is requested for a
	// recording without persisted audio.
	ErrNoAudio = errors.New("recording has no audio")

	// ErrNoTranscription is returned when report generation is requested
	// before any transcription exists.
	ErrNoTranscription = errors.New("recording has no transcription")

	// ErrNoReport is returned when FHIR export is requested before a report
	// has been generated.
	ErrNoReport = errors.New("recording has no report")

	// ErrStaleResponse marks a late-arriving AI response that no longer
	// matches the recording's current state and was dropped.
	ErrStaleResponse = errors.New("stale response dropped")
)

// Pipeline sequences the side-effecting steps after capture stops:
// persist audio, transcribe, derive report. Each step is independently
// retryable; operations on the same recording are serialized so a late
// response never overwrites a newer edit.
type Pipeline struct {
	Store       *encounter.Store
	Settings    *encounter.SettingsStore
	Transcriber Transcriber
	Reports     ReportSource
	DataDir     string
	Logger      *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lockFor returns the per-recording mutex, creating it on first use.
func (p *Pipeline) lockFor(id string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.locks == nil {
		p.locks = make(map[string]*sync.Mutex)
	}
	l, ok := p.locks[id]
	if !ok {
		l = &sync.Mutex{}
		p.locks[id] = l
	}
	return l
}

// Process runs the automated steps for a freshly stopped recording. The
// transient audio is moved to stable storage first; if that fails the
// pipeline continues with the transient path. Transcription and report
// derivation honor the auto flags and stop at the first disabled step,
// leaving the recording for manual continuation.
func (p *Pipeline) Process(ctx context.Context, id, transientAudioPath string) error {
	l := p.lockFor(id)
	l.Lock()
	defer l.Unlock()

	audioPath := p.persistAudio(id, transientAudioPath)
	if err := p.Store.SetAudioURI(ctx, id, audioPath); err != nil {
		return err
	}

	settings := p.Settings.Get()
	if !settings.AutoTranscribe {
		return nil
	}

	text, err := p.Transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		_ = p.Store.SetStatus(ctx, id, encounter.StatusError)
		return fmt.Errorf("transcribing: %w", err)
	}
	if err := p.Store.SetTranscription(ctx, id, text); err != nil {
		return err
	}

	if !settings.AutoGenerateReport {
		return nil
	}
	return p.deriveReport(ctx, id, text)
}

// persistAudio moves the capture file into the data dir. A failed move is
// non-fatal and degrades to the transient path.
func (p *Pipeline) persistAudio(id, transientPath string) string {
	finalPath := filepath.Join(p.DataDir, "recording-"+id+".wav")
	if transientPath == "" {
		return ""
	}
	if transientPath == finalPath {
		return finalPath
	}
	if err := os.Rename(transientPath, finalPath); err != nil {
		p.Logger.Warn("could not persist audio, keeping transient file",
			zap.String("id", id),
			zap.Error(err),
		)
		return transientPath
	}
	return finalPath
}

// Retranscribe reruns only the transcription step, using the persisted audio.
func (p *Pipeline) Retranscribe(ctx context.Context, id string) error {
	l := p.lockFor(id)
	l.Lock()
	defer l.Unlock()

	rec, err := p.Store.Get(id)
	if err != nil {
		return err
	}
	if rec.AudioURI == "" {
		return ErrNoAudio
	}

	// A completed recording keeps its status; the report still matches the
	// transcription it was generated from until the user regenerates it.
	if rec.Report == nil {
		if err := p.Store.SetStatus(ctx, id, encounter.StatusProcessing); err != nil {
			return err
		}
	}

	text, err := p.Transcriber.Transcribe(ctx, rec.AudioURI)
	if err != nil {
		if rec.Report == nil {
			_ = p.Store.SetStatus(ctx, id, encounter.StatusError)
		}
		return fmt.Errorf("transcribing: %w", err)
	}
	return p.Store.SetTranscription(ctx, id, text)
}

// GenerateReport reruns only the report derivation step, using whatever
// transcription is currently stored, including manual edits.
func (p *Pipeline) GenerateReport(ctx context.Context, id string) error {
	l := p.lockFor(id)
	l.Lock()
	defer l.Unlock()

	rec, err := p.Store.Get(id)
	if err != nil {
		return err
	}
	if rec.Transcription == "" {
		return ErrNoTranscription
	}
	return p.deriveReport(ctx, id, rec.Transcription)
}

// deriveReport runs the derivation call and attaches the result. The caller
// must hold the per-recording lock. The response is revalidated against the
// recording's current transcription before it is applied, so a late response
// never clobbers a newer edit.
func (p *Pipeline) deriveReport(ctx context.Context, id, transcription string) error {
	rec, err := p.Store.Get(id)
	if err != nil {
		return err
	}
	if rec.Report != nil {
		if err := p.Store.ClearReport(ctx, id); err != nil {
			return err
		}
	}
	if err := p.Store.SetStatus(ctx, id, encounter.StatusProcessing); err != nil {
		return err
	}

	report, err := p.Reports.Derive(ctx, id, transcription)
	if err != nil {
		_ = p.Store.SetStatus(ctx, id, encounter.StatusError)
		return fmt.Errorf("deriving report: %w", err)
	}

	rec, err = p.Store.Get(id)
	if err != nil {
		// Deleted while the call was in flight.
		p.Logger.Warn("recording gone before report arrived", zap.String("id", id))
		return ErrStaleResponse
	}
	if rec.Transcription != transcription {
		p.Logger.Warn("transcription changed while report was in flight",
			zap.String("id", id),
		)
		return ErrStaleResponse
	}

	return p.Store.SetReport(ctx, id, report)
}

// ExportFHIR produces the FHIR DiagnosticReport for a completed recording.
type ExportFHIR struct {
	Store     *encounter.Store
	Settings  *encounter.SettingsStore
	Converter FHIRConverter
	Logger    *zap.Logger
}

// Execute converts the attached report and stores the validated document on
// it. Failures are local to this action; the recording's status is untouched.
func (e *ExportFHIR) Execute(ctx context.Context, id string) (string, error) {
	rec, err := e.Store.Get(id)
	if err != nil {
		return "", err
	}
	if rec.Report == nil {
		return "", ErrNoReport
	}

	settings := e.Settings.Get()
	provider := ProviderInfo{
		OrganizationName: settings.OrganizationName,
		ProviderName:     settings.ProviderName,
		ProviderID:       settings.ProviderID,
	}

	fhir, err := e.Converter.Convert(ctx, *rec.Report, provider)
	if err != nil {
		return "", fmt.Errorf("generating FHIR export: %w", err)
	}

	if err := e.Store.SetFHIRData(ctx, id, fhir); err != nil {
		return "", err
	}
	return fhir, nil
}
