package encounter

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tusharj03/EMT-AI-Agent/internal/store"
)

// recordingsKey is the document key holding the full recordings list.
const recordingsKey = "emt-recordings"

// CurrentCapture tracks the single in-progress recording plus the capture
// process backing it. PID and AudioPath are zeroed once capture stops.
type CurrentCapture struct {
	Recording Recording `json:"recording"`
	PID       int       `json:"pid,omitempty"`
	AudioPath string    `json:"audioPath,omitempty"`
}

// document is the persisted shape: the recordings list (newest first) and
// the optional current capture.
type document struct {
	Recordings []Recording     `json:"recordings"`
	Current    *CurrentCapture `json:"current,omitempty"`
}

// Store owns the canonical recordings list and the single current in-progress
// recording. Every mutation writes the full document back through the KV.
type Store struct {
	mu     sync.RWMutex
	doc    document
	kv     store.KV
	logger *zap.Logger
}

// NewStore loads the persisted recordings document. A missing document
// starts an empty store.
func NewStore(ctx context.Context, kv store.KV, logger *zap.Logger) (*Store, error) {
	s := &Store{kv: kv, logger: logger}

	raw, err := kv.Get(ctx, recordingsKey)
	if err != nil {
		if err == store.ErrMiss {
			return s, nil
		}
		return nil, fmt.Errorf("loading recordings: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &s.doc); err != nil {
		return nil, fmt.Errorf("decoding recordings: %w", err)
	}
	return s, nil
}

func (s *Store) persist(ctx context.Context) error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding recordings: %w", err)
	}
	if err := s.kv.Set(ctx, recordingsKey, string(data)); err != nil {
		return fmt.Errorf("persisting recordings: %w", err)
	}
	return nil
}

// Start creates a new recording in the recording state and makes it the
// current capture. Returns ErrCaptureInProgress if one is already active.
func (s *Store) Start(ctx context.Context, title string) (Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.Current != nil && s.doc.Current.Recording.Status == StatusRecording {
		return Recording{}, ErrCaptureInProgress
	}

	rec := Recording{
		ID:     uuid.NewString(),
		Title:  title,
		Date:   time.Now().UTC(),
		Status: StatusRecording,
	}
	if rec.Title == "" {
		rec.Title = fmt.Sprintf("Recording %d", len(s.doc.Recordings)+1)
	}

	s.doc.Current = &CurrentCapture{Recording: rec}
	if err := s.persist(ctx); err != nil {
		s.doc.Current = nil
		return Recording{}, err
	}

	s.logger.Info("recording started", zap.String("id", rec.ID), zap.String("title", rec.Title))
	return rec.Clone(), nil
}

// AttachCapture records the capture process backing the current recording so
// a later CLI invocation can stop it.
func (s *Store) AttachCapture(ctx context.Context, pid int, audioPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.Current == nil || s.doc.Current.Recording.Status != StatusRecording {
		return ErrNoActiveRecording
	}
	s.doc.Current.PID = pid
	s.doc.Current.AudioPath = audioPath
	return s.persist(ctx)
}

// Stop fixes the current recording's duration, marks it processing, and
// prepends it to the list. The duration is never revised afterward.
// Returns ErrNoActiveRecording if nothing is being captured.
func (s *Store) Stop(ctx context.Context) (Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.Current == nil || s.doc.Current.Recording.Status != StatusRecording {
		return Recording{}, ErrNoActiveRecording
	}

	rec := s.doc.Current.Recording
	rec.Duration = time.Since(rec.Date).Milliseconds()
	rec.Status = StatusProcessing

	s.doc.Recordings = append([]Recording{rec}, s.doc.Recordings...)
	s.doc.Current = &CurrentCapture{Recording: rec}
	if err := s.persist(ctx); err != nil {
		return Recording{}, err
	}

	s.logger.Info("recording stopped",
		zap.String("id", rec.ID),
		zap.Int64("duration_ms", rec.Duration),
	)
	return rec.Clone(), nil
}

// update applies fn to the recording with the given id, both in the list and
// in the current slot, then persists. fn may reject the change.
func (s *Store) update(ctx context.Context, id string, fn func(*Recording) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.doc.Recordings {
		if s.doc.Recordings[i].ID == id {
			if err := fn(&s.doc.Recordings[i]); err != nil {
				return err
			}
			found = true
			break
		}
	}
	if s.doc.Current != nil && s.doc.Current.Recording.ID == id {
		if !found {
			if err := fn(&s.doc.Current.Recording); err != nil {
				return err
			}
		} else {
			// Keep the current copy in sync with the list copy.
			for i := range s.doc.Recordings {
				if s.doc.Recordings[i].ID == id {
					s.doc.Current.Recording = s.doc.Recordings[i]
					break
				}
			}
		}
		found = true
	}
	if !found {
		return ErrNotFound
	}
	return s.persist(ctx)
}

// SetTranscription stores transcription text. Allowed in any state; used by
// both the automated pipeline and manual edits. Writing the same text twice
// is a no-op.
func (s *Store) SetTranscription(ctx context.Context, id, text string) error {
	changed := false
	err := s.update(ctx, id, func(r *Recording) error {
		if r.Transcription != text {
			r.Transcription = text
			changed = true
		}
		return nil
	})
	if err != nil || !changed {
		return err
	}
	s.logger.Debug("transcription set", zap.String("id", id), zap.Int("chars", len(text)))
	return nil
}

// SetStatus overrides a recording's status. A recording with an attached
// report stays completed; clear the report first to regress its status.
func (s *Store) SetStatus(ctx context.Context, id string, status Status) error {
	return s.update(ctx, id, func(r *Recording) error {
		if r.Report != nil && status != StatusCompleted {
			return ErrReportAttached
		}
		r.Status = status
		return nil
	})
}

// SetReport attaches a report and marks the recording completed. The two
// fields always change together so a reader never observes a report with a
// stale status.
func (s *Store) SetReport(ctx context.Context, id string, report Report) error {
	err := s.update(ctx, id, func(r *Recording) error {
		rep := report.Clone()
		r.Report = &rep
		r.Status = StatusCompleted
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("report attached", zap.String("id", id), zap.String("report_id", report.ID))
	return nil
}

// ClearReport detaches the report so the recording can be reprocessed.
func (s *Store) ClearReport(ctx context.Context, id string) error {
	return s.update(ctx, id, func(r *Recording) error {
		r.Report = nil
		return nil
	})
}

// SetAudioURI records where the captured audio ended up.
func (s *Store) SetAudioURI(ctx context.Context, id, uri string) error {
	return s.update(ctx, id, func(r *Recording) error {
		r.AudioURI = uri
		return nil
	})
}

// SetFHIRData stores the exported FHIR document on the recording's report.
func (s *Store) SetFHIRData(ctx context.Context, id, fhir string) error {
	return s.update(ctx, id, func(r *Recording) error {
		if r.Report == nil {
			return ErrReportAttached
		}
		r.Report.FHIRData = fhir
		return nil
	})
}

// Delete removes a recording. Deleting the current recording clears the
// current slot too. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.doc.Recordings[:0]
	for _, r := range s.doc.Recordings {
		if r.ID != id {
			out = append(out, r)
		}
	}
	s.doc.Recordings = out
	if s.doc.Current != nil && s.doc.Current.Recording.ID == id {
		s.doc.Current = nil
	}
	return s.persist(ctx)
}

// DeleteAll removes every recording and clears the current slot.
func (s *Store) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Recordings = nil
	s.doc.Current = nil
	return s.persist(ctx)
}

// ClearCurrent drops the current slot without touching the list.
func (s *Store) ClearCurrent(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Current = nil
	return s.persist(ctx)
}

// Get returns a copy of the recording with the given id.
func (s *Store) Get(id string) (Recording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.doc.Recordings {
		if r.ID == id {
			return r.Clone(), nil
		}
	}
	if s.doc.Current != nil && s.doc.Current.Recording.ID == id {
		return s.doc.Current.Recording.Clone(), nil
	}
	return Recording{}, ErrNotFound
}

// List returns a copy of the recordings, newest first.
func (s *Store) List() []Recording {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Recording, 0, len(s.doc.Recordings))
	for _, r := range s.doc.Recordings {
		out = append(out, r.Clone())
	}
	return out
}

// Current returns the current capture, or nil when none is active.
func (s *Store) Current() *CurrentCapture {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.doc.Current == nil {
		return nil
	}
	cc := *s.doc.Current
	cc.Recording = s.doc.Current.Recording.Clone()
	return &cc
}
