package encounter

import (
	"errors"
	"time"
)

// Status tracks a recording through its lifecycle:
// recording -> processing -> completed | error.
// completed and error are re-enterable only through explicit user action
// (retranscribe, regenerate report), never automatically.
type Status string

const (
	StatusRecording  Status = "recording"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

var (
	// ErrPermissionDenied is returned when the capture prerequisite check
	// fails, before any recording state is created.
	ErrPermissionDenied = errors.New("capture permission denied")

	// ErrCaptureInProgress is returned by Start when a recording is already active.
	ErrCaptureInProgress = errors.New("a recording is already in progress")

	// ErrNoActiveRecording is returned by Stop when nothing is being captured.
	ErrNoActiveRecording = errors.New("no active recording")

	// ErrNotFound is returned when an operation references an unknown recording id.
	ErrNotFound = errors.New("recording not found")

	// ErrReportAttached is returned when a status change would leave an attached
	// report with a non-completed status. The report must be cleared first.
	ErrReportAttached = errors.New("recording has an attached report")
)

// Recording is one captured patient-encounter audio session plus its
// derived transcription and report.
type Recording struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Date          time.Time `json:"date"`
	Duration      int64     `json:"duration"` // milliseconds, fixed at stop
	AudioURI      string    `json:"audioUri,omitempty"`
	Transcription string    `json:"transcription,omitempty"`
	Report        *Report   `json:"report,omitempty"`
	Status        Status    `json:"status"`
}

// Report is the structured clinical extraction derived from a transcription.
type Report struct {
	ID          string          `json:"id"`
	RecordingID string          `json:"recordingId"`
	Date        time.Time       `json:"date"`
	PatientInfo PatientInfo     `json:"patientInfo"`
	Vitals      []Vital         `json:"vitals"`
	Symptoms    []string        `json:"symptoms"`
	Treatments  []string        `json:"treatments"`
	Timeline    []TimelineEvent `json:"timeline"`
	SOAPNote    SOAPNote        `json:"soapNote"`
	FHIRData    string          `json:"fhirData,omitempty"`
}

// PatientInfo holds demographics. Partial data is expected and valid.
type PatientInfo struct {
	Name   string `json:"name,omitempty"`
	Age    int    `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
	ID     string `json:"id,omitempty"`
}

// VitalType classifies a vital sign measurement.
type VitalType string

const (
	VitalPulse            VitalType = "pulse"
	VitalBloodPressure    VitalType = "bloodPressure"
	VitalRespiratoryRate  VitalType = "respiratoryRate"
	VitalTemperature      VitalType = "temperature"
	VitalOxygenSaturation VitalType = "oxygenSaturation"
	VitalOther            VitalType = "other"
)

// Vital is a single measurement. Multiple entries per type form a time series
// and are never deduplicated.
type Vital struct {
	Type      VitalType `json:"type"`
	Value     string    `json:"value"`
	Unit      string    `json:"unit,omitempty"`
	Timestamp int       `json:"timestamp"` // seconds from start of recording
}

// TimelineEvent is one entry in the chronological event log of an encounter.
type TimelineEvent struct {
	Timestamp   int    `json:"timestamp"` // seconds from start of recording
	Description string `json:"description"`
	Type        string `json:"type"` // vital | symptom | treatment | observation
}

// SOAPNote is the four-section clinical note. All sections are always present;
// any of them may be an empty string.
type SOAPNote struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`
}

// Clone returns a deep copy of the recording so callers never share slices
// or the report with store internals.
func (r Recording) Clone() Recording {
	out := r
	if r.Report != nil {
		rep := r.Report.Clone()
		out.Report = &rep
	}
	return out
}

// Clone returns a deep copy of the report.
func (rep Report) Clone() Report {
	out := rep
	out.Vitals = append([]Vital(nil), rep.Vitals...)
	out.Symptoms = append([]string(nil), rep.Symptoms...)
	out.Treatments = append([]string(nil), rep.Treatments...)
	out.Timeline = append([]TimelineEvent(nil), rep.Timeline...)
	return out
}
