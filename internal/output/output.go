package output

import (
	"fmt"
	"io"
	"time"

	"github.com/tusharj03/EMT-AI-Agent/internal/domain/encounter"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) RecordingStarted(title string) {
	fmt.Fprintf(f.w, "🔴 Recording started: %s\n", title)
}

func (f *Formatter) RecordingStopped(durationMs int64) {
	fmt.Fprintf(f.w, "⏹️  Recording stopped (%s)\n", FormatDuration(durationMs))
}

func (f *Formatter) Transcribing() {
	fmt.Fprintf(f.w, "📝 Transcribing audio...\n")
}

func (f *Formatter) TranscribeDone() {
	fmt.Fprintf(f.w, "✅ Transcription saved\n")
}

func (f *Formatter) GeneratingReport() {
	fmt.Fprintf(f.w, "🤖 Generating clinical report...\n")
}

func (f *Formatter) ReportDone() {
	fmt.Fprintf(f.w, "✅ Report generated\n")
}

func (f *Formatter) FHIRDone(path string) {
	fmt.Fprintf(f.w, "✅ FHIR export saved: %s\n", path)
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) RecordingListHeader() {
	fmt.Fprintf(f.w, "📁 Recordings:\n\n")
}

func (f *Formatter) RecordingListItem(rec encounter.Recording) {
	fmt.Fprintf(f.w, "  %s  %-10s  %s (%s)\n",
		rec.Date.Local().Format("2006-01-02 15:04"),
		statusBadge(rec.Status),
		rec.Title,
		FormatDuration(rec.Duration),
	)
	fmt.Fprintf(f.w, "    id: %s\n", rec.ID)
}

func (f *Formatter) RecordingDetail(rec encounter.Recording) {
	fmt.Fprintf(f.w, "%s\n", rec.Title)
	fmt.Fprintf(f.w, "  id:       %s\n", rec.ID)
	fmt.Fprintf(f.w, "  date:     %s\n", rec.Date.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(f.w, "  duration: %s\n", FormatDuration(rec.Duration))
	fmt.Fprintf(f.w, "  status:   %s\n", statusBadge(rec.Status))
	if rec.AudioURI != "" {
		fmt.Fprintf(f.w, "  audio:    %s\n", rec.AudioURI)
	}
	if rec.Transcription != "" {
		fmt.Fprintf(f.w, "\nTranscription:\n%s\n", rec.Transcription)
	}
	if rec.Report != nil {
		f.Report(*rec.Report)
	}
}

func (f *Formatter) Report(rep encounter.Report) {
	fmt.Fprintf(f.w, "\n🩺 Clinical Report\n")

	pi := rep.PatientInfo
	fmt.Fprintf(f.w, "\nPatient:\n")
	if pi.Name != "" {
		fmt.Fprintf(f.w, "  name:   %s\n", pi.Name)
	}
	if pi.Age > 0 {
		fmt.Fprintf(f.w, "  age:    %d\n", pi.Age)
	}
	if pi.Gender != "" {
		fmt.Fprintf(f.w, "  gender: %s\n", pi.Gender)
	}

	if len(rep.Vitals) > 0 {
		fmt.Fprintf(f.w, "\nVitals:\n")
		for _, v := range rep.Vitals {
			unit := v.Unit
			if unit != "" {
				unit = " " + unit
			}
			fmt.Fprintf(f.w, "  [%s] %s: %s%s\n", FormatTimestamp(v.Timestamp), v.Type, v.Value, unit)
		}
	}

	if len(rep.Symptoms) > 0 {
		fmt.Fprintf(f.w, "\nSymptoms:\n")
		for _, s := range rep.Symptoms {
			fmt.Fprintf(f.w, "  - %s\n", s)
		}
	}
	if len(rep.Treatments) > 0 {
		fmt.Fprintf(f.w, "\nTreatments:\n")
		for _, t := range rep.Treatments {
			fmt.Fprintf(f.w, "  - %s\n", t)
		}
	}

	if len(rep.Timeline) > 0 {
		fmt.Fprintf(f.w, "\nTimeline:\n")
		for _, e := range rep.Timeline {
			fmt.Fprintf(f.w, "  [%s] %s\n", FormatTimestamp(e.Timestamp), e.Description)
		}
	}

	fmt.Fprintf(f.w, "\nSOAP Note:\n")
	fmt.Fprintf(f.w, "  Subjective: %s\n", rep.SOAPNote.Subjective)
	fmt.Fprintf(f.w, "  Objective:  %s\n", rep.SOAPNote.Objective)
	fmt.Fprintf(f.w, "  Assessment: %s\n", rep.SOAPNote.Assessment)
	fmt.Fprintf(f.w, "  Plan:       %s\n", rep.SOAPNote.Plan)
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s: %s\n", name, detail)
	}
}

func statusBadge(s encounter.Status) string {
	switch s {
	case encounter.StatusRecording:
		return "recording"
	case encounter.StatusProcessing:
		return "processing"
	case encounter.StatusCompleted:
		return "completed"
	case encounter.StatusError:
		return "error"
	}
	return string(s)
}

// FormatDuration renders elapsed capture milliseconds as h/m/s.
func FormatDuration(durationMs int64) string {
	d := time.Duration(durationMs) * time.Millisecond
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatTimestamp renders seconds from start of recording as MM:SS.
func FormatTimestamp(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
