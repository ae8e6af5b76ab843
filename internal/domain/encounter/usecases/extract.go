package usecases

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tusharj03/EMT-AI-Agent/internal/domain/encounter"
)

// OfflineReportSource derives a report locally with conservative pattern
// matching. It is deterministic and exists for offline/demo continuity; it is
// only used when offline mode is explicitly enabled, never as a hidden
// fallback for a failed remote call.
type OfflineReportSource struct{}

func NewOfflineReportSource() *OfflineReportSource { return &OfflineReportSource{} }

var (
	nameRe   = regexp.MustCompile(`(?i)(?:patient(?:\s+name\s+is)?|name(?:\s+is)?)\s+([A-Z][a-z]+\s+[A-Z][a-z]+)`)
	ageRe    = regexp.MustCompile(`(?i)age(?:\s+is)?\s+(\d+)`)
	ageAltRe = regexp.MustCompile(`(?i)(\d+)\s+years?\s+old`)
	genderRe = regexp.MustCompile(`(?i)\b(male|female)\b`)
	pulseRe  = regexp.MustCompile(`(?i)(?:pulse|heart rate)(?:\s+is)?\s+(\d+)`)
	bpRe     = regexp.MustCompile(`(?i)(?:blood pressure|bp)(?:\s+is)?\s+(\d+)[/\\](\d+)`)
	rrRe     = regexp.MustCompile(`(?i)(?:respiratory rate|breathing rate)(?:\s+is)?\s+(\d+)`)
	o2Re     = regexp.MustCompile(`(?i)(?:oxygen|o2|sat)(?:\s+is)?\s+(\d+)\s*%?`)
)

// symptomPatterns maps a detection pattern to the symptom label it yields.
var symptomPatterns = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`(?i)\b(chest pain|chest discomfort)\b`), "chest pain"},
	{regexp.MustCompile(`(?i)\b(shortness of breath|difficulty breathing|sob)\b`), "shortness of breath"},
	{regexp.MustCompile(`(?i)\b(nausea|vomiting)\b`), "nausea"},
	{regexp.MustCompile(`(?i)\b(dizziness|lightheaded)\b`), "dizziness"},
	{regexp.MustCompile(`(?i)\b(headache)\b`), "headache"},
	{regexp.MustCompile(`(?i)\b(abdominal pain|stomach pain)\b`), "abdominal pain"},
}

var treatmentPatterns = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`(?i)\b(oxygen|o2)\b`), "oxygen therapy"},
	{regexp.MustCompile(`(?i)\b(aspirin)\b`), "aspirin administered"},
	{regexp.MustCompile(`(?i)\b(nitroglycerin|nitro)\b`), "nitroglycerin administered"},
	{regexp.MustCompile(`(?i)\b(iv|intravenous)\b`), "IV access established"},
	{regexp.MustCompile(`(?i)\b(epi|epinephrine)\b`), "epinephrine administered"},
	{regexp.MustCompile(`(?i)\b(albuterol|inhaler)\b`), "albuterol administered"},
}

// extractedInfo holds the raw values pulled from the transcription, with
// every missing vital defaulted to a plausible baseline.
type extractedInfo struct {
	Name            string
	Age             int
	Gender          string
	Pulse           string
	BP              string
	RespiratoryRate string
	OxygenSat       string
	Symptoms        []string
	Treatments      []string
}

func extractBasicInfo(transcription string) extractedInfo {
	info := extractedInfo{
		Name:            "Unknown Patient",
		Pulse:           "80",
		BP:              "120/80",
		RespiratoryRate: "16",
		OxygenSat:       "98",
	}

	if m := nameRe.FindStringSubmatch(transcription); m != nil {
		info.Name = m[1]
	}
	if m := ageRe.FindStringSubmatch(transcription); m != nil {
		info.Age, _ = strconv.Atoi(m[1])
	} else if m := ageAltRe.FindStringSubmatch(transcription); m != nil {
		info.Age, _ = strconv.Atoi(m[1])
	}
	if m := genderRe.FindStringSubmatch(transcription); m != nil {
		info.Gender = strings.ToLower(m[1])
	}
	if m := pulseRe.FindStringSubmatch(transcription); m != nil {
		info.Pulse = m[1]
	}
	if m := bpRe.FindStringSubmatch(transcription); m != nil {
		info.BP = m[1] + "/" + m[2]
	}
	if m := rrRe.FindStringSubmatch(transcription); m != nil {
		info.RespiratoryRate = m[1]
	}
	if m := o2Re.FindStringSubmatch(transcription); m != nil {
		info.OxygenSat = m[1]
	}

	for _, p := range symptomPatterns {
		if p.re.MatchString(transcription) {
			info.Symptoms = append(info.Symptoms, p.label)
		}
	}
	for _, p := range treatmentPatterns {
		if p.re.MatchString(transcription) {
			info.Treatments = append(info.Treatments, p.label)
		}
	}
	if len(info.Symptoms) == 0 {
		info.Symptoms = []string{"chest pain", "shortness of breath"}
	}
	if len(info.Treatments) == 0 {
		info.Treatments = []string{"oxygen therapy", "aspirin administered"}
	}

	return info
}

// Derive builds a deterministic demo report from whatever the transcription
// contains, defaulting every field it cannot find.
func (s *OfflineReportSource) Derive(_ context.Context, recordingID, transcription string) (encounter.Report, error) {
	info := extractBasicInfo(transcription)

	age := info.Age
	if age == 0 {
		age = 45
	}
	gender := info.Gender
	if gender == "" {
		gender = "male"
	}
	symptoms := strings.Join(info.Symptoms, " and ")

	rep := encounter.Report{
		ID:          uuid.NewString(),
		RecordingID: recordingID,
		Date:        time.Now().UTC(),
		PatientInfo: encounter.PatientInfo{Name: info.Name, Age: age, Gender: gender},
		Vitals: []encounter.Vital{
			{Type: encounter.VitalPulse, Value: info.Pulse, Unit: "bpm", Timestamp: 0},
			{Type: encounter.VitalBloodPressure, Value: info.BP, Unit: "mmHg", Timestamp: 0},
			{Type: encounter.VitalRespiratoryRate, Value: info.RespiratoryRate, Unit: "breaths/min", Timestamp: 0},
			{Type: encounter.VitalOxygenSaturation, Value: info.OxygenSat, Unit: "%", Timestamp: 0},
			{Type: encounter.VitalPulse, Value: shiftNumber(info.Pulse, -5), Unit: "bpm", Timestamp: 300},
			{Type: encounter.VitalBloodPressure, Value: shiftBP(info.BP, -5), Unit: "mmHg", Timestamp: 300},
			{Type: encounter.VitalPulse, Value: shiftNumber(info.Pulse, -10), Unit: "bpm", Timestamp: 600},
			{Type: encounter.VitalBloodPressure, Value: shiftBP(info.BP, -10), Unit: "mmHg", Timestamp: 600},
			{Type: encounter.VitalRespiratoryRate, Value: shiftNumber(info.RespiratoryRate, -2), Unit: "breaths/min", Timestamp: 600},
			{Type: encounter.VitalOxygenSaturation, Value: shiftNumber(info.OxygenSat, 2), Unit: "%", Timestamp: 600},
		},
		Symptoms:   info.Symptoms,
		Treatments: info.Treatments,
		Timeline: []encounter.TimelineEvent{
			{Timestamp: 0, Description: fmt.Sprintf("Initial assessment: Pulse %s bpm, BP %s mmHg, RR %s, O2 sat %s%%", info.Pulse, info.BP, info.RespiratoryRate, info.OxygenSat), Type: "vital"},
			{Timestamp: 0, Description: fmt.Sprintf("Patient reports %s", symptoms), Type: "symptom"},
			{Timestamp: 120, Description: "Administered aspirin (4 tablets, 81mg each)", Type: "treatment"},
			{Timestamp: 150, Description: "Started oxygen at 2 liters per minute via nasal cannula", Type: "treatment"},
			{Timestamp: 300, Description: fmt.Sprintf("Vitals check: Pulse %s bpm, BP %s mmHg", shiftNumber(info.Pulse, -5), shiftBP(info.BP, -5)), Type: "vital"},
			{Timestamp: 330, Description: "Administered nitroglycerin 0.4mg sublingual", Type: "treatment"},
			{Timestamp: 360, Description: "Patient reports feeling a little better but still having some pain", Type: "observation"},
			{Timestamp: 420, Description: "Decision to transport to Memorial Hospital, ETA 10 minutes", Type: "observation"},
			{Timestamp: 600, Description: fmt.Sprintf("Final vitals: Pulse %s bpm, BP %s mmHg, RR %s, O2 sat %s%% on 2L", shiftNumber(info.Pulse, -10), shiftBP(info.BP, -10), shiftNumber(info.RespiratoryRate, -2), shiftNumber(info.OxygenSat, 2)), Type: "vital"},
		},
		SOAPNote: encounter.SOAPNote{
			Subjective: fmt.Sprintf("%d-year-old %s patient presenting with %s that started approximately 30 minutes prior to EMS arrival. Patient describes the pain as 'like someone sitting on my chest.' No reported history of similar episodes.", age, gender, symptoms),
			Objective: fmt.Sprintf("Initial vital signs: Pulse %s bpm, BP %s mmHg, respiratory rate %s breaths/min, oxygen saturation %s%% on room air. After treatment, vital signs improved to: Pulse %s bpm, BP %s mmHg, respiratory rate %s breaths/min, oxygen saturation %s%% on 2L oxygen via nasal cannula.",
				info.Pulse, info.BP, info.RespiratoryRate, info.OxygenSat,
				shiftNumber(info.Pulse, -10), shiftBP(info.BP, -10), shiftNumber(info.RespiratoryRate, -2), shiftNumber(info.OxygenSat, 2)),
			Assessment: "Patient presenting with symptoms consistent with possible acute coronary syndrome. Chest pain, elevated blood pressure, and tachycardia suggest cardiac origin. Patient showed partial improvement with initial interventions.",
			Plan: `1. Administered aspirin 324mg (4 tablets of 81mg) PO
2. Initiated oxygen therapy at 2L/min via nasal cannula
3. Administered nitroglycerin 0.4mg sublingual
4. Transport to Memorial Hospital emergency department for further evaluation and treatment
5. Continuous cardiac and vital sign monitoring during transport`,
		},
	}

	return rep, nil
}

// shiftNumber offsets a numeric vital string by delta, keeping the original
// value when it does not parse.
func shiftNumber(value string, delta int) string {
	n, err := strconv.Atoi(value)
	if err != nil {
		return value
	}
	return strconv.Itoa(n + delta)
}

// shiftBP offsets both components of a systolic/diastolic reading.
func shiftBP(value string, delta int) string {
	parts := strings.SplitN(value, "/", 2)
	if len(parts) != 2 {
		return value
	}
	return shiftNumber(parts[0], delta) + "/" + shiftNumber(parts[1], delta)
}
