package consultation

import (
	"strings"
)

// TimestampLayout is the second precision wall-clock format used on disk.
const TimestampLayout = "2006-01-02 15:04:05"

// unknownPhone completes the identity of patients who gave no phone number.
const unknownPhone = "unknown"

type InputMethod string

const (
	InputText  InputMethod = "text"
	InputVoice InputMethod = "voice"
)

type PatientInfo struct {
	Name   string `json:"name"`
	Age    string `json:"age"`
	Gender string `json:"gender"`
	Phone  string `json:"phone"`
}

// Record is one persisted turn. A consultation turn fills the symptom and
// response fields together with PatientInfo; a follow-up turn fills only
// the Followup* fields. Records are never modified after they are stored.
type Record struct {
	ID string `json:"id,omitempty"`

	Symptoms           string       `json:"symptoms,omitempty"`
	OriginalSymptoms   string       `json:"original_symptoms,omitempty"`
	Response           string       `json:"response,omitempty"`
	TranslatedResponse string       `json:"translated_response,omitempty"`
	PatientInfo        *PatientInfo `json:"patient_info,omitempty"`

	FollowupQuestion           string `json:"followup_question,omitempty"`
	OriginalFollowup           string `json:"original_followup,omitempty"`
	FollowupResponse           string `json:"followup_response,omitempty"`
	TranslatedFollowupResponse string `json:"translated_followup_response,omitempty"`

	Language    string      `json:"language"`
	InputMethod InputMethod `json:"input_method"`
	Timestamp   string      `json:"timestamp"`
}

// IsFollowup reports whether r was produced by a follow-up round.
func (r Record) IsFollowup() bool {
	return r.FollowupQuestion != "" || r.FollowupResponse != ""
}

// Identity derives the history key for a patient. Two patients with the same
// name and no phone number share one history.
func Identity(name, phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		phone = unknownPhone
	}
	return strings.TrimSpace(name) + "_" + phone
}
