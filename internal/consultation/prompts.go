package consultation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// historyWindow is how many prior records are summarized into a prompt.
	historyWindow = 3
	// historyExcerptRunes bounds the part of a past response quoted back.
	historyExcerptRunes = 100

	noHistory = "No previous records"
)

const advicePrompt = `Act as a medical assistant providing preliminary advice.
The patient has reported the following symptoms: %s

Patient history: %s

Provide:
1. Possible conditions (with clear disclaimer that this is not a diagnosis)
2. Recommendations for home care if appropriate
3. Clear advice on when to seek professional medical help
4. Any follow-up questions that would help clarify the condition

Keep responses informative but cautious, and always prioritize patient safety.`

const (
	// ConfigurationFailureMessage is shown when the model or API version is gone.
	ConfigurationFailureMessage = "I'm experiencing technical difficulties with the AI service. " +
		"This may be due to an outdated model name or API version. " +
		"Please contact the developer to update the application with the latest Gemini API specifications."

	transientFailureFormat = "I'm having trouble generating a response. Please try again later. Error: %v"
)

// BuildPrompt renders the advice prompt for symptoms in the pivot language.
func BuildPrompt(symptoms string, history []Record) string {
	return fmt.Sprintf(advicePrompt, symptoms, SummarizeHistory(history))
}

// SummarizeHistory describes at most the three newest records, oldest first.
func SummarizeHistory(history []Record) string {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	if len(history) == 0 {
		return noHistory
	}

	lines := make([]string, 0, len(history))
	for _, rec := range history {
		date := orDefault(rec.Timestamp, "Unknown")
		if rec.IsFollowup() {
			lines = append(lines, fmt.Sprintf("Date: %s, Follow-up question: %s, Answer: %s...",
				date, orDefault(rec.FollowupQuestion, "None"), excerpt(orDefault(rec.FollowupResponse, "None"))))
			continue
		}
		lines = append(lines, fmt.Sprintf("Date: %s, Symptoms: %s, Diagnosis: %s...",
			date, orDefault(rec.Symptoms, "None"), excerpt(orDefault(rec.Response, "None"))))
	}
	return strings.Join(lines, "\n")
}

// FollowupContext is the symptom text sent for a follow-up round.
func FollowupContext(previousSymptoms, question string) string {
	return fmt.Sprintf("Previous symptoms: %s\nFollow-up question: %s", previousSymptoms, question)
}

func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= historyExcerptRunes {
		return s
	}
	return string([]rune(s)[:historyExcerptRunes])
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
