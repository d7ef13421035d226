package session

// Console text in the pivot language. Everything shown after language
// selection is translated before display.
const (
	msgModeQuestion = "How would you like to interact with the Virtual Doctor?"
	msgModeText     = "1. Text input (supports multiple languages)"
	msgModeVoice    = "2. Voice input (supports multiple languages)"
	msgModeChoice   = "Enter your choice (1 or 2): "

	msgCatalogWelcome  = "Welcome to Virtual Doctor Assistant"
	msgSelectLanguage  = "Please select your language:"
	msgLanguageChoice  = "Enter the number of your language choice (or type 'other'): "
	additionalFormat   = "Other supported codes: %s"
	msgCustomCode      = "Please enter your language code (e.g., 'ja' for Japanese): "
	msgCustomName      = "Please enter your language name: "
	msgUnrecognized    = "I couldn't recognize that choice. Please type a sentence in your preferred language:"
	detectedNameFormat = "Detected language (%s)"
	selectedFormat     = "Selected language: %s (%s)"

	msgWelcomeText  = "Welcome to the Virtual Doctor Assistant. I'm here to help with your health concerns."
	msgWelcomeVoice = "Welcome to the Voice-based Virtual Doctor Assistant. I'll help assess your health concerns through voice interaction."
	msgBasicInfo    = "First, I need to collect some basic information."

	msgAskName   = "Please enter your name: "
	msgAskAge    = "Please enter your age: "
	msgAskGender = "Please enter your gender (Male/Female/Other): "
	msgAskPhone  = "Please enter your phone number (optional): "

	msgSymptomsText        = "Please describe your symptoms or health concerns in detail:"
	msgSymptomsVoice       = "Please describe your symptoms or health concerns when recording starts."
	msgRecording           = "Recording... Press Enter to stop"
	transcribedSymptomsFmt = "Transcribed symptoms: %s"
	msgLanguageSwitch      = "I detected that you're writing in a different language. I'll continue in this language."

	msgSaveFailed = "Warning: this consultation could not be saved."

	msgFollowupOffer       = "Do you have any follow-up questions? (yes/no)"
	msgFollowupText        = "What else would you like to know?"
	msgFollowupVoice       = "Please ask your follow-up question when recording starts."
	transcribedFollowupFmt = "Transcribed follow-up: %s"

	msgClosing = "Thank you for using Virtual Doctor Assistant. Remember, this is not a replacement for professional medical advice. Please consult a healthcare provider for proper diagnosis and treatment."

	errorFormat   = "An error occurred: %v"
	msgTryAgain   = "Please try again later."
	otherChoice   = "other"
	voiceChoice   = "2"
	switchMinWord = 3
)
