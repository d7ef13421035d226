// Package session runs one interactive consultation on the console, in text
// or voice mode, from language selection to the closing disclaimer.
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"virtual-doctor/internal/audio"
	"virtual-doctor/internal/consultation"
	"virtual-doctor/internal/language"
	"virtual-doctor/internal/platform/tracking"
	"virtual-doctor/internal/report"
)

// historyDepth is how many prior records are handed to the advisor.
const historyDepth = 3

type Translator interface {
	Translate(ctx context.Context, text, source, target string) string
}

type Detector interface {
	Detect(ctx context.Context, text string) string
}

type Advisor interface {
	Advise(ctx context.Context, symptoms string, history []consultation.Record) consultation.Advice
}

type RecordStore interface {
	Append(ctx context.Context, identity string, rec consultation.Record) (consultation.Record, error)
	Recent(identity string, n int) []consultation.Record
}

type Recorder interface {
	Record(ctx context.Context, stop <-chan struct{}) (audio.Recording, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, rec audio.Recording, speechCode string) audio.Transcript
}

type Reporter interface {
	SendSessionReport(ctx context.Context, sess report.Session) error
}

// Deps are the collaborators of a session. Recorder and Transcriber are
// only needed in voice mode; Reporter is optional.
type Deps struct {
	Catalog     *language.Catalog
	Translator  Translator
	Detector    Detector
	Advisor     Advisor
	Store       RecordStore
	Recorder    Recorder
	Transcriber Transcriber
	Reporter    Reporter
}

type State int

const (
	StateSelectLanguage State = iota
	StateCollectPatientInfo
	StateCollectSymptoms
	StateGenerateAdvice
	StateOfferFollowup
	StateFollowupRound
	StateClose
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSelectLanguage:
		return "select language"
	case StateCollectPatientInfo:
		return "collect patient info"
	case StateCollectSymptoms:
		return "collect symptoms"
	case StateGenerateAdvice:
		return "generate advice"
	case StateOfferFollowup:
		return "offer follow-up"
	case StateFollowupRound:
		return "follow-up round"
	case StateClose:
		return "close"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Orchestrator struct {
	catalog     *language.Catalog
	translator  Translator
	detector    Detector
	advisor     Advisor
	store       RecordStore
	recorder    Recorder
	transcriber Transcriber
	reporter    Reporter
	console     *Console
	logger      *zap.SugaredLogger
}

func New(deps Deps, console *Console, logger *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{
		catalog:     deps.Catalog,
		translator:  deps.Translator,
		detector:    deps.Detector,
		advisor:     deps.Advisor,
		store:       deps.Store,
		recorder:    deps.Recorder,
		transcriber: deps.Transcriber,
		reporter:    deps.Reporter,
		console:     console,
		logger:      logger,
	}
}

// conversation is the state carried between steps of one run.
type conversation struct {
	id       string
	mode     consultation.InputMethod
	lang     language.Selection
	patient  consultation.PatientInfo
	identity string
	history  []consultation.Record

	originalSymptoms string
	symptoms         string
	followup         bool

	records []consultation.Record
}

// Run drives one session to completion. A failure in any step is reported
// on the console and ends the session; the error is returned for logging.
func (o *Orchestrator) Run(ctx context.Context) error {
	c := &conversation{id: uuid.NewString()}

	err := o.drive(ctx, c)
	if err != nil {
		o.console.Say(fmt.Sprintf(errorFormat, err))
		o.console.Say(msgTryAgain)
		o.logger.Errorw("session aborted", "session_id", c.id, "error", err)
		tracking.CaptureError(err, map[string]interface{}{"component": "session", "session_id": c.id})
	}

	o.sendReport(ctx, c)
	return err
}

func (o *Orchestrator) drive(ctx context.Context, c *conversation) error {
	state := StateSelectLanguage
	for state != StateDone {
		o.logger.Debugw("session step", "session_id", c.id, "state", state.String())
		next, err := o.step(ctx, c, state)
		if err != nil {
			return fmt.Errorf("%s: %w", state, err)
		}
		state = next
	}
	return nil
}

func (o *Orchestrator) step(ctx context.Context, c *conversation, state State) (State, error) {
	switch state {
	case StateSelectLanguage:
		return StateCollectPatientInfo, o.start(ctx, c)
	case StateCollectPatientInfo:
		return StateCollectSymptoms, o.collectPatientInfo(ctx, c)
	case StateCollectSymptoms:
		return StateGenerateAdvice, o.collectSymptoms(ctx, c)
	case StateGenerateAdvice:
		o.generateAdvice(ctx, c)
		return StateOfferFollowup, nil
	case StateOfferFollowup:
		if err := o.offerFollowup(ctx, c); err != nil {
			return state, err
		}
		if c.followup {
			return StateFollowupRound, nil
		}
		return StateClose, nil
	case StateFollowupRound:
		return StateClose, o.followupRound(ctx, c)
	case StateClose:
		o.tell(ctx, c, msgClosing)
		return StateDone, nil
	default:
		return StateDone, fmt.Errorf("unknown state %d", int(state))
	}
}

func (o *Orchestrator) start(ctx context.Context, c *conversation) error {
	mode, err := o.chooseMode(ctx)
	if err != nil {
		return err
	}
	c.mode = mode

	lang, err := o.selectLanguage(ctx)
	if err != nil {
		return err
	}
	c.lang = lang
	o.console.Say("\n" + fmt.Sprintf(selectedFormat, lang.Name, lang.Code))
	o.logger.Infow("session started", "session_id", c.id, "mode", string(mode), "language", lang.Code)

	if mode == consultation.InputVoice {
		o.tell(ctx, c, msgWelcomeVoice)
	} else {
		o.tell(ctx, c, msgWelcomeText)
	}
	return nil
}

// collectPatientInfo keeps answers verbatim. Names and numbers carry no
// language signal, so nothing here goes through the detector.
func (o *Orchestrator) collectPatientInfo(ctx context.Context, c *conversation) error {
	o.tell(ctx, c, msgBasicInfo)

	fields := []struct {
		prompt string
		dst    *string
	}{
		{msgAskName, &c.patient.Name},
		{msgAskAge, &c.patient.Age},
		{msgAskGender, &c.patient.Gender},
		{msgAskPhone, &c.patient.Phone},
	}
	for _, f := range fields {
		answer, err := o.console.Ask(ctx, o.translate(ctx, c, f.prompt))
		if err != nil {
			return err
		}
		*f.dst = answer
	}

	c.identity = consultation.Identity(c.patient.Name, c.patient.Phone)
	c.history = o.store.Recent(c.identity, historyDepth)
	o.logger.Debugw("patient history loaded", "identity", c.identity, "records", len(c.history))
	return nil
}

func (o *Orchestrator) collectSymptoms(ctx context.Context, c *conversation) error {
	input, err := o.collect(ctx, c, msgSymptomsText, msgSymptomsVoice, transcribedSymptomsFmt)
	if err != nil {
		return err
	}
	c.originalSymptoms = input
	o.maybeSwitchLanguage(ctx, c, input)
	return nil
}

// maybeSwitchLanguage follows the patient into another language, but only
// on inputs longer than switchMinWord words and never to the baseline.
func (o *Orchestrator) maybeSwitchLanguage(ctx context.Context, c *conversation, input string) {
	if len(strings.Fields(input)) <= switchMinWord {
		return
	}
	detected := o.detector.Detect(ctx, input)
	if strings.EqualFold(detected, c.lang.Code) || strings.EqualFold(detected, language.Baseline) {
		return
	}

	o.console.Say("\n" + o.translator.Translate(ctx, msgLanguageSwitch, language.Pivot, detected))
	o.logger.Infow("session language switched", "session_id", c.id, "from", c.lang.Code, "to", detected)

	name := detected
	if lang, ok := o.catalog.ByCode(detected); ok {
		name = lang.Name
	}
	c.lang = language.Selection{Code: detected, Name: name}
}

func (o *Orchestrator) generateAdvice(ctx context.Context, c *conversation) {
	c.symptoms = o.translator.Translate(ctx, c.originalSymptoms, c.lang.Code, language.Pivot)
	advice := o.advise(ctx, c, c.symptoms)
	translated := o.translate(ctx, c, advice.Text)
	o.console.Say("\n" + translated)

	patient := c.patient
	o.save(ctx, c, consultation.Record{
		Symptoms:           c.symptoms,
		OriginalSymptoms:   c.originalSymptoms,
		Response:           advice.Text,
		TranslatedResponse: translated,
		PatientInfo:        &patient,
		Language:           c.lang.Code,
		InputMethod:        c.mode,
	})
}

func (o *Orchestrator) offerFollowup(ctx context.Context, c *conversation) error {
	o.tell(ctx, c, msgFollowupOffer)
	answer, err := o.console.ReadLine(ctx)
	if err != nil {
		return err
	}
	c.followup = isAffirmative(o.translator.Translate(ctx, strings.ToLower(answer), c.lang.Code, language.Pivot))
	return nil
}

// isAffirmative takes an answer already translated to the pivot language.
func isAffirmative(answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	return strings.Contains(answer, "yes") || answer == "y"
}

func (o *Orchestrator) followupRound(ctx context.Context, c *conversation) error {
	input, err := o.collect(ctx, c, msgFollowupText, msgFollowupVoice, transcribedFollowupFmt)
	if err != nil {
		return err
	}

	question := o.translator.Translate(ctx, input, c.lang.Code, language.Pivot)
	advice := o.advise(ctx, c, consultation.FollowupContext(c.symptoms, question))
	translated := o.translate(ctx, c, advice.Text)
	o.console.Say("\n" + translated)

	o.save(ctx, c, consultation.Record{
		FollowupQuestion:           question,
		OriginalFollowup:           input,
		FollowupResponse:           advice.Text,
		TranslatedFollowupResponse: translated,
		Language:                   c.lang.Code,
		InputMethod:                c.mode,
	})
	return nil
}

// collect reads one free-form answer, typed or spoken depending on the mode.
func (o *Orchestrator) collect(ctx context.Context, c *conversation, textPrompt, voicePrompt, echoFormat string) (string, error) {
	if c.mode != consultation.InputVoice {
		o.tell(ctx, c, textPrompt)
		return o.console.ReadLine(ctx)
	}

	o.tell(ctx, c, voicePrompt)
	o.console.Say("\n" + msgRecording)

	stopCtx, cancel := context.WithCancel(ctx)
	rec, err := o.recorder.Record(ctx, o.console.StopSignal(stopCtx))
	cancel()
	if err != nil {
		return "", fmt.Errorf("failed to record audio: %w", err)
	}

	transcript := o.transcriber.Transcribe(ctx, rec, o.catalog.SpeechCode(c.lang.Code))
	if transcript.Kind != audio.KindTranscribed {
		o.logger.Infow("transcription fell back to sentinel", "session_id", c.id, "text", transcript.Text)
	}
	o.tell(ctx, c, fmt.Sprintf(echoFormat, transcript.Text))
	return transcript.Text, nil
}

func (o *Orchestrator) advise(ctx context.Context, c *conversation, symptoms string) consultation.Advice {
	advice := o.advisor.Advise(ctx, symptoms, c.history)
	switch advice.Kind {
	case consultation.KindConfiguration:
		o.logger.Errorw("advisor misconfigured", "session_id", c.id, "error", advice.Err)
	case consultation.KindTransient:
		o.logger.Warnw("advisor unavailable", "session_id", c.id, "error", advice.Err)
	}
	return advice
}

// save appends rec. A storage failure is shown as a warning and the session
// goes on with the record kept for the report.
func (o *Orchestrator) save(ctx context.Context, c *conversation, rec consultation.Record) {
	stored, err := o.store.Append(ctx, c.identity, rec)
	if err != nil {
		o.logger.Warnw("consultation not persisted", "session_id", c.id, "identity", c.identity, "error", err)
		o.tell(ctx, c, msgSaveFailed)
	}
	c.records = append(c.records, stored)
}

func (o *Orchestrator) sendReport(ctx context.Context, c *conversation) {
	if o.reporter == nil || len(c.records) == 0 {
		return
	}
	err := o.reporter.SendSessionReport(ctx, report.Session{
		ID:       c.id,
		Identity: c.identity,
		Patient:  c.patient,
		Language: c.lang.Code,
		Records:  c.records,
	})
	if err != nil {
		o.logger.Warnw("session report failed", "session_id", c.id, "error", err)
	}
}

// translate renders pivot-language text in the session's active language.
func (o *Orchestrator) translate(ctx context.Context, c *conversation, text string) string {
	return o.translator.Translate(ctx, text, language.Pivot, c.lang.Code)
}

// tell prints a translated message after a blank line.
func (o *Orchestrator) tell(ctx context.Context, c *conversation, text string) {
	o.console.Say("\n" + o.translate(ctx, c, text))
}
