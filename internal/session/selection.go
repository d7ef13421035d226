package session

import (
	"context"
	"fmt"
	"strings"

	"virtual-doctor/internal/consultation"
	"virtual-doctor/internal/language"
)

// chooseMode asks for text or voice interaction. Anything but "2" is text.
func (o *Orchestrator) chooseMode(ctx context.Context) (consultation.InputMethod, error) {
	o.console.Say("")
	o.console.Say(msgModeQuestion)
	o.console.Say(msgModeText)
	o.console.Say(msgModeVoice)
	choice, err := o.console.Ask(ctx, msgModeChoice)
	if err != nil {
		return "", err
	}
	if choice == voiceChoice {
		return consultation.InputVoice, nil
	}
	return consultation.InputText, nil
}

// selectLanguage resolves, in order: a menu key, "other" with a typed code
// and name, a known language code, and finally a detected sample sentence.
func (o *Orchestrator) selectLanguage(ctx context.Context) (language.Selection, error) {
	o.console.Say(msgCatalogWelcome)
	o.console.Say(msgSelectLanguage)
	for _, lang := range o.catalog.Entries() {
		o.console.Say(fmt.Sprintf("%s. %s", lang.Key, lang.Name))
	}

	choice, err := o.console.Ask(ctx, msgLanguageChoice)
	if err != nil {
		return language.Selection{}, err
	}

	if lang, ok := o.catalog.Lookup(choice); ok {
		return language.Selection{Code: lang.Code, Name: lang.Name}, nil
	}

	if strings.EqualFold(choice, otherChoice) {
		o.listAdditional()
		code, err := o.console.Ask(ctx, msgCustomCode)
		if err != nil {
			return language.Selection{}, err
		}
		name, err := o.console.Ask(ctx, msgCustomName)
		if err != nil {
			return language.Selection{}, err
		}
		return language.Selection{Code: strings.ToLower(code), Name: name}, nil
	}

	if lang, ok := o.catalog.ByCode(choice); ok {
		return language.Selection{Code: lang.Code, Name: lang.Name}, nil
	}

	o.console.Say(msgUnrecognized)
	sample, err := o.console.ReadLine(ctx)
	if err != nil {
		return language.Selection{}, err
	}
	code := o.detector.Detect(ctx, sample)
	return language.Selection{Code: code, Name: fmt.Sprintf(detectedNameFormat, code)}, nil
}

// listAdditional shows the languages that are reachable by code only.
func (o *Orchestrator) listAdditional() {
	extra := o.catalog.Additional()
	if len(extra) == 0 {
		return
	}
	names := make([]string, 0, len(extra))
	for _, lang := range extra {
		names = append(names, fmt.Sprintf("%s (%s)", lang.Code, lang.Name))
	}
	o.console.Say(fmt.Sprintf(additionalFormat, strings.Join(names, ", ")))
}
