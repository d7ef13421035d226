package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/abadojack/whatlanggo"
)

// DetectionClient guesses the language code of a piece of text.
type DetectionClient interface {
	Detect(ctx context.Context, text string) (string, error)
}

// ErrUndetermined is returned when the classifier has no usable answer.
var ErrUndetermined = errors.New("language could not be determined")

// whatlangCodes maps classifier languages onto the codes the assistant's
// language table uses.
var whatlangCodes = map[whatlanggo.Lang]string{
	whatlanggo.Eng: "en",
	whatlanggo.Hin: "hi",
	whatlanggo.Spa: "es",
	whatlanggo.Fra: "fr",
	whatlanggo.Deu: "de",
	whatlanggo.Cmn: "zh-CN",
	whatlanggo.Arb: "ar",
	whatlanggo.Rus: "ru",
	whatlanggo.Por: "pt",
	whatlanggo.Ben: "bn",
	whatlanggo.Jpn: "ja",
	whatlanggo.Kor: "ko",
	whatlanggo.Tam: "ta",
	whatlanggo.Tel: "te",
	whatlanggo.Mar: "mr",
	whatlanggo.Urd: "ur",
	whatlanggo.Pan: "pa",
	whatlanggo.Guj: "gu",
	whatlanggo.Mal: "ml",
	whatlanggo.Kan: "kn",
	whatlanggo.Ori: "or",
	whatlanggo.Tha: "th",
	whatlanggo.Vie: "vi",
	whatlanggo.Ind: "id",
	whatlanggo.Tur: "tr",
	whatlanggo.Ita: "it",
	whatlanggo.Nld: "nl",
	whatlanggo.Swe: "sv",
	whatlanggo.Pol: "pl",
	whatlanggo.Ukr: "uk",
	whatlanggo.Ell: "el",
	whatlanggo.Heb: "he",
	whatlanggo.Pes: "fa",
}

type whatlangDetector struct {
	minConfidence float64
}

// NewWhatlangDetector classifies text locally with trigram statistics.
func NewWhatlangDetector(minConfidence float64) DetectionClient {
	return &whatlangDetector{minConfidence: minConfidence}
}

func (d *whatlangDetector) Detect(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info := whatlanggo.Detect(text)
	code, ok := whatlangCodes[info.Lang]
	if !ok {
		return "", fmt.Errorf("%w: unsupported classification %d", ErrUndetermined, int(info.Lang))
	}
	if info.Confidence < d.minConfidence {
		return "", fmt.Errorf("%w: %s confidence %.2f below %.2f", ErrUndetermined, code, info.Confidence, d.minConfidence)
	}
	return code, nil
}
