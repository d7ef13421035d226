package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/signintech/gopdf"
	"go.uber.org/zap"

	"virtual-doctor/internal/consultation"
)

// DejaVu ships on most Linux images and covers Latin, Cyrillic and Greek.
var defaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

const (
	fontFamily = "DejaVu"
	textWidth  = 500
	pageBottom = 780

	// maxMessageRunes is Telegram's limit for a text message.
	maxMessageRunes = 4096
)

type TelegramClient interface {
	SendMessage(chatID int64, text string) error
	SendDocument(chatID int64, fileData []byte, fileName string) error
}

// Session is what a report is built from: one patient's records from a
// single run of the assistant.
type Session struct {
	ID       string
	Identity string
	Patient  consultation.PatientInfo
	Language string
	Records  []consultation.Record
}

// Service renders session reports and delivers them to a directory, to the
// doctor's Telegram chat, or both.
type Service struct {
	tgClient     TelegramClient
	doctorChatID int64
	outputDir    string
	fontPaths    []string
	logger       *zap.SugaredLogger
	now          func() time.Time
}

func NewService(tg TelegramClient, doctorChatID int64, outputDir, fontPath string, logger *zap.SugaredLogger) *Service {
	fontPaths := defaultFontPaths
	if fontPath != "" {
		fontPaths = append([]string{fontPath}, defaultFontPaths...)
	}
	return &Service{
		tgClient:     tg,
		doctorChatID: doctorChatID,
		outputDir:    outputDir,
		fontPaths:    fontPaths,
		logger:       logger,
		now:          time.Now,
	}
}

// SendSessionReport renders the session and delivers it. Sessions without
// records produce nothing.
func (s *Service) SendSessionReport(ctx context.Context, sess Session) error {
	if len(sess.Records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := s.Render(sess)
	if err != nil {
		return s.sendSummary(sess, err)
	}
	fileName := fmt.Sprintf("report_%s.pdf", sess.ID)

	var errs []error
	if s.outputDir != "" {
		path := filepath.Join(s.outputDir, fileName)
		if err := os.WriteFile(path, data, 0o600); err != nil {
			errs = append(errs, fmt.Errorf("failed to write report: %w", err))
		} else {
			s.logger.Infow("session report written", "path", path)
		}
	}
	if s.tgClient != nil && s.doctorChatID != 0 {
		if err := s.tgClient.SendDocument(s.doctorChatID, data, fileName); err != nil {
			errs = append(errs, fmt.Errorf("failed to send report: %w", err))
		} else {
			s.logger.Infow("session report sent", "chat_id", s.doctorChatID)
		}
	}
	return errors.Join(errs...)
}

// sendSummary delivers a plain-text version of the session to the doctor
// chat when the PDF could not be rendered. renderErr is always returned.
func (s *Service) sendSummary(sess Session, renderErr error) error {
	if s.tgClient == nil || s.doctorChatID == 0 {
		return renderErr
	}
	if err := s.tgClient.SendMessage(s.doctorChatID, Summary(sess)); err != nil {
		return errors.Join(renderErr, fmt.Errorf("failed to send summary: %w", err))
	}
	s.logger.Warnw("PDF unavailable, session summary sent as text", "chat_id", s.doctorChatID, "error", renderErr)
	return renderErr
}

// Summary is the text form of a session report, cut to fit one Telegram
// message.
func Summary(sess Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Virtual Doctor consultation (session %s)\n", sess.ID)
	fmt.Fprintf(&b, "Patient: %s (%s), age %s, %s, phone %s\n", orDash(sess.Patient.Name), sess.Identity,
		orDash(sess.Patient.Age), orDash(sess.Patient.Gender), orDash(sess.Patient.Phone))
	fmt.Fprintf(&b, "Language: %s\n", orDash(sess.Language))
	for i, rec := range sess.Records {
		if rec.IsFollowup() {
			fmt.Fprintf(&b, "\n%d. Follow-up (%s, %s)\nQuestion: %s\nAdvice: %s\n", i+1, rec.InputMethod, rec.Timestamp, rec.FollowupQuestion, rec.FollowupResponse)
		} else {
			fmt.Fprintf(&b, "\n%d. Consultation (%s, %s)\nSymptoms: %s\nAdvice: %s\n", i+1, rec.InputMethod, rec.Timestamp, rec.Symptoms, rec.Response)
		}
	}

	text := b.String()
	if utf8.RuneCountInString(text) > maxMessageRunes {
		text = string([]rune(text)[:maxMessageRunes-3]) + "..."
	}
	return text
}

// Render builds the PDF. Advice is reported in the pivot language so the
// doctor can read every report.
func (s *Service) Render(sess Session) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range s.fontPaths {
		if err := pdf.AddTTFFont(fontFamily, path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("failed to load font for PDF, install ttf-dejavu or set REPORT_FONT_PATH: %w", fontErr)
	}

	w := &writer{pdf: pdf}
	w.heading(20, "Virtual Doctor consultation report")
	w.gap(10)

	w.line(11, fmt.Sprintf("Generated: %s", s.now().Format(consultation.TimestampLayout)))
	w.line(11, fmt.Sprintf("Session: %s", sess.ID))
	w.line(11, fmt.Sprintf("Patient: %s (%s)", orDash(sess.Patient.Name), sess.Identity))
	w.line(11, fmt.Sprintf("Age: %s   Gender: %s   Phone: %s", orDash(sess.Patient.Age), orDash(sess.Patient.Gender), orDash(sess.Patient.Phone)))
	w.line(11, fmt.Sprintf("Language: %s", orDash(sess.Language)))
	w.gap(15)

	for i, rec := range sess.Records {
		if rec.IsFollowup() {
			w.heading(14, fmt.Sprintf("%d. Follow-up (%s, %s)", i+1, rec.InputMethod, rec.Timestamp))
			w.paragraph(11, "Question: "+rec.FollowupQuestion)
			w.paragraph(11, "Advice: "+rec.FollowupResponse)
		} else {
			w.heading(14, fmt.Sprintf("%d. Consultation (%s, %s)", i+1, rec.InputMethod, rec.Timestamp))
			w.paragraph(11, "Symptoms: "+rec.Symptoms)
			w.paragraph(11, "Advice: "+rec.Response)
		}
		w.gap(10)
	}

	w.gap(10)
	w.paragraph(9, "Generated automatically. This is not a diagnosis; review before acting on it.")
	if w.err != nil {
		return nil, w.err
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// writer keeps the first error so the layout code reads top to bottom.
type writer struct {
	pdf *gopdf.GoPdf
	err error
}

func (w *writer) setFont(size int) {
	if w.err != nil {
		return
	}
	w.err = w.pdf.SetFont(fontFamily, "", size)
}

func (w *writer) breakPage() {
	if w.pdf.GetY() > pageBottom {
		w.pdf.AddPage()
	}
}

func (w *writer) heading(size int, text string) {
	w.setFont(size)
	w.emit(text, float64(size)+6)
}

func (w *writer) line(size int, text string) {
	w.setFont(size)
	w.emit(text, float64(size)+4)
}

func (w *writer) paragraph(size int, text string) {
	w.setFont(size)
	for _, para := range strings.Split(text, "\n") {
		lines, err := w.pdf.SplitText(para, textWidth)
		if err != nil || len(lines) == 0 {
			lines = []string{para}
		}
		for _, l := range lines {
			w.emit(l, float64(size)+2)
		}
	}
}

func (w *writer) emit(text string, height float64) {
	if w.err != nil {
		return
	}
	w.breakPage()
	if err := w.pdf.Cell(nil, text); err != nil {
		w.err = err
		return
	}
	w.pdf.Br(height)
}

func (w *writer) gap(height float64) {
	w.pdf.Br(height)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
