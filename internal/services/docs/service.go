// Package docs provides document upload, text extraction, and the
// trading-summary price parser.
package docs

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/lakmalw/cense/internal/common"
	"github.com/lakmalw/cense/internal/interfaces"
	"github.com/lakmalw/cense/internal/models"
)

const (
	// maxExtractedChars caps text extracted from a single document.
	maxExtractedChars = 50000

	// maxContextChars caps each slot's contribution to the prompt context.
	maxContextChars = 15000

	// maxUploadBytes rejects oversized uploads before decoding.
	maxUploadBytes = 20 << 20
)

type upload struct {
	filename string
	text     string
}

// Service implements DocumentService. Uploads are held in memory per slot;
// a new upload to a slot replaces the previous one.
type Service struct {
	mu     sync.RWMutex
	slots  map[interfaces.DocumentSlot]upload
	logger *common.Logger
}

// NewService creates a new document service.
func NewService(logger *common.Logger) *Service {
	return &Service{
		slots:  make(map[interfaces.DocumentSlot]upload),
		logger: logger,
	}
}

// slotKind maps each upload slot to its expected document kind.
func slotKind(slot interfaces.DocumentSlot) (interfaces.DocumentKind, error) {
	switch slot {
	case interfaces.SlotTradingSummary:
		return interfaces.DocCSV, nil
	case interfaces.SlotMarketIndex, interfaces.SlotPersonalizedNews:
		return interfaces.DocPDF, nil
	default:
		return "", fmt.Errorf("%w: unknown slot %q", models.ErrValidation, slot)
	}
}

// ExtractText decodes a document: CSV as UTF-8 text, PDF page by page.
func (s *Service) ExtractText(data []byte, kind interfaces.DocumentKind) (string, error) {
	switch kind {
	case interfaces.DocCSV:
		return extractCSVText(data)
	case interfaces.DocPDF:
		return extractPDFText(data)
	default:
		return "", fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, kind)
	}
}

func extractCSVText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: CSV is not valid UTF-8", models.ErrCorruptFile)
	}
	text := string(data)
	if len(text) > maxExtractedChars {
		text = text[:maxExtractedChars]
	}
	return text, nil
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrCorruptFile, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
		if sb.Len() > maxExtractedChars {
			break
		}
	}

	text := sb.String()
	if text == "" {
		return "", fmt.Errorf("%w: no extractable text", models.ErrCorruptFile)
	}
	if len(text) > maxExtractedChars {
		text = text[:maxExtractedChars]
	}
	return text, nil
}

// StoreUpload validates, extracts, and retains a document for a slot.
func (s *Service) StoreUpload(slot interfaces.DocumentSlot, filename, contentType string, data []byte) error {
	kind, err := slotKind(slot)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty upload", models.ErrValidation)
	}
	if len(data) > maxUploadBytes {
		return fmt.Errorf("%w: upload exceeds %d bytes", models.ErrValidation, maxUploadBytes)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch kind {
	case interfaces.DocCSV:
		if ext != ".csv" && !strings.Contains(contentType, "csv") {
			return fmt.Errorf("%w: slot %s expects a CSV file", models.ErrUnsupportedFormat, slot)
		}
	case interfaces.DocPDF:
		if ext != ".pdf" && !strings.Contains(contentType, "pdf") {
			return fmt.Errorf("%w: slot %s expects a PDF file", models.ErrUnsupportedFormat, slot)
		}
	}

	text, err := s.ExtractText(data, kind)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.slots[slot] = upload{filename: filename, text: text}
	s.mu.Unlock()

	s.logger.Info().Str("slot", string(slot)).Str("filename", filename).Int("chars", len(text)).Msg("Document stored")
	return nil
}

// SlotText returns the extracted text for a slot, "" if absent.
func (s *Service) SlotText(slot interfaces.DocumentSlot) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots[slot].text
}

// SlotName returns the uploaded filename for a slot, "" if absent.
func (s *Service) SlotName(slot interfaces.DocumentSlot) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots[slot].filename
}

// CombinedContext builds the labelled document context block embedded in
// advisor prompts. Each slot is truncated independently.
func (s *Service) CombinedContext() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sections := []struct {
		slot  interfaces.DocumentSlot
		label string
	}{
		{interfaces.SlotTradingSummary, "CSE Trading Summary (CSV)"},
		{interfaces.SlotMarketIndex, "Market Index Report (PDF)"},
		{interfaces.SlotPersonalizedNews, "News Document (PDF)"},
	}

	var b strings.Builder
	for _, sec := range sections {
		u, ok := s.slots[sec.slot]
		if !ok || u.text == "" {
			continue
		}
		text := u.text
		if len(text) > maxContextChars {
			text = text[:maxContextChars] + "\n[truncated]"
		}
		fmt.Fprintf(&b, "--- %s: %s ---\n%s\n\n", sec.label, u.filename, text)
	}
	return b.String()
}

var _ interfaces.DocumentService = (*Service)(nil)
