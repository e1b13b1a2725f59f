// Package advisor runs the generative-AI panels and the advisor chat.
//
// Every panel request is tagged with a per-panel sequence number. Responses
// land asynchronously and a response is applied only when its sequence is
// still the highest issued for that panel, so a slow early request can never
// overwrite a later one.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lakmalw/cense/internal/common"
	"github.com/lakmalw/cense/internal/interfaces"
	"github.com/lakmalw/cense/internal/models"
)

// invalidFormatMarker is surfaced in panel state when the model's response
// could not be parsed and the raw text is shown instead.
const invalidFormatMarker = "response was not in the expected format, showing raw text"

// maxChatHistory bounds the transcript replayed into each chat prompt.
const maxChatHistory = 40

type panelEntry struct {
	spec  panelSpec
	seq   uint64
	state models.PanelState
}

// Service implements AdvisorService.
type Service struct {
	mu        sync.Mutex
	genai     interfaces.GenAIClient
	ledger    interfaces.LedgerService
	watchlist interfaces.WatchlistService
	docs      interfaces.DocumentService
	logger    *common.Logger
	panels    map[string]*panelEntry
	chat      []models.ChatMessage
}

// NewService creates the advisor service. genai may be nil when no API key is
// configured; every trigger then fails with ErrModelUnavailable.
func NewService(
	genai interfaces.GenAIClient,
	ledger interfaces.LedgerService,
	watchlist interfaces.WatchlistService,
	docs interfaces.DocumentService,
	logger *common.Logger,
) *Service {
	s := &Service{
		genai:     genai,
		ledger:    ledger,
		watchlist: watchlist,
		docs:      docs,
		logger:    logger,
		panels:    make(map[string]*panelEntry),
	}
	for _, spec := range panelSpecs() {
		s.panels[spec.name] = &panelEntry{
			spec:  spec,
			state: models.PanelState{Panel: spec.name},
		}
	}
	return s
}

// Panels lists the known panel names, sorted.
func (s *Service) Panels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.panels))
	for name := range s.panels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PanelState returns a copy of the current state for a panel.
func (s *Service) PanelState(panel string) (*models.PanelState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.panels[panel]
	if !ok {
		return nil, fmt.Errorf("%w: panel %q", models.ErrNotFound, panel)
	}
	state := entry.state
	return &state, nil
}

// Trigger starts a panel request and returns its sequence number. The prompt
// is built synchronously so input errors surface immediately; the model call
// runs in the background and lands in the panel state.
func (s *Service) Trigger(ctx context.Context, panel string, input map[string]interface{}) (uint64, error) {
	if s.genai == nil {
		return 0, models.ErrModelUnavailable
	}

	s.mu.Lock()
	entry, ok := s.panels[panel]
	s.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("%w: panel %q", models.ErrNotFound, panel)
	}

	req, err := entry.spec.build(ctx, s, input)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	entry.seq++
	seq := entry.seq
	entry.state.Seq = seq
	entry.state.Loading = true
	entry.state.Error = ""
	entry.state.UpdatedAt = time.Now()
	s.mu.Unlock()

	go s.run(context.WithoutCancel(ctx), entry, seq, req)
	return seq, nil
}

// run executes one panel request and applies the outcome if still current.
func (s *Service) run(ctx context.Context, entry *panelEntry, seq uint64, req panelRequest) {
	var (
		text    string
		sources []models.Source
		err     error
	)
	switch req.mode {
	case modeSearch:
		text, sources, err = s.genai.GenerateWithSearch(ctx, req.prompt)
	case modeText:
		text, err = s.genai.GenerateContent(ctx, req.prompt)
	default:
		text, err = s.genai.GenerateJSON(ctx, req.prompt)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != entry.seq {
		s.logger.Debug().Str("panel", entry.spec.name).Uint64("seq", seq).Uint64("current", entry.seq).Msg("Dropping stale panel response")
		return
	}

	entry.state.Loading = false
	entry.state.UpdatedAt = time.Now()
	entry.state.Result = nil
	entry.state.RawText = ""

	if err != nil {
		entry.state.Error = err.Error()
		s.logger.Warn().Err(err).Str("panel", entry.spec.name).Msg("Panel request failed")
		return
	}

	result, err := req.finish(text, sources)
	if err != nil {
		entry.state.RawText = text
		entry.state.Error = invalidFormatMarker
		return
	}
	entry.state.Result = result
	entry.state.Error = ""
}

// Chat appends a user message, asks the model, and appends its reply. Model
// failures are recorded as an error reply rather than dropped.
func (s *Service) Chat(ctx context.Context, message string) (*models.ChatMessage, error) {
	if s.genai == nil {
		return nil, models.ErrModelUnavailable
	}
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", models.ErrValidation)
	}

	userMsg := models.ChatMessage{
		ID:   uuid.New().String(),
		Role: "user",
		Text: message,
		Date: time.Now(),
	}

	s.mu.Lock()
	s.chat = append(s.chat, userMsg)
	transcript := chatTranscript(s.chat)
	s.mu.Unlock()

	prompt, err := s.buildChatPrompt(ctx, transcript)
	if err != nil {
		return nil, err
	}

	reply := models.ChatMessage{
		ID:   uuid.New().String(),
		Role: "model",
		Date: time.Now(),
	}
	text, err := s.genai.GenerateContent(ctx, prompt)
	if err != nil {
		reply.Text = "Sorry, I could not process that request. Please try again."
		reply.IsError = true
		s.logger.Warn().Err(err).Msg("Chat request failed")
	} else {
		reply.Text = text
	}

	s.mu.Lock()
	s.chat = append(s.chat, reply)
	s.mu.Unlock()
	return &reply, nil
}

// ChatHistory returns a copy of the conversation so far.
func (s *Service) ChatHistory() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage{}, s.chat...)
}

func chatTranscript(history []models.ChatMessage) string {
	start := 0
	if len(history) > maxChatHistory {
		start = len(history) - maxChatHistory
	}
	var b []byte
	for _, msg := range history[start:] {
		if msg.IsError {
			continue
		}
		b = append(b, msg.Role...)
		b = append(b, ": "...)
		b = append(b, msg.Text...)
		b = append(b, '\n')
	}
	return string(b)
}

// decodeInput re-marshals a generic input map into a typed input struct.
func decodeInput(input map[string]interface{}, v interface{}) error {
	data, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	return nil
}

var _ interfaces.AdvisorService = (*Service)(nil)
