package quiz

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"senseibot/internal/models"
)

// NextStatus is the outcome of serving the next question.
type NextStatus int

const (
	// NextQuestion means a QuestionView was produced.
	NextQuestion NextStatus = iota
	// NextCompleted means the bank is exhausted; the quiz is now terminal.
	NextCompleted
	// NextNoSession means there is no active quiz for the chat.
	NextNoSession
)

// QuestionView is one question as served to the user. Options are a fresh
// random permutation on every serve, so re-serving the same index after a
// stop/restart differs while the option set stays identical.
type QuestionView struct {
	Index         int
	Total         int
	Prompt        string
	Options       []string
	CorrectAnswer string
}

// AnswerStatus is the outcome of recording an answer.
type AnswerStatus int

const (
	// AnswerRecorded means the answer was checked and the cursor advanced.
	AnswerRecorded AnswerStatus = iota
	// AnswerDuplicate means the press repeated an already-answered final
	// question; nothing changed and no feedback is owed.
	AnswerDuplicate
	// AnswerNoSession means there is no active quiz for the chat.
	AnswerNoSession
)

// AnswerOutcome is the result of checking one answer.
type AnswerOutcome struct {
	IsCorrect     bool
	CorrectAnswer string
}

// Engine drives the interactive quiz protocol over a Store. Every operation
// on one chat runs under that chat's mutex, so two near-simultaneous button
// presses can never both read the cursor before either writes it; operations
// on different chats proceed in parallel.
type Engine struct {
	store Store
	locks sync.Map // chatID -> *sync.Mutex
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

func (e *Engine) lockFor(chatID int64) *sync.Mutex {
	v, _ := e.locks.LoadOrStore(chatID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Start installs a fresh session for the chat, discarding any previous one.
// It does not serve the first question; callers follow up with Next.
func (e *Engine) Start(chatID int64, audit *models.Audit) {
	mu := e.lockFor(chatID)
	mu.Lock()
	defer mu.Unlock()

	e.store.Put(chatID, &Session{Audit: audit, QuizActive: true})
}

// Begin rewinds the quiz to the first question. Used by the start-quiz
// button, which may be pressed again after a stop or a completed run.
// Returns false when the chat has no study material.
func (e *Engine) Begin(chatID int64) bool {
	mu := e.lockFor(chatID)
	mu.Lock()
	defer mu.Unlock()

	s, ok := e.store.Get(chatID)
	if !ok || s.Audit == nil {
		return false
	}
	s.Cursor = 0
	s.QuizActive = true
	return true
}

// Next serves the question at the cursor without advancing it. When the
// cursor has reached the end of the bank the quiz transitions to terminal
// exactly once and NextCompleted is returned; an empty bank completes on the
// first call.
func (e *Engine) Next(chatID int64) (QuestionView, NextStatus) {
	mu := e.lockFor(chatID)
	mu.Lock()
	defer mu.Unlock()

	s, ok := e.store.Get(chatID)
	if !ok || !s.QuizActive {
		return QuestionView{}, NextNoSession
	}

	if s.Cursor >= len(s.Audit.QuizBank) {
		s.QuizActive = false
		return QuestionView{}, NextCompleted
	}

	q := s.Audit.QuizBank[s.Cursor]
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return QuestionView{
		Index:         s.Cursor,
		Total:         len(s.Audit.QuizBank),
		Prompt:        q.Prompt,
		Options:       options,
		CorrectAnswer: q.CorrectAnswer,
	}, NextQuestion
}

// RecordAnswer checks the chosen answer against the correct one by exact
// string equality and advances the cursor by exactly one, correct or not.
// Telegram can deliver a duplicate press for an already-answered final
// question; that press reports AnswerDuplicate and leaves the cursor alone,
// so the caller can suppress the repeated verdict.
func (e *Engine) RecordAnswer(chatID int64, correctAnswer, chosenAnswer string) (AnswerOutcome, AnswerStatus) {
	mu := e.lockFor(chatID)
	mu.Lock()
	defer mu.Unlock()

	s, ok := e.store.Get(chatID)
	if !ok || s.Audit == nil {
		return AnswerOutcome{}, AnswerNoSession
	}
	if s.Cursor >= len(s.Audit.QuizBank) {
		// Bank exhausted: a repeat press on the final question, landing
		// either just before or just after completion was observed.
		return AnswerOutcome{}, AnswerDuplicate
	}
	if !s.QuizActive {
		return AnswerOutcome{}, AnswerNoSession
	}

	s.Cursor++
	return AnswerOutcome{
		IsCorrect:     chosenAnswer == correctAnswer,
		CorrectAnswer: correctAnswer,
	}, AnswerRecorded
}

// Stop ends the quiz regardless of cursor position. Idempotent: a second
// call on an already-stopped quiz returns false.
func (e *Engine) Stop(chatID int64) bool {
	mu := e.lockFor(chatID)
	mu.Lock()
	defer mu.Unlock()

	s, ok := e.store.Get(chatID)
	if !ok || !s.QuizActive {
		return false
	}
	s.QuizActive = false
	return true
}

// Material returns the chat's Audit for document rendering. Available
// independently of quiz progress, including after the quiz finished.
func (e *Engine) Material(chatID int64) (*models.Audit, bool) {
	mu := e.lockFor(chatID)
	mu.Lock()
	defer mu.Unlock()

	s, ok := e.store.Get(chatID)
	if !ok || s.Audit == nil {
		return nil, false
	}
	return s.Audit, true
}

// CachedPDF returns the previously rendered document, if any.
func (e *Engine) CachedPDF(chatID int64) ([]byte, bool) {
	mu := e.lockFor(chatID)
	mu.Lock()
	defer mu.Unlock()

	s, ok := e.store.Get(chatID)
	if !ok || len(s.PDF) == 0 {
		return nil, false
	}
	return s.PDF, true
}

// CachePDF stores rendered document bytes on the session. Rendering runs
// outside the chat lock, so the write is skipped when the session was
// replaced or removed in the meantime; auditID ties the bytes to the audit
// they were rendered from.
func (e *Engine) CachePDF(chatID int64, auditID uuid.UUID, data []byte) {
	mu := e.lockFor(chatID)
	mu.Lock()
	defer mu.Unlock()

	if s, ok := e.store.Get(chatID); ok && s.Audit != nil && s.Audit.ID == auditID {
		s.PDF = data
	}
}
