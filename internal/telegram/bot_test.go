package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"senseibot/internal/builder"
	"senseibot/internal/logger"
	"senseibot/internal/models"
	"senseibot/internal/pdf"
	"senseibot/internal/quiz"
)

// fakeSender records everything the bot tries to say.
type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) messageTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var texts []string
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

// stubBuilder returns a fixed audit or error. When gate is non-nil, Build
// parks until the gate closes, simulating a slow generative backend.
type stubBuilder struct {
	audit *models.Audit
	err   error
	gate  chan struct{}
}

func (s *stubBuilder) Build(ctx context.Context, rawText string) (*models.Audit, error) {
	if s.gate != nil {
		<-s.gate
	}
	return s.audit, s.err
}

func newTestBot(store quiz.Store, bld builder.Builder, out *fakeSender) *Bot {
	return &Bot{
		out:      out,
		engine:   quiz.NewEngine(store),
		builder:  bld,
		renderer: pdf.NewRenderer(),
		log:      logger.NewNop(),
	}
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: chatID},
			Text: text,
		},
	}
}

const submissionText = "Paging divides virtual memory into fixed-size frames " +
	"while segmentation divides it into variable-length logical units."

func TestBuilderFailureLeavesNoSession(t *testing.T) {
	store := quiz.NewMemoryStore()
	out := &fakeSender{}
	bot := newTestBot(store, &stubBuilder{err: errors.New("model unavailable")}, out)

	const chatID = int64(42)
	bot.handleText(chatID, submissionText)

	if store.Exists(chatID) {
		t.Fatal("failed build left a session in the store")
	}

	var reported bool
	for _, text := range out.messageTexts() {
		if strings.Contains(text, "failed to generate") {
			reported = true
		}
	}
	if !reported {
		t.Fatalf("no failure reply sent; messages: %q", out.messageTexts())
	}
}

func TestSubmissionStoresSession(t *testing.T) {
	store := quiz.NewMemoryStore()
	out := &fakeSender{}
	audit := &models.Audit{
		Title:    "Virtual Memory",
		Concepts: []string{"paging", "segmentation"},
		QuizBank: []models.QuizQuestion{{
			Prompt:        "q",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: "a",
		}},
	}
	bot := newTestBot(store, &stubBuilder{audit: audit}, out)

	const chatID = int64(43)
	bot.handleText(chatID, submissionText)

	if !store.Exists(chatID) {
		t.Fatal("successful build did not store a session")
	}

	var summarized bool
	for _, text := range out.messageTexts() {
		if strings.Contains(text, "AUDIT COMPLETE") {
			summarized = true
		}
	}
	if !summarized {
		t.Fatalf("no summary sent; messages: %q", out.messageTexts())
	}
}

func TestDispatchDoesNotBlockOnBusyChat(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)

	store := quiz.NewMemoryStore()
	out := &fakeSender{}
	bot := newTestBot(store, &stubBuilder{err: errors.New("slow"), gate: gate}, out)

	// The chat's worker parks inside Build on the first update; pile on
	// far more updates than the queue holds. Every Dispatch must return.
	const chatID = int64(44)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < updateQueueDepth*3; i++ {
			bot.Dispatch(textUpdate(chatID, submissionText))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Dispatch blocked on a chat with a full queue")
	}
}

func TestDispatchBusyChatDoesNotStallOthers(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)

	store := quiz.NewMemoryStore()
	out := &fakeSender{}
	bot := newTestBot(store, &stubBuilder{err: errors.New("slow"), gate: gate}, out)

	const busyChat = int64(45)
	for i := 0; i < updateQueueDepth*2; i++ {
		bot.Dispatch(textUpdate(busyChat, submissionText))
	}

	// A greeting on another chat must still get a reply while the busy
	// chat's worker is parked in its builder call.
	const idleChat = int64(46)
	bot.Dispatch(textUpdate(idleChat, "hello"))

	deadline := time.After(2 * time.Second)
	for {
		for _, text := range out.messageTexts() {
			if strings.Contains(text, "Hello!") {
				return
			}
		}
		select {
		case <-deadline:
			t.Fatalf("no reply on idle chat; messages: %q", out.messageTexts())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestDuplicateFinalAnswerSuppressesFeedback(t *testing.T) {
	store := quiz.NewMemoryStore()
	out := &fakeSender{}
	bot := newTestBot(store, &stubBuilder{}, out)

	const chatID = int64(47)
	bot.engine.Start(chatID, &models.Audit{
		Title: "t",
		QuizBank: []models.QuizQuestion{{
			Prompt:        "q",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: "a",
		}},
	})

	cb := func() *tgbotapi.CallbackQuery {
		return &tgbotapi.CallbackQuery{
			ID:   "cb",
			Data: answerToken("a", "a"),
			Message: &tgbotapi.Message{
				MessageID: 1,
				Chat:      &tgbotapi.Chat{ID: chatID},
				Text:      "q",
			},
		}
	}

	bot.handleAnswer(cb())
	sentAfterFirst := len(out.sent)

	// Second press for the same, already-answered question. Only the
	// callback acknowledgement goes out; no second verdict, no edit.
	bot.handleAnswer(cb())

	out.mu.Lock()
	extra := out.sent[sentAfterFirst:]
	out.mu.Unlock()
	if len(extra) != 1 {
		t.Fatalf("duplicate press produced %d outbound calls, want 1 ack", len(extra))
	}
	if _, ok := extra[0].(tgbotapi.CallbackConfig); !ok {
		t.Fatalf("duplicate press sent %T, want plain callback ack", extra[0])
	}
}
