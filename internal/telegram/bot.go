// Package telegram is the transport adapter: it turns Telegram updates into
// engine operations and engine results into messages, keyboards, edits, and
// document uploads.
package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"senseibot/internal/builder"
	"senseibot/internal/logger"
	"senseibot/internal/models"
	"senseibot/internal/pdf"
	"senseibot/internal/quiz"
	"senseibot/internal/youtube"
)

const (
	pollTimeoutSeconds = 60
	updateQueueDepth   = 16
	buildTimeout       = 5 * time.Minute
)

const welcomeText = "🎉 *Welcome to SenSei AI!* 🎉\n\n" +
	"I am your multi-agent study buddy. To start, please send me any text " +
	"from your lecture notes, book, or article. I will instantly perform " +
	"a full audit and generate study materials!"

// sender is the outbound half of the Telegram API. The handlers go through
// it instead of the concrete client so tests can capture what the bot says.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot wires the Telegram API to the quiz engine, the artifact builder, and
// the PDF renderer.
type Bot struct {
	api         *tgbotapi.BotAPI
	out         sender
	engine      *quiz.Engine
	builder     builder.Builder
	renderer    *pdf.Renderer
	transcripts *youtube.Client
	log         *logger.Logger

	// queues holds one serial update channel per chat, so events for a
	// single conversation are handled strictly in arrival order while
	// different conversations run in parallel.
	queues sync.Map // chatID -> chan tgbotapi.Update
}

func New(token string, engine *quiz.Engine, b builder.Builder, renderer *pdf.Renderer, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram API client: %w", err)
	}
	return &Bot{
		api:         api,
		out:         api,
		engine:      engine,
		builder:     b,
		renderer:    renderer,
		transcripts: youtube.NewClient(),
		log:         log,
	}, nil
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	b.log.Info("bot authorized", "account", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.Dispatch(update)
		}
	}
}

// Dispatch hands an update to its chat's worker. Used by both the polling
// loop and the webhook server.
func (b *Bot) Dispatch(update tgbotapi.Update) {
	chatID, ok := chatIDOf(update)
	if !ok {
		return
	}
	v, loaded := b.queues.LoadOrStore(chatID, make(chan tgbotapi.Update, updateQueueDepth))
	ch := v.(chan tgbotapi.Update)
	if !loaded {
		go b.chatWorker(ch)
	}
	// The chat's worker may be parked inside a multi-minute builder or
	// transcript call; the polling goroutine must never wait on it.
	select {
	case ch <- update:
	default:
		b.log.Warn("chat queue full, dropping update", "chat_id", chatID)
	}
}

func (b *Bot) chatWorker(updates chan tgbotapi.Update) {
	for update := range updates {
		b.handle(update)
	}
}

func chatIDOf(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	default:
		return 0, false
	}
}

func (b *Bot) handle(update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleText(update.Message.Chat.ID, update.Message.Text)
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.sendMarkdown(msg.Chat.ID, welcomeText)
	default:
		b.sendPlain(msg.Chat.ID, "Unknown command. Send me study notes or a question to get started.")
	}
}

// handleText is the submission pipeline: intent checks first, then the
// builder call, then session replacement and the summary screen.
func (b *Bot) handleText(chatID int64, text string) {
	text = strings.TrimSpace(text)

	if isGreeting(text) {
		b.sendPlain(chatID, "Hello! I'm SenSei AI. Send me notes or ask a specific question to get started.")
		return
	}

	if wantsQuiz(text) {
		if b.engine.Begin(chatID) {
			b.startPractice(chatID)
		} else {
			b.sendPlain(chatID, "I don't have study materials yet! Please send me the notes or article you want to analyze first.")
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
	defer cancel()

	if youtube.IsVideoURL(text) {
		b.sendTyping(chatID)
		transcript, title, err := b.transcripts.Transcript(ctx, text)
		if err != nil {
			b.log.Warn("transcript fetch failed", "chat_id", chatID, "error", err)
			b.sendPlain(chatID, "I couldn't read the captions for that video. Please try another link or paste the text directly.")
			return
		}
		b.log.Info("transcript fetched", "chat_id", chatID, "video_title", title, "chars", len(transcript))
		text = transcript
	} else if tooShortForAudit(text) {
		b.sendMarkdown(chatID, "*I'm sorry, I need more text.* Please send your full notes or article, "+
			"or ask a detailed question (e.g., 'What is paging and segmentation?').")
		return
	}

	b.sendTyping(chatID)

	audit, err := b.builder.Build(ctx, text)
	if err != nil {
		b.log.Error("audit generation failed", "chat_id", chatID, "error", err)
		b.sendMarkdown(chatID, "🛑 *Error:* SenSei AI failed to generate content. Please check the text or try again.")
		return
	}

	b.engine.Start(chatID, audit)
	b.log.Info("audit stored",
		"chat_id", chatID,
		"audit_id", audit.ID,
		"questions", len(audit.QuizBank))

	b.sendSummary(chatID, text, audit)
}

// sendSummary delivers the audit screen: title, answer or summary, core
// concepts, optional critique, and the action menu.
func (b *Bot) sendSummary(chatID int64, inputText string, audit *models.Audit) {
	var primary string
	switch {
	case audit.PrimaryText == "":
		primary = "*The AI could not generate a specific summary or answer for this input, but core concepts were extracted.*"
	case len(strings.Fields(inputText)) < 15:
		// Short inputs are questions; surface the answer directly.
		primary = "💡 *Educational Answer:*\n" + escapeMarkdown(audit.PrimaryText)
	default:
		primary = "⭐ *Document Summary:*\n" + escapeMarkdown(audit.PrimaryText)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ *AUDIT COMPLETE: %s*\n\n", escapeMarkdown(audit.Title))
	sb.WriteString(primary)
	fmt.Fprintf(&sb, "\n\n🎯 *Core Concepts Extracted:*\n— %s", escapeMarkdown(strings.Join(audit.Concepts, ", ")))
	if audit.Critique != "" {
		fmt.Fprintf(&sb, "\n\n📝 *Professor's Critique:*\n%s", escapeMarkdown(audit.Critique))
	}
	fmt.Fprintf(&sb, "\n\nYour study materials are ready! (%d Questions Generated)", len(audit.QuizBank))

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = mainMenuKeyboard()
	b.send(msg)
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case data == actionStartQuiz:
		b.answerCallback(cb.ID, "")
		if b.engine.Begin(chatID) {
			b.startPractice(chatID)
		} else {
			b.sendPlain(chatID, "Quiz data is unavailable. Please send new notes to perform an audit and generate a quiz bank first.")
		}
	case data == actionStopQuiz:
		b.handleStop(cb)
	case data == actionDownloadPDF:
		b.answerCallback(cb.ID, "Generating your full PDF quiz...")
		b.handleDownload(chatID)
	case isAnswerToken(data):
		b.handleAnswer(cb)
	default:
		b.log.Warn("unknown callback action", "chat_id", chatID, "data", data)
		b.answerCallback(cb.ID, "Please try again.")
	}
}

func (b *Bot) startPractice(chatID int64) {
	b.sendPlain(chatID, "🚀 Starting the practice session. Press 'Stop Practice Quiz' anytime to exit.")
	b.sendNextQuestion(chatID)
}

func (b *Bot) sendNextQuestion(chatID int64) {
	view, status := b.engine.Next(chatID)
	switch status {
	case quiz.NextNoSession:
		b.sendPlain(chatID, "Quiz data expired. Please send new notes to start a practice quiz.")
	case quiz.NextCompleted:
		b.sendMarkdown(chatID, "🎉 *Practice Quiz Finished!* You completed every question. Excellent work.")
	case quiz.NextQuestion:
		text := fmt.Sprintf("❓ *Practice Q%d/%d:*\n%s", view.Index+1, view.Total, escapeMarkdown(view.Prompt))
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.ReplyMarkup = questionKeyboard(view)
		b.send(msg)
	}
}

// handleAnswer checks one answer, annotates the question message in place
// (which also strips its buttons), and serves the next question.
func (b *Bot) handleAnswer(cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID

	correctAnswer, chosenAnswer, err := parseAnswerToken(cb.Data)
	if err != nil {
		b.log.Warn("dropping malformed answer token", "chat_id", chatID, "error", err)
		b.answerCallback(cb.ID, "Something went wrong with that button. Please try again.")
		return
	}

	outcome, status := b.engine.RecordAnswer(chatID, correctAnswer, chosenAnswer)
	switch status {
	case quiz.AnswerNoSession:
		b.answerCallback(cb.ID, "")
		b.sendPlain(chatID, "Quiz data expired. Please send new notes to start a practice quiz.")
		return
	case quiz.AnswerDuplicate:
		// Repeated press on an already-answered question; the verdict
		// was delivered the first time.
		b.answerCallback(cb.ID, "")
		return
	}

	feedback := "🎯 Correct!"
	if !outcome.IsCorrect {
		feedback = fmt.Sprintf("❌ Incorrect. The answer was: %s", outcome.CorrectAnswer)
	}

	alert := tgbotapi.NewCallbackWithAlert(cb.ID, feedback)
	if _, err := b.out.Request(alert); err != nil {
		b.log.Error("failed to answer callback", "chat_id", chatID, "error", err)
	}

	edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID,
		fmt.Sprintf("%s\n\n%s", cb.Message.Text, feedback))
	if _, err := b.out.Send(edit); err != nil {
		b.log.Error("failed to edit question message", "chat_id", chatID, "error", err)
	}

	b.sendNextQuestion(chatID)
}

func (b *Bot) handleStop(cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	b.answerCallback(cb.ID, "Practice quiz stopped.")

	if !b.engine.Stop(chatID) {
		b.sendPlain(chatID, "There is no practice quiz running.")
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID,
		fmt.Sprintf("%s\n\n🛑 Practice Quiz Stopped.", cb.Message.Text))
	if _, err := b.out.Send(edit); err != nil {
		b.log.Error("failed to edit stopped question", "chat_id", chatID, "error", err)
	}

	b.sendPlain(chatID, "You have exited the practice quiz. Send new notes anytime to start another audit!")
}

// handleDownload renders (or reuses) the quiz PDF and sends it as a file.
// The render runs outside the chat lock; the cache write re-checks that the
// audit is still current.
func (b *Bot) handleDownload(chatID int64) {
	audit, ok := b.engine.Material(chatID)
	if !ok {
		b.sendPlain(chatID, "Quiz data expired. Please analyze new text first.")
		return
	}

	data, cached := b.engine.CachedPDF(chatID)
	if !cached {
		var err error
		data, err = b.renderer.Render(audit.Title, audit.QuizBank)
		if err != nil {
			b.log.Error("PDF render failed", "chat_id", chatID, "audit_id", audit.ID, "error", err)
			b.sendPlain(chatID, "Sorry, the PDF could not be generated. Please try again.")
			return
		}
		b.engine.CachePDF(chatID, audit.ID, data)
	}

	filename := fmt.Sprintf("SenSei_AI_Quiz_%s.pdf", strings.ReplaceAll(audit.Title, " ", "_"))
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	doc.Caption = fmt.Sprintf("Here is your full %d-question practice PDF!", len(audit.QuizBank))
	if _, err := b.out.Send(doc); err != nil {
		b.log.Error("failed to send document", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	if _, err := b.out.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Error("failed to answer callback", "error", err)
	}
}

func (b *Bot) sendTyping(chatID int64) {
	if _, err := b.out.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.log.Warn("failed to send typing action", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendPlain(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.send(msg)
}

func (b *Bot) send(msg tgbotapi.MessageConfig) {
	if _, err := b.out.Send(msg); err != nil {
		b.log.Error("failed to send message", "chat_id", msg.ChatID, "error", err)
	}
}
