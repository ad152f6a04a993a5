package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"senseibot/internal/quiz"
)

// mainMenuKeyboard is shown under the audit summary.
func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📚 Download Full Quiz PDF", actionDownloadPDF),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧠 Start Practice Quiz", actionStartQuiz),
		),
	)
}

// questionKeyboard builds one button per option (already shuffled by the
// engine) plus the stop row. Each option button carries the answer token.
func questionKeyboard(view quiz.QuestionView) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(view.Options)+1)
	for _, option := range view.Options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(option, answerToken(view.CorrectAnswer, option)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🛑 Stop Practice Quiz", actionStopQuiz),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
