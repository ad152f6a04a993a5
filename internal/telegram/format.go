package telegram

import (
	"regexp"
	"strings"
)

var (
	markdownSpecials  = regexp.MustCompile("([_*\\[\\]()~`>#+\\-=|{}.!])")
	collapseNewlines  = regexp.MustCompile(`\n{3,}`)
	greetingWords     = map[string]bool{"hi": true, "hello": true, "hey": true, "hlo": true}
	quizIntentPattern = regexp.MustCompile(`(?i)(practice|more questions|next question|quiz)`)
)

// escapeMarkdown neutralizes formatting characters the model may emit so a
// reply never fails Telegram's Markdown parsing, and spaces paragraphs out.
func escapeMarkdown(text string) string {
	text = markdownSpecials.ReplaceAllString(text, `\$1`)
	text = strings.ReplaceAll(text, "\n", "\n\n")
	text = collapseNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// isGreeting matches short salutations that should get a friendly nudge
// instead of a full audit run.
func isGreeting(text string) bool {
	if len(strings.Fields(text)) >= 3 {
		return false
	}
	return greetingWords[strings.ToLower(strings.TrimSpace(text))]
}

// wantsQuiz matches free-text requests to practice against existing
// material.
func wantsQuiz(text string) bool {
	return quizIntentPattern.MatchString(text)
}

// tooShortForAudit filters inputs that carry too little material to audit.
func tooShortForAudit(text string) bool {
	return len(strings.Fields(text)) < 4
}
