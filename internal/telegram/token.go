package telegram

import (
	"fmt"
	"strings"
)

// Callback action tokens carried in inline-keyboard button data.
const (
	actionStartQuiz   = "start_quiz"
	actionStopQuiz    = "stop_quiz"
	actionDownloadPDF = "download_pdf"

	// answerPrefix starts an answer token: check_answer|<correct>|<chosen>.
	// Both answers travel verbatim so checking never has to re-fetch the
	// question.
	answerPrefix = "check_answer"

	tokenSeparator = "|"
)

// answerToken encodes an answer-selection button payload.
func answerToken(correctAnswer, chosenAnswer string) string {
	return strings.Join([]string{answerPrefix, correctAnswer, chosenAnswer}, tokenSeparator)
}

// parseAnswerToken decodes an answer token. The chosen answer is the final
// segment and may itself contain the separator; the correct answer may not,
// matching how answerToken lays the fields out.
func parseAnswerToken(data string) (correctAnswer, chosenAnswer string, err error) {
	parts := strings.SplitN(data, tokenSeparator, 3)
	if len(parts) != 3 || parts[0] != answerPrefix {
		return "", "", fmt.Errorf("malformed answer token %q", data)
	}
	if parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("answer token %q has empty fields", data)
	}
	return parts[1], parts[2], nil
}

// isAnswerToken reports whether callback data routes to the answer handler.
func isAnswerToken(data string) bool {
	return strings.HasPrefix(data, answerPrefix)
}
