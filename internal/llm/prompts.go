package llm

import "fmt"

const (
	SystemPrompt = "You are a helpful study assistant."

	SummaryMaxTokens = 500
	QAMaxTokens      = 500
	MCQMaxTokens     = 800
	ChatMaxTokens    = 500

	// chatContextChars bounds how much extracted text is sent with a chat question.
	chatContextChars = 1000

	// ChatFallbackReply is returned to the user when the model call fails.
	ChatFallbackReply = "I'm sorry, I couldn't process your request at the moment. Please try again later."
)

func SummaryPrompt(text string) string {
	return fmt.Sprintf("Please provide a concise summary of the following text:\n\n%s", text)
}

func QAPrompt(text string) string {
	return fmt.Sprintf("Create 3-5 question and answer pairs based on the following text. Format each as 'Q: question\nA: answer':\n\n%s", text)
}

func MCQPrompt(text string) string {
	return fmt.Sprintf("Create 5 multiple choice questions based on the following text. Format each question as follows:\n\n"+
		"Q: question\nA. option1\nB. option2\nC. option3\nD. option4\nAnswer: correct_letter\n\nText:\n%s", text)
}

// ChatPrompt builds a question prompt over the first chatContextChars runes
// of the extracted text.
func ChatPrompt(extractedText, question string) string {
	return fmt.Sprintf("Based on the following text: %s...\n\nUser question: %s\n\nPlease provide a helpful response:",
		truncateRunes(extractedText, chatContextChars), question)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
