package cache

import "fmt"

const keyPrefix = "quiz-engine:"

// SessionResultKey caches the frozen results of a finished session.
func SessionResultKey(token string) string {
	return fmt.Sprintf("%ssession:%s:results", keyPrefix, token)
}

// SessionResultPattern matches every cached session result.
func SessionResultPattern() string {
	return keyPrefix + "session:*:results"
}

// QuizKey caches a quiz with its questions and answer keys.
func QuizKey(quizID uint) string {
	return fmt.Sprintf("%squiz:%d", keyPrefix, quizID)
}
