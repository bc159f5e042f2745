package session

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

type AnswerKind int

const (
	AnswerGiven AnswerKind = iota
	AnswerSkipped
	AnswerTimedOut
)

var skipTokens = map[string]struct{}{
	"pass":         {},
	"skip":         {},
	"idk":          {},
	"i don't know": {},
	"don't know":   {},
	"no idea":      {},
	"not sure":     {},
	"n/a":          {},
}

func ClassifyAnswer(text string) AnswerKind {
	if strings.Contains(text, TimeoutAnswer) {
		return AnswerTimedOut
	}
	if _, ok := skipTokens[strings.ToLower(strings.TrimSpace(text))]; ok {
		return AnswerSkipped
	}
	return AnswerGiven
}

// Selector picks the next question type. Safe for concurrent use.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector seeds from the clock when seed is 0
func NewSelector(seed int64) *Selector {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Selector{rng: rand.New(rand.NewSource(seed))}
}

// Choose decides the type of the next question. questionCount is the count
// after the answer just processed.
func (s *Selector) Choose(kind AnswerKind, last QuestionType, questionCount int) QuestionType {
	switch kind {
	case AnswerSkipped:
		return QuestionNewTopic
	case AnswerTimedOut:
		s.mu.Lock()
		coin := s.rng.Float64()
		s.mu.Unlock()
		// never two follow-ups in a row after a timeout
		if coin < 0.5 || last == QuestionFollowup {
			return QuestionNewTopic
		}
		return QuestionFollowup
	default:
		if last == QuestionFollowup || questionCount%2 == 0 {
			return QuestionNewTopic
		}
		return QuestionFollowup
	}
}
