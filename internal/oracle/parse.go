package oracle

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"talentscout/screening/internal/utils"
)

var topicPattern = regexp.MustCompile(`\[TOPIC:\s*([^\]]+)\]`)

// cleanQuestion pulls the topic tag and strips the usual model chatter around a question.
func cleanQuestion(raw string) (Question, error) {
	var q Question
	if m := topicPattern.FindStringSubmatch(raw); m != nil {
		q.Topic = strings.TrimSpace(m[1])
		raw = topicPattern.ReplaceAllString(raw, "")
	}
	raw = strings.TrimSpace(raw)

	raw = stripIntro(raw)

	raw = utils.StripNonASCII(raw)
	raw = strings.Trim(strings.TrimSpace(raw), `"`)
	q.Text = strings.TrimSpace(raw)

	if q.Text == "" {
		return Question{}, fmt.Errorf("%w: empty question", ErrMalformedResponse)
	}
	return q, nil
}

// drops a "Here is your question:" lead-in, either as its own line or as a prefix
func stripIntro(raw string) string {
	firstLine, rest, _ := strings.Cut(raw, "\n")
	trimmed := strings.TrimSpace(firstLine)
	if strings.HasSuffix(trimmed, ":") && strings.TrimSpace(rest) != "" {
		return strings.TrimSpace(rest)
	}
	if before, after, found := strings.Cut(raw, ":"); found && len(before) <= len(firstLine) {
		if strings.Contains(strings.ToLower(before), "question") && strings.TrimSpace(after) != "" {
			return strings.TrimSpace(after)
		}
	}
	return raw
}

// extractObject returns the outermost JSON object in s
func extractObject(s string) (string, bool) {
	s = utils.StripFences(s)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func parseEvaluation(raw string) (Evaluation, error) {
	obj, ok := extractObject(raw)
	if !ok {
		return Evaluation{}, fmt.Errorf("%w: no JSON object in evaluation", ErrMalformedResponse)
	}

	var payload struct {
		Score  *float64 `json:"score"`
		Passed *bool    `json:"passed"`
	}
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return Evaluation{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Score == nil || math.IsNaN(*payload.Score) {
		return Evaluation{}, fmt.Errorf("%w: evaluation has no score", ErrMalformedResponse)
	}

	score := math.Max(0, math.Min(10, *payload.Score))
	passed := score >= 5
	if payload.Passed != nil {
		passed = *payload.Passed
	}
	return Evaluation{Passed: passed, Score: score}, nil
}

func parseRating(raw string) (float64, string, error) {
	obj, ok := extractObject(raw)
	if !ok {
		return 0, "", fmt.Errorf("%w: no JSON object in rating", ErrMalformedResponse)
	}

	var payload struct {
		Rating        *float64 `json:"rating"`
		Justification string   `json:"justification"`
	}
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Rating == nil || math.IsNaN(*payload.Rating) {
		return 0, "", fmt.Errorf("%w: rating missing", ErrMalformedResponse)
	}
	return math.Max(0, math.Min(5, *payload.Rating)), payload.Justification, nil
}
