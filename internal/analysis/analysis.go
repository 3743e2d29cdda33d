// Package analysis breaks a finished quiz down by subtopic.
package analysis

import (
	"math"
	"strings"

	"github.com/abhisek/quizdesk/internal/quiz"
)

const (
	// FallbackSubtopic groups questions that carry no subtopic.
	FallbackSubtopic = "General"

	// StrengthThreshold is the minimum percentage for a strength.
	StrengthThreshold = 75.0

	// WeaknessThreshold is the percentage below which a subtopic is a weakness.
	WeaknessThreshold = 50.0
)

// Category classifies a subtopic percentage.
type Category string

const (
	CategoryStrength Category = "strength"
	CategoryNeutral  Category = "neutral"
	CategoryWeakness Category = "weakness"
)

// Classify returns the category for a percentage.
func Classify(percentage float64) Category {
	switch {
	case percentage >= StrengthThreshold:
		return CategoryStrength
	case percentage < WeaknessThreshold:
		return CategoryWeakness
	default:
		return CategoryNeutral
	}
}

// SubtopicScore is the tally for one subtopic.
type SubtopicScore struct {
	Name       string  `json:"name"`
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Category returns the classification of the score.
func (s SubtopicScore) Category() Category {
	return Classify(s.Percentage)
}

// Report is the per-subtopic breakdown of a session.
type Report struct {
	// SubtopicScores maps subtopic name to percentage.
	SubtopicScores map[string]float64 `json:"subtopicScores"`
	// Subtopics lists every group in order of first appearance.
	Subtopics  []SubtopicScore `json:"subtopics"`
	Strengths  []SubtopicScore `json:"strengths"`
	Weaknesses []SubtopicScore `json:"weaknesses"`
	// Average is the unweighted mean of the subtopic percentages.
	Average float64 `json:"average"`
}

// Analyze groups questions by subtopic and scores each group against
// answers. Groups come out in order of first appearance; a missing answer
// counts as unanswered. Subtopics are grouped on their exact value; only an
// empty subtopic takes the fallback. An empty fallback means FallbackSubtopic.
func Analyze(questions []quiz.Question, answers []quiz.Answer, fallback string) Report {
	if strings.TrimSpace(fallback) == "" {
		fallback = FallbackSubtopic
	}

	r := Report{
		SubtopicScores: make(map[string]float64),
		Subtopics:      []SubtopicScore{},
		Strengths:      []SubtopicScore{},
		Weaknesses:     []SubtopicScore{},
	}

	index := make(map[string]int)
	for i, q := range questions {
		name := q.Subtopic
		if name == "" {
			name = fallback
		}
		pos, ok := index[name]
		if !ok {
			pos = len(r.Subtopics)
			index[name] = pos
			r.Subtopics = append(r.Subtopics, SubtopicScore{Name: name})
		}

		ans := quiz.Unanswered
		if i < len(answers) {
			ans = answers[i]
		}
		r.Subtopics[pos].Total++
		if q.IsCorrect(ans) {
			r.Subtopics[pos].Correct++
		}
	}

	if len(r.Subtopics) == 0 {
		return r
	}

	sum := 0.0
	for i := range r.Subtopics {
		s := &r.Subtopics[i]
		s.Percentage = round1(100 * float64(s.Correct) / float64(s.Total))
		r.SubtopicScores[s.Name] = s.Percentage
		sum += s.Percentage

		switch s.Category() {
		case CategoryStrength:
			r.Strengths = append(r.Strengths, *s)
		case CategoryWeakness:
			r.Weaknesses = append(r.Weaknesses, *s)
		}
	}
	r.Average = round1(sum / float64(len(r.Subtopics)))
	return r
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
