package report

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/karac38/gdevapps-portal/internal/gradebook"
	"github.com/karac38/gdevapps-portal/internal/model"
)

type GradeKind int

const (
	GradeUngraded GradeKind = iota
	GradeExempt
	GradeScored
)

// Grade is a classified grade cell. Score and Total are set for GradeScored.
type Grade struct {
	Kind  GradeKind
	Score float64
	Total float64
}

// Usable reports whether the grade can contribute to totals.
func (g Grade) Usable() bool {
	return g.Kind == GradeScored && g.Total > 0
}

var bracketPattern = regexp.MustCompile(`\[\s*(-?\d+(?:\.\d+)?)\s*/\s*(-?\d+(?:\.\d+)?)\s*\]`)

// ParseGrade classifies grade text. "E" in any case is exempt; empty text and
// the "No Mark" placeholder are ungraded. Text containing "[" is read as
// "[score/total]"; anything else is a score out of maxPoints.
func ParseGrade(text, maxPoints string) Grade {
	text = strings.TrimSpace(text)
	switch {
	case strings.EqualFold(text, "E"):
		return Grade{Kind: GradeExempt}
	case text == "" || text == model.MarkNoMark:
		return Grade{Kind: GradeUngraded}
	}

	if strings.Contains(text, "[") {
		m := bracketPattern.FindStringSubmatch(text)
		if m == nil {
			return Grade{Kind: GradeScored}
		}
		score, _ := strconv.ParseFloat(m[1], 64)
		total, _ := strconv.ParseFloat(m[2], 64)
		return Grade{Kind: GradeScored, Score: score, Total: total}
	}

	return Grade{
		Kind:  GradeScored,
		Score: gradebook.ParseFloat(text),
		Total: gradebook.ParseFloat(maxPoints),
	}
}

// LetterFor returns the letter of the first band containing percent, or "".
func LetterFor(percent float64, bands []model.LetterGrade) string {
	for _, b := range bands {
		if percent >= b.From && percent <= b.To {
			return b.Letter
		}
	}
	return ""
}
