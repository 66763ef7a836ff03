// Package classifier turns free-text staff messages into workflow intents
// using deterministic keyword tables.
package classifier

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/width"
)

// Kind identifies what a message asks the workflow to do
type Kind string

const (
	KindAbsenceNotice     Kind = "absence_notice"
	KindSubstituteAccept  Kind = "substitute_accept"
	KindSubstituteDecline Kind = "substitute_decline"
	KindUnrecognized      Kind = "unrecognized"
)

// DateLayout is the layout of AbsenceFields.Date
const DateLayout = "2006-01-02"

// AbsenceFields are the details extracted from an absence notice
type AbsenceFields struct {
	Date      string `json:"date" example:"2026-10-18"`
	TimeRange string `json:"time_range" example:"10:00-18:00"`
	Reason    string `json:"reason" example:"発熱"`
}

// Intent is the result of classifying one message. Absence is set only for KindAbsenceNotice.
type Intent struct {
	Kind    Kind           `json:"kind"`
	Absence *AbsenceFields `json:"absence,omitempty"`
}

var (
	monthDayPattern = regexp.MustCompile(`(\d{1,2})月(\d{1,2})日`)
	slashPattern    = regexp.MustCompile(`(?:^|[^\d:])(\d{1,2})/(\d{1,2})(?:$|[^\d])`)
	timePattern     = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*[-~〜]\s*(\d{1,2}):(\d{2})`)
)

// Classifier applies Rules to message text. It is safe for concurrent use.
type Classifier struct {
	rules Rules
	now   func() time.Time
}

// New creates a classifier. A nil clock uses time.Now.
func New(rules Rules, now func() time.Time) *Classifier {
	if now == nil {
		now = time.Now
	}
	return &Classifier{
		rules: rules.normalized(),
		now:   now,
	}
}

// Classify maps text to an intent. The first matching rule wins:
// absence keywords, then substitute acceptance, then substitute refusal.
func (c *Classifier) Classify(text string) Intent {
	normalized := normalize(text)

	if containsAny(normalized, c.rules.AbsenceKeywords) {
		fields := c.extractAbsence(normalized)
		return Intent{Kind: KindAbsenceNotice, Absence: &fields}
	}

	if containsAny(normalized, c.rules.SubstituteMarkers) {
		declined := containsAny(normalized, c.rules.DeclineMarkers)
		if !declined && containsAny(normalized, c.rules.AcceptMarkers) {
			return Intent{Kind: KindSubstituteAccept}
		}
		if declined {
			return Intent{Kind: KindSubstituteDecline}
		}
	}

	return Intent{Kind: KindUnrecognized}
}

func (c *Classifier) extractAbsence(text string) AbsenceFields {
	return AbsenceFields{
		Date:      c.extractDate(text),
		TimeRange: c.extractTimeRange(text),
		Reason:    c.extractReason(text),
	}
}

func (c *Classifier) extractReason(text string) string {
	for _, rule := range c.rules.Reasons {
		if strings.Contains(text, rule.Keyword) {
			return rule.Reason
		}
	}
	return c.rules.DefaultReason
}

func (c *Classifier) extractDate(text string) string {
	today := c.now()

	for _, pattern := range []*regexp.Regexp{monthDayPattern, slashPattern} {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if date, ok := calendarDate(today.Year(), m[1], m[2], today.Location()); ok {
				return date.Format(DateLayout)
			}
		}
	}

	if containsAny(text, c.rules.TomorrowWords) {
		return today.AddDate(0, 0, 1).Format(DateLayout)
	}
	return today.Format(DateLayout)
}

func (c *Classifier) extractTimeRange(text string) string {
	m := timePattern.FindStringSubmatch(text)
	if m == nil {
		return c.rules.DefaultTimeRange
	}
	start, ok1 := clock(m[1], m[2])
	end, ok2 := clock(m[3], m[4])
	if !ok1 || !ok2 {
		return c.rules.DefaultTimeRange
	}
	return start + "-" + end
}

// calendarDate rejects dates such as 2月30日 instead of letting time.Date roll them over
func calendarDate(year int, month, day string, loc *time.Location) (time.Time, bool) {
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(m), d, 0, 0, 0, 0, loc)
	if date.Month() != time.Month(m) || date.Day() != d {
		return time.Time{}, false
	}
	return date, true
}

func clock(hour, minute string) (string, bool) {
	h, err := strconv.Atoi(hour)
	if err != nil || h > 24 {
		return "", false
	}
	m, err := strconv.Atoi(minute)
	if err != nil || m > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", h, m), true
}

// normalize folds full-width ASCII to half-width so "１２月３日" and "12月3日" match alike
func normalize(text string) string {
	return strings.ToLower(width.Fold.String(text))
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
