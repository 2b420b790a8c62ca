package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/kailas-cloud/edgarsearch/internal/domain/entity"
)

var (
	rangeRe = regexp.MustCompile(`(?i)\b(?:from|between)\s+(\d{4})\s+(?:to|and|through|until|-)\s+(\d{4})\b`)
	dateRe  = regexp.MustCompile(`(?i)\b(?:\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4}|` +
		`(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4})\b`)
	quarterRe     = regexp.MustCompile(`(?i)\bQ([1-4])\s*(?:of\s+|FY\s*)?(\d{4})\b`)
	quarterLabel  = regexp.MustCompile(`\b(\d{4})\s*-?\s*Q([1-4])\b`)
	quarterWordRe = regexp.MustCompile(`(?i)\b(first|second|third|fourth|1st|2nd|3rd|4th)\s+quarter\s+(?:of\s+)?(\d{4})\b`)
	fiscalRe      = regexp.MustCompile(`(?i)\b(?:FY\s*'?|fiscal\s+(?:year\s+)?)(\d{4}|\d{2})\b`)
	lastNRe       = regexp.MustCompile(`(?i)\b(?:last|past|previous|prior)\s+(\d+|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)\s+(days?|weeks?|months?|quarters?|years?)\b`)
	unitRe        = regexp.MustCompile(`(?i)\b(this|current|last|previous|past)\s+(week|month|quarter|year)\b`)
	sinceRe       = regexp.MustCompile(`(?i)\bsince\s+(\d{4})\b`)
	yearRe        = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

var quarterWords = map[string]int{
	"first": 1, "1st": 1, "second": 2, "2nd": 2, "third": 3, "3rd": 3, "fourth": 4, "4th": 4,
}

type span struct{ start, end int }

type found struct {
	at   int
	expr entity.TimeExpr
}

// timeScanner resolves time expressions against a fixed day. Each matched byte range
// is consumed so that a quarter does not also surface as a bare year.
type timeScanner struct {
	today    time.Time
	consumed []span
	out      []found
}

func newTimeScanner(now time.Time) *timeScanner {
	return &timeScanner{today: day(now)}
}

func (s *timeScanner) scan(text string) []entity.TimeExpr {
	s.each(text, rangeRe, func(m []string) (entity.TimeExpr, bool) {
		from, _ := strconv.Atoi(m[1])
		to, _ := strconv.Atoi(m[2])
		start, end := yearStart(from), yearEnd(to)
		return expr(m[0], start, end, fmt.Sprintf("%d-%d", from, to), 0.9), true
	})
	s.each(text, dateRe, func(m []string) (entity.TimeExpr, bool) {
		t, err := dateparse.ParseIn(m[0], time.UTC)
		if err != nil {
			return entity.TimeExpr{}, false
		}
		d := day(t)
		return expr(m[0], d, d, d.Format(time.DateOnly), 0.95), true
	})
	s.each(text, quarterRe, func(m []string) (entity.TimeExpr, bool) {
		q, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[2])
		return s.quarter(m[0], y, q), true
	})
	s.each(text, quarterLabel, func(m []string) (entity.TimeExpr, bool) {
		y, _ := strconv.Atoi(m[1])
		q, _ := strconv.Atoi(m[2])
		return s.quarter(m[0], y, q), true
	})
	s.each(text, quarterWordRe, func(m []string) (entity.TimeExpr, bool) {
		y, _ := strconv.Atoi(m[2])
		return s.quarter(m[0], y, quarterWords[strings.ToLower(m[1])]), true
	})
	s.each(text, fiscalRe, func(m []string) (entity.TimeExpr, bool) {
		y, _ := strconv.Atoi(m[1])
		if len(m[1]) == 2 {
			y += 2000
		}
		return expr(m[0], yearStart(y), yearEnd(y), fmt.Sprintf("FY%d", y), 0.9), true
	})
	s.each(text, lastNRe, func(m []string) (entity.TimeExpr, bool) {
		n, ok := numberWords[strings.ToLower(m[1])]
		if !ok {
			n, _ = strconv.Atoi(m[1])
		}
		if n <= 0 {
			return entity.TimeExpr{}, false
		}
		unit := strings.TrimSuffix(strings.ToLower(m[2]), "s")
		start := shift(s.today, unit, -n)
		return expr(m[0], start, s.today, fmt.Sprintf("last %d %s", n, m[2]), 0.85), true
	})
	s.each(text, unitRe, func(m []string) (entity.TimeExpr, bool) {
		unit := strings.ToLower(m[2])
		start := unitStart(s.today, unit)
		switch strings.ToLower(m[1]) {
		case "last", "previous", "past":
			start = shift(start, unit, -1)
		}
		end := shift(start, unit, 1).AddDate(0, 0, -1)
		return expr(m[0], start, end, strings.ToLower(m[1])+" "+unit, 0.8), true
	})
	s.each(text, sinceRe, func(m []string) (entity.TimeExpr, bool) {
		y, _ := strconv.Atoi(m[1])
		return expr(m[0], yearStart(y), s.today, fmt.Sprintf("since %d", y), 0.85), true
	})
	s.each(text, yearRe, func(m []string) (entity.TimeExpr, bool) {
		y, _ := strconv.Atoi(m[1])
		return expr(m[0], yearStart(y), yearEnd(y), m[1], 0.75), true
	})

	sort.SliceStable(s.out, func(i, j int) bool { return s.out[i].at < s.out[j].at })
	exprs := make([]entity.TimeExpr, 0, len(s.out))
	for _, f := range s.out {
		exprs = append(exprs, f.expr)
	}
	return exprs
}

func (s *timeScanner) each(text string, re *regexp.Regexp, build func([]string) (entity.TimeExpr, bool)) {
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		sp := span{loc[0], loc[1]}
		if s.overlaps(sp) {
			continue
		}
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = text[loc[2*i]:loc[2*i+1]]
			}
		}
		e, ok := build(groups)
		if !ok {
			continue
		}
		s.consumed = append(s.consumed, sp)
		s.out = append(s.out, found{at: sp.start, expr: e.Normalize()})
	}
}

func (s *timeScanner) overlaps(sp span) bool {
	for _, c := range s.consumed {
		if sp.start < c.end && c.start < sp.end {
			return true
		}
	}
	return false
}

func (s *timeScanner) quarter(raw string, year, q int) entity.TimeExpr {
	start := time.Date(year, time.Month(3*(q-1)+1), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, -1)
	return expr(raw, start, end, fmt.Sprintf("%d-Q%d", year, q), 0.9)
}

func expr(raw string, start, end time.Time, period string, conf float64) entity.TimeExpr {
	return entity.TimeExpr{Raw: raw, Start: &start, End: &end, Period: period, Confidence: conf}
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func yearStart(y int) time.Time { return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC) }

func yearEnd(y int) time.Time { return time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC) }

func unitStart(t time.Time, unit string) time.Time {
	switch unit {
	case "week":
		offset := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -offset)
	case "month":
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case "quarter":
		m := (int(t.Month())-1)/3*3 + 1
		return time.Date(t.Year(), time.Month(m), 1, 0, 0, 0, 0, time.UTC)
	default:
		return yearStart(t.Year())
	}
}

func shift(t time.Time, unit string, n int) time.Time {
	switch unit {
	case "day":
		return t.AddDate(0, 0, n)
	case "week":
		return t.AddDate(0, 0, 7*n)
	case "month":
		return t.AddDate(0, n, 0)
	case "quarter":
		return t.AddDate(0, 3*n, 0)
	default:
		return t.AddDate(n, 0, 0)
	}
}
