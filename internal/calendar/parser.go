// Package calendar turns free-text operating calendars ("Daily", "Mon,Wed,Fri",
// "Fri-Sun", "Mon,Thu-Fri") into weekday sets.
//
// Parsing is strict: a token that is not a recognised day name fails the
// whole parse with ErrUnknownDay, and a broken range fails with
// ErrMalformedRange. Callers never receive a partially resolved set.
package calendar

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrUnknownDay     = errors.New("unknown day")
	ErrMalformedRange = errors.New("malformed day range")
)

var dayAliases = map[string]time.Weekday{
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "weds": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday,
}

var (
	dashVariants   = strings.NewReplacer("–", "-", "—", "-")
	spaceAroundSep = regexp.MustCompile(`\s*([,-])\s*`)
)

type entry struct {
	set WeekdaySet
	err error
}

// Parser memoizes parse results keyed by normalized text. Entries are
// inserted once and never overwritten, so a Parser is safe for concurrent use.
type Parser struct {
	cache   sync.Map // normalized text -> entry
	derived atomic.Int64
}

func NewParser() *Parser {
	return &Parser{}
}

var defaultParser = NewParser()

// Parse parses text with the process-wide parser.
func Parse(text string) (WeekdaySet, error) {
	return defaultParser.Parse(text)
}

// Parse returns the weekday set described by text. Empty text yields None.
func (p *Parser) Parse(text string) (WeekdaySet, error) {
	key := Normalize(text)
	if v, ok := p.cache.Load(key); ok {
		e := v.(entry)
		return e.set, e.err
	}

	set, err := parseNormalized(key)
	p.derived.Add(1)

	v, _ := p.cache.LoadOrStore(key, entry{set: set, err: err})
	e := v.(entry)
	return e.set, e.err
}

// Derivations reports how many times the parser actually parsed text rather
// than answering from its cache.
func (p *Parser) Derivations() int64 {
	return p.derived.Load()
}

// Normalize trims text, strips one layer of matching quotes, unifies dash
// variants, removes whitespace around separators and lowercases.
func Normalize(text string) string {
	t := strings.TrimSpace(text)
	if len(t) >= 2 {
		first, last := t[0], t[len(t)-1]
		if first == last && (first == '"' || first == '\'') {
			t = t[1 : len(t)-1]
		}
	}
	t = dashVariants.Replace(t)
	t = spaceAroundSep.ReplaceAllString(t, "$1")
	return strings.ToLower(strings.TrimSpace(t))
}

func parseNormalized(key string) (WeekdaySet, error) {
	if key == "" {
		return None, nil
	}
	if key == "daily" {
		return All, nil
	}

	var out WeekdaySet
	for _, part := range strings.Split(key, ",") {
		if part == "" {
			continue
		}
		if part == "daily" {
			out = out.Union(All)
			continue
		}
		if strings.Contains(part, "-") {
			r, err := parseRange(part)
			if err != nil {
				return None, err
			}
			out = out.Union(r)
			continue
		}
		d, err := lookupDay(part)
		if err != nil {
			return None, err
		}
		out = out.Add(d)
	}
	return out, nil
}

// parseRange expands "a-b" inclusively, wrapping forward past Sunday.
func parseRange(part string) (WeekdaySet, error) {
	ends := strings.Split(part, "-")
	if len(ends) != 2 || ends[0] == "" || ends[1] == "" {
		return None, fmt.Errorf("%w: %q", ErrMalformedRange, part)
	}
	start, err := lookupDay(ends[0])
	if err != nil {
		return None, err
	}
	end, err := lookupDay(ends[1])
	if err != nil {
		return None, err
	}

	set := Of(start)
	for d := start; d != end; {
		d = (d + 1) % 7
		set = set.Add(d)
	}
	return set, nil
}

func lookupDay(token string) (time.Weekday, error) {
	d, ok := dayAliases[strings.TrimSpace(token)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDay, token)
	}
	return d, nil
}
