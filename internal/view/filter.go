package view

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrInvalidQuery wraps every parse failure.
var ErrInvalidQuery = errors.New("invalid filter query")

type operator string

const (
	opEq  operator = "="
	opGt  operator = ">"
	opLt  operator = "<"
	opGte operator = ">="
	opLte operator = "<="
)

// reversed flips an operator; "updated:<2 weeks ago" reads as "more recent
// than two weeks ago".
func (o operator) reversed() operator {
	switch o {
	case opGt:
		return opLt
	case opLt:
		return opGt
	case opGte:
		return opLte
	case opLte:
		return opGte
	}
	return o
}

func (o operator) holds(c int) bool {
	switch o {
	case opGt:
		return c > 0
	case opLt:
		return c < 0
	case opGte:
		return c >= 0
	case opLte:
		return c <= 0
	}
	return c == 0
}

type dateField string

const (
	dateUpdated dateField = "updated"
	dateCreated dateField = "created"
	dateClosed  dateField = "closed_at"
)

// Query is a parsed filter. Terms are ANDed.
type Query struct {
	cards   []func(Card) bool
	columns []string
}

// Empty reports whether q matches everything.
func (q *Query) Empty() bool {
	return len(q.cards) == 0 && len(q.columns) == 0
}

var relativeDate = regexp.MustCompile(
	`(?i)\b(\w+):(>=|<=|>|<|=)?((?:\d+|an?|one)\s+(?:second|minute|min|hour|day|week|month|year)s?\s+ago)\b`)

var parser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseQuery parses query relative to now.
//
//	naked terms          match title or any label title
//	title:x label:x      substring, case-insensitive
//	number:>=5 items:<3  numeric comparison
//	closed:true public:false
//	column:todo          restrict the visible columns
//	updated:>2024-01-31 created:<"last week" closed_at:>=1 month ago
func ParseQuery(query string, now time.Time) (*Query, error) {
	// relative phrases contain spaces; quote them so they survive tokenizing
	query = relativeDate.ReplaceAllStringFunc(query, func(m string) string {
		sub := relativeDate.FindStringSubmatch(m)
		op := operator(sub[2])
		if op == "" {
			op = opEq
		}
		return fmt.Sprintf("%s:%s\"%s\"", sub[1], op.reversed(), sub[3])
	})

	tokens, err := tokenize(query)
	if err != nil {
		return nil, err
	}
	q := &Query{}
	for _, tok := range tokens {
		if err := q.add(tok, now); err != nil {
			return nil, err
		}
	}
	return q, nil
}

func (q *Query) add(tok string, now time.Time) error {
	field, value, ok := strings.Cut(tok, ":")
	if !ok {
		term := strings.ToLower(tok)
		q.cards = append(q.cards, func(c Card) bool {
			return containsFold(c.Title, term) || hasLabel(c, term)
		})
		return nil
	}
	if value == "" {
		return fmt.Errorf("%w: empty value for %q", ErrInvalidQuery, field)
	}

	switch strings.ToLower(field) {
	case "title":
		v := strings.ToLower(value)
		q.cards = append(q.cards, func(c Card) bool { return containsFold(c.Title, v) })
	case "label":
		v := strings.ToLower(value)
		q.cards = append(q.cards, func(c Card) bool { return hasLabel(c, v) })
	case "column":
		q.columns = append(q.columns, strings.ToLower(value))
	case "number":
		return q.addNumeric(value, func(c Card) int { return c.Number })
	case "items":
		return q.addNumeric(value, func(c Card) int { return c.Items })
	case "public":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: public: %v", ErrInvalidQuery, err)
		}
		q.cards = append(q.cards, func(c Card) bool { return c.Public == b })
	case "closed", "isclosed":
		if b, err := strconv.ParseBool(value); err == nil {
			q.cards = append(q.cards, func(c Card) bool { return c.Closed == b })
			return nil
		}
		return q.addDate(dateClosed, value, now)
	case "closed_at":
		return q.addDate(dateClosed, value, now)
	case "updated":
		return q.addDate(dateUpdated, value, now)
	case "created":
		return q.addDate(dateCreated, value, now)
	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, field)
	}
	return nil
}

func splitOperator(value string) (operator, string) {
	for _, op := range []operator{opGte, opLte, opGt, opLt, opEq} {
		if rest, ok := strings.CutPrefix(value, string(op)); ok {
			return op, rest
		}
	}
	return opEq, value
}

func (q *Query) addNumeric(value string, get func(Card) int) error {
	op, raw := splitOperator(value)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", ErrInvalidQuery, raw)
	}
	q.cards = append(q.cards, func(c Card) bool {
		return op.holds(cmp.Compare(get(c), n))
	})
	return nil
}

func (q *Query) addDate(field dateField, value string, now time.Time) error {
	op, raw := splitOperator(value)
	at, day, err := parseDate(raw, now)
	if err != nil {
		return err
	}
	q.cards = append(q.cards, func(c Card) bool {
		var t time.Time
		switch field {
		case dateUpdated:
			t = c.UpdatedAt
		case dateCreated:
			t = c.CreatedAt
		default:
			t = orZero(c.ClosedAt)
		}
		if day {
			// whole-day comparison for calendar dates
			y, m, d := t.In(at.Location()).Date()
			t = time.Date(y, m, d, 0, 0, 0, 0, at.Location())
		}
		return op.holds(t.Compare(at))
	})
	return nil
}

// parseDate accepts ISO dates, RFC 3339 timestamps, unix seconds and
// natural-language phrases. day is set for calendar dates.
func parseDate(raw string, now time.Time) (t time.Time, day bool, err error) {
	if d, err := time.ParseInLocation(time.DateOnly, raw, now.Location()); err == nil {
		return d, true, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, false, nil
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(secs, 0), false, nil
	}
	r, err := parser.Parse(raw, now)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: date %q: %v", ErrInvalidQuery, raw, err)
	}
	if r == nil {
		return time.Time{}, false, fmt.Errorf("%w: cannot read date %q", ErrInvalidQuery, raw)
	}
	return r.Time, false, nil
}

// tokenize splits on whitespace, keeping double-quoted runs together.
func tokenize(query string) ([]string, error) {
	var (
		tokens  []string
		cur     strings.Builder
		inQuote bool
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range query {
		switch {
		case r == '"':
			inQuote = !inQuote
		case !inQuote && (r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("%w: unterminated quote", ErrInvalidQuery)
	}
	flush()
	return tokens, nil
}

func (q *Query) matchCard(c Card) bool {
	for _, pred := range q.cards {
		if !pred(c) {
			return false
		}
	}
	return true
}

func (q *Query) matchColumn(c Column) bool {
	if len(q.columns) == 0 {
		return true
	}
	title := strings.ToLower(c.Title)
	for _, v := range q.columns {
		if strings.Contains(title, v) {
			return true
		}
	}
	return false
}

// Filter applies query to board. An empty query returns board unchanged;
// an invalid one returns every column with no cards.
func Filter(board Board, query string, now time.Time) Board {
	if strings.TrimSpace(query) == "" {
		return board
	}
	q, err := ParseQuery(query, now)
	if err != nil {
		out := Board{Columns: make([]Column, len(board.Columns))}
		for i, c := range board.Columns {
			out.Columns[i] = Column{Column: c.Column, Cards: []Card{}}
		}
		return out
	}
	return q.Apply(board)
}

// Apply keeps the matching columns and, within them, the matching cards.
func (q *Query) Apply(board Board) Board {
	out := Board{Columns: []Column{}}
	for _, c := range board.Columns {
		if !q.matchColumn(c) {
			continue
		}
		cards := []Card{}
		for _, card := range c.Cards {
			if q.matchCard(card) {
				cards = append(cards, card)
			}
		}
		out.Columns = append(out.Columns, Column{Column: c.Column, Cards: cards})
	}
	return out
}

func containsFold(s, lowerSub string) bool {
	return strings.Contains(strings.ToLower(s), lowerSub)
}

func hasLabel(c Card, lowerSub string) bool {
	for _, l := range c.Labels {
		if containsFold(l.Title, lowerSub) {
			return true
		}
	}
	return false
}
