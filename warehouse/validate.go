package warehouse

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"road-warehouse/sheet"
)

// Rejection is the first failed check of a row. Rows with a rejection are
// left out of the load; the file itself is still committed.
type Rejection struct {
	Field   string
	Value   string
	Message string
	Err     error
}

func (r *Rejection) Error() string {
	if r.Message != "" {
		return fmt.Sprintf("%s %q: %s", r.Field, r.Value, r.Message)
	}
	return fmt.Sprintf("%s %q: %v", r.Field, r.Value, r.Err)
}

func (r *Rejection) Unwrap() error { return r.Err }

// checker resolves the foreign keys of one row in call order. Once a check
// fails every later call is a no-op returning 0, so the first failure is the
// one reported.
type checker struct {
	row sheet.Row
	err *Rejection
}

func check(r sheet.Row) *checker { return &checker{row: r} }

func (c *checker) failed() bool { return c.err != nil }

// Err returns the first rejection, or nil.
func (c *checker) Err() error {
	if c.err == nil {
		return nil
	}
	return c.err
}

func (c *checker) fail(field, value, msg string, err error) {
	c.err = &Rejection{Field: field, Value: value, Message: msg, Err: err}
}

// require fails when field is blank.
func (c *checker) require(fields ...string) {
	for _, f := range fields {
		if c.failed() {
			return
		}
		if strings.TrimSpace(c.row[f]) == "" {
			c.fail(f, "", "required value is empty", nil)
		}
	}
}

// key looks field's raw value up unchanged.
func (c *checker) key(field string, l *Lookup[string]) int {
	if c.failed() {
		return 0
	}
	v := c.row[field]
	id, err := l.Get(v)
	if err != nil {
		c.fail(field, v, "", err)
	}
	return id
}

// name looks field up by its folded label; blank values use fallback.
func (c *checker) name(field string, l *Lookup[string], fallback string) int {
	if c.failed() {
		return 0
	}
	v := strings.TrimSpace(c.row[field])
	if v == "" {
		v = fallback
	}
	id, err := l.Get(sheet.Fold(v))
	if err != nil {
		c.fail(field, v, "", err)
	}
	return id
}

// code looks field up as a numeric business code.
func (c *checker) code(field string, l *Lookup[int]) int {
	if c.failed() {
		return 0
	}
	v := c.row[field]
	id, err := l.Get(safeInt(v))
	if err != nil {
		c.fail(field, v, "", err)
	}
	return id
}

// optionalCode is code for fields that may be blank. ok is false when the
// field is blank or an earlier check failed.
func (c *checker) optionalCode(field string, l *Lookup[int]) (id int, ok bool) {
	if c.failed() || strings.TrimSpace(c.row[field]) == "" {
		return 0, false
	}
	id = c.code(field, l)
	return id, !c.failed()
}

// safeInt reads a code; anything non-numeric is 0, the "no data" code.
func safeInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
