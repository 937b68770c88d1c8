// Package filter describes structured catalog constraints independently of the
// store that evaluates them. Redis renders an Expression as an FT.SEARCH
// pre-filter; the in-memory store evaluates it with Matches.
package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxConditionsPerGroup caps each boolean group.
const MaxConditionsPerGroup = 32

// TagSeparator joins multi-valued tag fields in stored hashes.
const TagSeparator = ","

// Expression combines conditions: every must holds, at least one should holds
// (when any are given) and no mustNot holds.
type Expression struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// NewExpression validates group sizes and builds an Expression.
func NewExpression(must, should, mustNot []Condition) (Expression, error) {
	groups := []struct {
		name  string
		conds []Condition
	}{{"must", must}, {"should", should}, {"must_not", mustNot}}
	for _, g := range groups {
		if len(g.conds) > MaxConditionsPerGroup {
			return Expression{}, fmt.Errorf("too many %s conditions (max %d)", g.name, MaxConditionsPerGroup)
		}
	}
	return Expression{must: must, should: should, mustNot: mustNot}, nil
}

// Must returns the conjunctive conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the disjunctive conditions.
func (e Expression) Should() []Condition { return e.should }

// MustNot returns the excluded conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression matches everything.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0 && len(e.mustNot) == 0
}

// Matches evaluates the expression against a flat field map as stored in a hash.
func (e Expression) Matches(fields map[string]string) bool {
	for _, c := range e.must {
		if !c.Matches(fields) {
			return false
		}
	}
	if len(e.should) > 0 {
		hit := false
		for _, c := range e.should {
			if c.Matches(fields) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	for _, c := range e.mustNot {
		if c.Matches(fields) {
			return false
		}
	}
	return true
}

// Condition is one clause on one field: a tag match or a numeric range.
type Condition struct {
	key       string
	match     string
	rangeExpr *Range
}

// NewMatch builds a tag equality condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, errors.New("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// NewRange builds a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, errors.New("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the tag value.
func (c Condition) Match() string { return c.match }

// Range returns the numeric bounds, nil for tag conditions.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a tag condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Matches evaluates the condition against a flat field map. Tag values are
// compared case-insensitively against each TagSeparator-delimited element.
func (c Condition) Matches(fields map[string]string) bool {
	raw, ok := fields[c.key]
	if !ok {
		return false
	}
	switch {
	case c.IsMatch():
		for _, v := range strings.Split(raw, TagSeparator) {
			if strings.EqualFold(strings.TrimSpace(v), c.match) {
				return true
			}
		}
		return false
	case c.IsRange():
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return false
		}
		return c.rangeExpr.Contains(f)
	}
	return false
}

// Range is a numeric interval; nil bounds are open.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and builds a Range. At least one bound is required;
// gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, errors.New("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, errors.New("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, errors.New("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// Between builds an inclusive [lo, hi] range; a nil side is open.
func Between(lo, hi *float64) (Range, error) {
	return NewRangeFilter(nil, lo, nil, hi)
}

// GT returns the exclusive lower bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the inclusive lower bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the exclusive upper bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the inclusive upper bound.
func (r Range) LTE() *float64 { return r.lte }

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	if r.gt != nil && v <= *r.gt {
		return false
	}
	if r.gte != nil && v < *r.gte {
		return false
	}
	if r.lt != nil && v >= *r.lt {
		return false
	}
	if r.lte != nil && v > *r.lte {
		return false
	}
	return true
}
