package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/quake-feed-search/internal/domain"
)

// Op is a comparison operator.
type Op string

const (
	OpEq Op = "="
	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
)

// Ops lists every supported operator. Two-character operators precede their
// one-character prefixes so parsing can match greedily in order.
var Ops = []Op{OpGe, OpLe, OpGt, OpLt, OpEq}

// Comparison is an operator applied against a fixed right-hand value.
type Comparison struct {
	Op    Op
	Value float64
}

// Apply reports whether v <op> c.Value holds.
func (c Comparison) Apply(v float64) bool {
	switch c.Op {
	case OpEq:
		return v == c.Value
	case OpLt:
		return v < c.Value
	case OpLe:
		return v <= c.Value
	case OpGt:
		return v > c.Value
	case OpGe:
		return v >= c.Value
	default:
		return false
	}
}

func (c Comparison) String() string {
	return string(c.Op) + strconv.FormatFloat(c.Value, 'f', -1, 64)
}

// ParseComparison parses "1.5", ">2", "<=3.0" and so on. A bare number means "=".
func ParseComparison(s string) (Comparison, error) {
	s = strings.TrimSpace(s)
	op, rest := splitOp(s)
	rest = strings.TrimSpace(rest)
	v, err := strconv.ParseFloat(rest, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Comparison{}, fmt.Errorf("%w: magnitude %q is not a number with an optional operator", ErrInvalidCriterion, s)
	}
	return Comparison{Op: op, Value: v}, nil
}

func splitOp(s string) (Op, string) {
	for _, op := range Ops {
		if strings.HasPrefix(s, string(op)) {
			return op, s[len(op):]
		}
	}
	return OpEq, s
}

// BucketTable maps a comparison token such as ">=1" to the buckets satisfying it.
type BucketTable map[string][]int

// GenerateBucketTable builds the token table for every integer in [lo, hi] and
// every operator. Each set is evaluated against every bucket in [lo, hi], so
// tokens whose set is empty (e.g. "<0") are still present.
func GenerateBucketTable(lo, hi int) BucketTable {
	table := make(BucketTable, (hi-lo+1)*len(Ops))
	for n := lo; n <= hi; n++ {
		for _, op := range Ops {
			cmp := Comparison{Op: op, Value: float64(n)}
			set := []int{}
			for b := lo; b <= hi; b++ {
				if cmp.Apply(float64(b)) {
					set = append(set, b)
				}
			}
			table[string(op)+strconv.Itoa(n)] = set
		}
	}
	return table
}

// Lookup resolves a token, treating a bare number as "=".
func (t BucketTable) Lookup(token string) ([]int, bool) {
	token = strings.ReplaceAll(strings.TrimSpace(token), " ", "")
	if token != "" && !strings.ContainsAny(token[:1], "<>=") {
		token = string(OpEq) + token
	}
	set, ok := t[token]
	return set, ok
}

// Buckets is the table for the domain's bucket range, built once at startup.
var Buckets = GenerateBucketTable(domain.MinBucket, domain.MaxBucket)
