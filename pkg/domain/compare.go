package domain

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CompareScalars orders two scalar components.
// Numbers (bool counts as 0/1) compare numerically, strings lexicographically,
// nested tuples element-wise. Across kinds: nil < numbers < strings < tuples.
func CompareScalars(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case 1:
		ai, aInt := a.(int64)
		bi, bInt := b.(int64)
		if aInt && bInt {
			return cmp.Compare(ai, bi)
		}
		af, _ := toFloat(a)
		bf, _ := toFloat(b)
		return cmp.Compare(af, bf)
	case 2:
		return strings.Compare(a.(string), b.(string))
	case 3:
		return CompareValues(a.(Value), b.(Value))
	}
	return 0
}

// Less reports whether a sorts before b under CompareScalars.
// Any comparison involving NaN is false, so NaN never displaces a running
// minimum or maximum and only wins when it comes first.
func Less(a, b any) bool {
	if isNaN(a) || isNaN(b) {
		return false
	}
	return CompareScalars(a, b) < 0
}

func isNaN(v any) bool {
	f, ok := v.(float64)
	return ok && math.IsNaN(f)
}

// CompareValues orders two values; tuples compare element-wise, shorter first on a tie.
func CompareValues(a, b Value) int {
	if !a.isTuple && !b.isTuple {
		return CompareScalars(a.scalar, b.scalar)
	}
	if a.isTuple != b.isTuple {
		if a.isTuple {
			return 1
		}
		return -1
	}
	for i := 0; i < len(a.tuple) && i < len(b.tuple); i++ {
		if c := CompareScalars(a.tuple[i], b.tuple[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a.tuple), len(b.tuple))
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool, int64, float64:
		return 1
	case string:
		return 2
	case Value:
		return 3
	}
	return 4
}

// ParseValue parses cell text such as "(1.0, 2.0, 3.0)", "[1, 2]", "4.5", "True"
// or "'abc'" back into a Value. Tuples are flat; commas inside quoted
// components do not split them.
func ParseValue(text string) (Value, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Value{}, fmt.Errorf("empty value")
	}
	if open, closing := s[0], s[len(s)-1]; (open == '(' && closing == ')') || (open == '[' && closing == ']') {
		body := strings.TrimSpace(s[1 : len(s)-1])
		if body == "" {
			return Tuple(), nil
		}
		parts := splitComponents(body)
		if strings.TrimSpace(parts[len(parts)-1]) == "" {
			parts = parts[:len(parts)-1]
		}
		components := make([]any, 0, len(parts))
		for _, p := range parts {
			c, err := parseScalar(strings.TrimSpace(p))
			if err != nil {
				return Value{}, err
			}
			components = append(components, c)
		}
		return Tuple(components...), nil
	}
	c, err := parseScalar(s)
	if err != nil {
		return Value{}, err
	}
	return Scalar(c), nil
}

// splitComponents splits a tuple body on commas outside quotes.
func splitComponents(body string) []string {
	var (
		parts []string
		quote byte
		start int
	)
	for i := 0; i < len(body); i++ {
		switch c := body[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ',':
			parts = append(parts, body[start:i])
			start = i + 1
		}
	}
	return append(parts, body[start:])
}

func parseScalar(s string) (any, error) {
	switch s {
	case "":
		return nil, fmt.Errorf("empty component")
	case "None":
		return nil, nil
	case "True", "true":
		return true, nil
	case "False", "false":
		return false, nil
	}
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1], nil
	}
	if strings.ContainsAny(s, "([") {
		return nil, fmt.Errorf("nested sequence %q not supported", s)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	return s, nil
}
