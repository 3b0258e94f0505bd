package domain

import (
	"strconv"
	"strings"
)

// Path builds host attribute paths such as "out[3].values[2]".
type Path struct {
	b strings.Builder
}

// NewPath starts a path at a top-level attribute.
func NewPath(attr string) *Path {
	p := &Path{}
	p.b.WriteString(attr)
	return p
}

// Index appends a logical array index.
func (p *Path) Index(i int) *Path {
	p.b.WriteByte('[')
	p.b.WriteString(strconv.Itoa(i))
	p.b.WriteByte(']')
	return p
}

// Child appends a child attribute.
func (p *Path) Child(name string) *Path {
	p.b.WriteByte('.')
	p.b.WriteString(name)
	return p
}

func (p *Path) String() string {
	return p.b.String()
}

// PathSegment is one parsed step of an attribute path.
type PathSegment struct {
	Name    string
	Index   int
	Indexed bool
}

// ParsePath splits "out[3].values[2]" into segments.
func ParsePath(path string) ([]PathSegment, error) {
	if path == "" {
		return nil, &PathError{Path: path, Reason: "empty path"}
	}
	parts := strings.Split(path, ".")
	segments := make([]PathSegment, 0, len(parts))
	for _, part := range parts {
		seg := PathSegment{Name: part}
		if open := strings.IndexByte(part, '['); open >= 0 {
			if !strings.HasSuffix(part, "]") {
				return nil, &PathError{Path: path, Reason: "unterminated index"}
			}
			idx, err := strconv.Atoi(part[open+1 : len(part)-1])
			if err != nil || idx < 0 {
				return nil, &PathError{Path: path, Reason: "invalid index"}
			}
			seg.Name = part[:open]
			seg.Index = idx
			seg.Indexed = true
		}
		if seg.Name == "" {
			return nil, &PathError{Path: path, Reason: "empty attribute name"}
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// PathError reports a malformed attribute path.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return "invalid attribute path " + strconv.Quote(e.Path) + ": " + e.Reason
}
