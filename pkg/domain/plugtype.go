package domain

import "sort"

// PlugType enumerates the attribute type tags a Bifrost graph reports for its ports.
// Dispatch on declared types goes through this table instead of string comparisons.
type PlugType uint8

const (
	PlugTypeUnknown PlugType = iota
	PlugTypeChar
	PlugTypeShort
	PlugTypeShort2
	PlugTypeShort3
	PlugTypeLong
	PlugTypeLong2
	PlugTypeLong3
	PlugTypeInt64
	PlugTypeFloat
	PlugTypeFloat2
	PlugTypeFloat3
	PlugTypeDouble
	PlugTypeDouble2
	PlugTypeDouble3
	PlugTypeBool
	PlugTypeMatrix
	PlugTypeString
	PlugTypeDataCompound
	PlugTypeBifData
)

// Category groups plug types for display.
type Category uint8

const (
	CategoryNone Category = iota
	CategoryInt
	CategoryFloat
	CategoryVector
	CategoryBool
	CategoryMatrix
	CategoryString
)

// MarkerKind describes how values of a plug type turn into marker placements.
type MarkerKind uint8

const (
	MarkerNone MarkerKind = iota
	MarkerPosition
	MarkerTransform
)

type plugTypeInfo struct {
	tag      string
	wrapped  bool // host returns a one-element wrapper around the tuple
	marker   MarkerKind
	category Category
	opaque   bool
}

var plugTypes = map[PlugType]plugTypeInfo{
	PlugTypeChar:         {tag: "char", category: CategoryInt},
	PlugTypeShort:        {tag: "short", category: CategoryInt},
	PlugTypeShort2:       {tag: "short2", wrapped: true, category: CategoryVector},
	PlugTypeShort3:       {tag: "short3", wrapped: true, marker: MarkerPosition, category: CategoryVector},
	PlugTypeLong:         {tag: "long", category: CategoryInt},
	PlugTypeLong2:        {tag: "long2", wrapped: true, category: CategoryVector},
	PlugTypeLong3:        {tag: "long3", wrapped: true, marker: MarkerPosition, category: CategoryVector},
	PlugTypeInt64:        {tag: "long long int", category: CategoryInt},
	PlugTypeFloat:        {tag: "float", category: CategoryFloat},
	PlugTypeFloat2:       {tag: "float2", wrapped: true, category: CategoryVector},
	PlugTypeFloat3:       {tag: "float3", wrapped: true, marker: MarkerPosition, category: CategoryVector},
	PlugTypeDouble:       {tag: "double", category: CategoryFloat},
	PlugTypeDouble2:      {tag: "double2", wrapped: true, category: CategoryVector},
	PlugTypeDouble3:      {tag: "double3", wrapped: true, marker: MarkerPosition, category: CategoryVector},
	PlugTypeBool:         {tag: "bool", category: CategoryBool},
	PlugTypeMatrix:       {tag: "matrix", marker: MarkerTransform, category: CategoryMatrix},
	PlugTypeString:       {tag: "string", category: CategoryString},
	PlugTypeDataCompound: {tag: "TdataCompound", wrapped: true, category: CategoryVector},
	PlugTypeBifData:      {tag: "bifData", opaque: true},
}

var plugTypesByTag = func() map[string]PlugType {
	m := make(map[string]PlugType, len(plugTypes))
	for pt, info := range plugTypes {
		m[info.tag] = pt
	}
	return m
}()

var categoryColors = map[Category]string{
	CategoryInt:    "#62cfd9",
	CategoryFloat:  "#82d99f",
	CategoryVector: "#a8d977",
	CategoryBool:   "#e69963",
	CategoryMatrix: "#de756e",
	CategoryString: "#d9be6c",
}

// ParsePlugType maps a host type tag to its PlugType.
// Unrecognized tags return PlugTypeUnknown.
func ParsePlugType(tag string) PlugType {
	return plugTypesByTag[tag]
}

// String returns the host type tag.
func (p PlugType) String() string {
	if info, ok := plugTypes[p]; ok {
		return info.tag
	}
	return "unknown"
}

// Wrapped reports whether the host wraps values of this type in a one-element container.
func (p PlugType) Wrapped() bool { return plugTypes[p].wrapped }

// Opaque reports whether this is the internal payload type hidden from users.
func (p PlugType) Opaque() bool { return plugTypes[p].opaque }

// Marker returns how values of this type become marker placements.
func (p PlugType) Marker() MarkerKind { return plugTypes[p].marker }

// Category returns the display category.
func (p PlugType) Category() Category { return plugTypes[p].category }

// Color returns the hex display colour of the type's category, or "" when it has none.
func (p PlugType) Color() string { return categoryColors[p.Category()] }

// MarkerPlugTypes returns the type tags markers can be created from, sorted.
func MarkerPlugTypes() []string {
	var tags []string
	for _, info := range plugTypes {
		if info.marker != MarkerNone {
			tags = append(tags, info.tag)
		}
	}
	sort.Strings(tags)
	return tags
}
