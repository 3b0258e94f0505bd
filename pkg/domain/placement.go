package domain

import "fmt"

// Placement positions a spatial marker (a locator) in world space.
// Exactly one of Translation or Matrix is meaningful, selected by Kind.
type Placement struct {
	Kind        MarkerKind  `json:"kind"`
	Translation [3]float64  `json:"translation,omitempty"`
	Matrix      [16]float64 `json:"matrix,omitempty"`
}

// PlacementFor interprets v according to kind: three numbers for a position,
// sixteen row-major numbers for a transform.
func PlacementFor(kind MarkerKind, v Value) (Placement, error) {
	nums, ok := v.Floats()
	if !ok || !v.IsTuple() {
		return Placement{}, fmt.Errorf("value %s is not a numeric tuple", v)
	}
	switch kind {
	case MarkerPosition:
		if len(nums) != 3 {
			return Placement{}, fmt.Errorf("position needs 3 numbers, got %d", len(nums))
		}
		p := Placement{Kind: MarkerPosition}
		copy(p.Translation[:], nums)
		return p, nil
	case MarkerTransform:
		if len(nums) != 16 {
			return Placement{}, fmt.Errorf("matrix needs 16 numbers, got %d", len(nums))
		}
		p := Placement{Kind: MarkerTransform}
		copy(p.Matrix[:], nums)
		return p, nil
	}
	return Placement{}, fmt.Errorf("no marker placement for kind %d", kind)
}
