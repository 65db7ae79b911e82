package utils

import "math"

// CreateRankList creates a slice of ranks based on position.
// The rank starts at 1 for the first item and increments for subsequent items.
// Ranks past math.MaxUint16 saturate so the tail of a long list shares the
// lowest rank.
func CreateRankList(count int) []uint16 {
	if count <= 0 {
		return []uint16{}
	}
	ranks := make([]uint16, count)
	for i := 0; i < count; i++ {
		if i+1 >= math.MaxUint16 {
			ranks[i] = math.MaxUint16
			continue
		}
		ranks[i] = uint16(i + 1)
	}
	return ranks
}
