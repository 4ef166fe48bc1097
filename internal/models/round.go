package models

import "math"

// Round2 rounds x to two decimals. Results that round to zero are returned
// as positive zero.
func Round2(x float64) float64 {
	r := math.Round(x*100) / 100
	if r == 0 {
		return 0
	}
	return r
}
