package utils

// Math.pow( x, 2 ) is slow, this is faster
func Square(n float64) float64 {
	return n * n
}
