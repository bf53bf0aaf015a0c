package imagecodec

// MED (Median Edge Detection) predictor, the LOCO-I spatial predictor.
// It selects min(a,b) or max(a,b) when the top-left neighbor suggests an
// edge, and the planar estimate a+b-c otherwise.

// Predict computes the MED prediction for the current pixel
// a = left pixel (West)
// b = top pixel (North)
// c = top-left pixel (North-West)
func Predict(a, b, c int) int {
	if c >= max(a, b) {
		return min(a, b)
	}
	if c <= min(a, b) {
		return max(a, b)
	}
	return a + b - c
}

// pixelAt returns the reconstructed pixel at (row, col), or 0 for
// positions outside the image. Causal scan order guarantees the pixel
// has been stored before it is referenced.
func pixelAt(pixels []byte, width, row, col int) int {
	if row < 0 || col < 0 {
		return 0
	}
	return int(pixels[row*width+col])
}

// neighbors gathers the three causal neighbors of (row, col)
func neighbors(pixels []byte, width, row, col int) (a, b, c int) {
	a = pixelAt(pixels, width, row, col-1)
	b = pixelAt(pixels, width, row-1, col)
	c = pixelAt(pixels, width, row-1, col-1)
	return a, b, c
}
