package encoding

// FitRow fits an index sequence to exactly width entries: sequences of at
// least width keep their first width values (truncate from the end), shorter
// ones are left-padded with the padding value. The input is never modified.
func FitRow(indices []int64, width int) []int64 {
	row := make([]int64, width)
	if len(indices) >= width {
		copy(row, indices[:width])
		return row
	}
	// Pad at the front: real values occupy the tail of the row. The leading
	// positions stay at the zero value, which is padValue.
	copy(row[width-len(indices):], indices)
	return row
}
