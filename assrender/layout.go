package assrender

// horizontalOrigin returns the x cursor a line with the given pixel width
// starts at for alignment (spec.md §4.6 Layout): left for {1,4,7}, centered
// for {2,5,8}, right for {3,6,9}.
func horizontalOrigin(alignment int, width, viewportW float64) float64 {
	switch col := (alignment - 1) % 3; col {
	case 1:
		return (viewportW - width) / 2
	case 2:
		return viewportW - width
	default:
		return 0
	}
}

// verticalOrigin returns the y cursor a line with the given pixel height
// starts at: bottom for 1-3, middle for 4-6, top for 7-9.
func verticalOrigin(alignment int, height, viewportH float64) float64 {
	switch row := (alignment - 1) / 3; row {
	case 1:
		return (viewportH - height) / 2
	case 2:
		return 0
	default:
		return viewportH - height
	}
}

// cursorOrigin computes the (x, y) pixel origin of a line's baseline-area
// box, honoring an explicit \pos override (spec.md §4.6: "\pos(x,y)
// overrides both").
func cursorOrigin(st StyleState, lineW, lineH, viewportW, viewportH float64) (float64, float64) {
	if st.HasPos {
		return st.PosX, st.PosY
	}
	alignment := st.Alignment
	if alignment < 1 || alignment > 9 {
		alignment = 2
	}
	x := horizontalOrigin(alignment, lineW, viewportW)
	y := verticalOrigin(alignment, lineH, viewportH)
	return x, y
}
