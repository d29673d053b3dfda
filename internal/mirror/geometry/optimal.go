package geometry

// DisplayMargins is the total number of pixels kept free on each axis of the
// usable display area when sizing a window to fit it.
const DisplayMargins = 96

// PreferredBounds returns the usable display area shrunk by margins, never
// below zero.
func PreferredBounds(usable Size, margins int) Size {
	return Size{
		Width:  max(0, usable.Width-margins),
		Height: max(0, usable.Height-margins),
	}
}

// IsOptimal reports whether one dimension of window can be recomputed from the
// other using the content aspect ratio. Integer division is intentional: any
// tolerance-based comparison makes resizes oscillate.
func IsOptimal(window, content Size) bool {
	if content.IsEmpty() {
		return false
	}
	return window.Height == window.Width*content.Height/content.Width ||
		window.Width == window.Height*content.Width/content.Height
}

// keepWidth reports whether the area is taller than the content, in which case
// the width is kept and the height recomputed.
func keepWidth(area, content Size) bool {
	return int64(content.Width)*int64(area.Height) > int64(content.Height)*int64(area.Width)
}

// OptimalSize returns the size closest to current that has the content aspect
// ratio, removing black borders by keeping one dimension of current. A non-nil
// bounds clamps current first; nil means no clamp, either because it was not
// requested or because the display bounds are unknown.
func OptimalSize(current, content Size, bounds *Size) Size {
	if content.IsEmpty() {
		return current
	}

	window := current
	if bounds != nil {
		window.Width = min(current.Width, bounds.Width)
		window.Height = min(current.Height, bounds.Height)
	}

	if IsOptimal(window, content) {
		return window
	}

	if keepWidth(window, content) {
		// remove black borders on top and bottom
		window.Height = int(int64(content.Height) * int64(window.Width) / int64(content.Width))
	} else {
		// remove black borders on left and right (or none at all if it
		// already fits)
		window.Width = int(int64(content.Width) * int64(window.Height) / int64(content.Height))
	}
	return window
}

// InitialOptimalSize computes the first window size. Zero requested dimensions
// mean "not requested": with none requested the content size is fitted to
// bounds, otherwise requested dimensions are kept verbatim and a missing one is
// derived from the aspect ratio.
func InitialOptimalSize(content Size, reqWidth, reqHeight int, bounds *Size) Size {
	if reqWidth == 0 && reqHeight == 0 {
		return OptimalSize(content, content, bounds)
	}
	if content.IsEmpty() {
		return Size{Width: reqWidth, Height: reqHeight}
	}

	var window Size
	if reqWidth != 0 {
		window.Width = reqWidth
	} else {
		window.Width = int(int64(reqHeight) * int64(content.Width) / int64(content.Height))
	}
	if reqHeight != 0 {
		window.Height = reqHeight
	} else {
		window.Height = int(int64(reqWidth) * int64(content.Height) / int64(content.Width))
	}
	return window
}

// ContentRect returns the centered rectangle of output where content is drawn
// with its aspect ratio preserved.
func ContentRect(output, content Size) Rect {
	if content.IsEmpty() || IsOptimal(output, content) {
		return Rect{W: output.Width, H: output.Height}
	}

	if keepWidth(output, content) {
		h := int(int64(output.Width) * int64(content.Height) / int64(content.Width))
		return Rect{
			X: 0,
			Y: (output.Height - h) / 2,
			W: output.Width,
			H: h,
		}
	}

	w := int(int64(output.Height) * int64(content.Width) / int64(content.Height))
	return Rect{
		X: (output.Width - w) / 2,
		Y: 0,
		W: w,
		H: output.Height,
	}
}

// RenderTarget returns where an unrotated frame texture must be drawn, and how
// it must be rotated, so that it fills rect once o is applied.
func RenderTarget(rect Rect, o Orientation) (dst FRect, angle float64, flip bool) {
	if o.IsSwap() {
		dst = FRect{
			X: float32(rect.X) + float32(rect.W-rect.H)/2,
			Y: float32(rect.Y) + float32(rect.H-rect.W)/2,
			W: float32(rect.H),
			H: float32(rect.W),
		}
	} else {
		dst = FRect{
			X: float32(rect.X),
			Y: float32(rect.Y),
			W: float32(rect.W),
			H: float32(rect.H),
		}
	}
	return dst, float64(90 * o.Rotation()), o.IsMirror()
}
