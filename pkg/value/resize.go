package value

// RemapFunc converts a value of a column being resized into a value of the
// new width.
type RemapFunc func(old Value, newWidth int) Value

// Resize is the default RemapFunc. Conversions across the numeric/string
// boundary are lossy on purpose: numeric to string yields a blank string and
// string to numeric yields SYSMIS. String to string keeps the content,
// right-padding with spaces or truncating.
func Resize(old Value, newWidth int) Value {
	switch {
	case newWidth == 0:
		if old.width == 0 {
			return old
		}
		return SystemMissing()
	case old.width == 0:
		return Missing(newWidth)
	default:
		return String(old.s, newWidth)
	}
}
