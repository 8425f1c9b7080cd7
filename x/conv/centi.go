package conv

// Centi writes a value held in hundredths as a decimal with two fraction
// digits (2373 -> "23.73", -5 -> "-0.05") into buf and returns the used slice.
// buf should be length >= 24.
func Centi(buf []byte, n int64) []byte {
	if len(buf) < 4 {
		return buf[:0]
	}
	neg := n < 0
	var u uint64
	if neg {
		u = uint64(-n)
	} else {
		u = uint64(n)
	}
	i := len(buf)
	frac := u % 100
	i--
	buf[i] = byte('0' + frac%10)
	i--
	buf[i] = byte('0' + frac/10)
	i--
	buf[i] = '.'
	whole := Utoa(buf[:i], u/100)
	i -= len(whole)
	if neg && i > 0 {
		i--
		buf[i] = '-'
	}
	return buf[i:]
}
