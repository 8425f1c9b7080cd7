package conv

// Hex writes n as uppercase hex without 0x, zero-padded to digits (max 8).
func Hex(buf []byte, n uint32, digits int) []byte {
	if digits > 8 {
		digits = 8
	}
	if digits <= 0 || len(buf) < digits {
		return buf[:0]
	}
	const hexd = "0123456789ABCDEF"
	i := len(buf)
	for j := 0; j < digits; j++ {
		i--
		buf[i] = hexd[n&0xF]
		n >>= 4
	}
	return buf[i:]
}
