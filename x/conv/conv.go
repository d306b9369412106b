// Package conv formats integers into caller-owned buffers without fmt or strconv.
package conv

// Utoa writes n in base 10 at the tail of buf and returns that tail.
// A 20-byte buffer holds any uint64.
func Utoa(buf []byte, n uint64) []byte {
	i := len(buf)
	for i > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			return buf[i:]
		}
	}
	return buf[i:]
}

// Itoa is Utoa with a leading '-' for negative n. buf needs 20 bytes for any int64.
func Itoa(buf []byte, n int64) []byte {
	if n >= 0 {
		return Utoa(buf, uint64(n))
	}
	s := Utoa(buf[1:], uint64(-(n+1))+1)
	i := len(buf) - len(s) - 1
	buf[i] = '-'
	return buf[i:]
}
