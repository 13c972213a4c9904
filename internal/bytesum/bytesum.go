// Package bytesum implements the byte-sum checksums used by NCOM records.
package bytesum

// Unsigned returns the sum of data with each byte read as 0..255, truncated
// to 8 bits after every addition.
//
// This is the checksum carried at offsets 22, 61 and 71 of an NCOM record.
func Unsigned(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// Signed returns the sum of data with each byte read as a signed value in
// [-128, 127]. A same-sign overflow wraps using two's-complement rules.
//
// No NCOM field carries this value; it exists for tools that compare against
// the signed sums some OxTS utilities print.
func Signed(data []byte) int8 {
	var sum int
	for _, b := range data {
		x := int(int8(b))
		switch {
		case x > 0 && sum > 0:
			sum += x
			if sum > 0x7F {
				sum = (sum & 0x7F) - 0x80
			}
		case x < 0 && sum < 0:
			sum += x
			if sum < -0x80 {
				sum &= 0x7F
			}
		default:
			// Opposite signs cannot overflow.
			sum += x
		}
	}
	return int8(sum)
}
