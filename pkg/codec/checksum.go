package codec

// Sum16 returns the additive checksum used to protect the base record: every
// byte summed as an unsigned value and truncated to 16 bits.
func Sum16(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	return sum
}

// Sum32 returns the additive checksum used by generic blocks, truncated to 32 bits.
func Sum32(data []byte) uint32 {
	var sum uint32
	for _, b := range data {
		sum += uint32(b)
	}
	return sum
}
