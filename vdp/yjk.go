package vdp

// yjkDecoder memoizes the YJK/YAE color math: four horizontal pixels
// share one (J, K) pair and each carries its own Y in its top 5 bits;
// decoding clips all three of R, G, B into 0..31. Results are memoized
// through the same derivedCache the other observer-invalidated lookups in
// this package use, bounded at 32768 entries.
type yjkDecoder struct {
	cache *derivedCache[int, [3]uint8]
}

func newYJKDecoder() *yjkDecoder {
	return &yjkDecoder{cache: newDerivedCache[int, [3]uint8](32768)}
}

func yjkKey(y, j, k int) int {
	return (y&0x1F)<<12 | (j&0x3F)<<6 | (k & 0x3F)
}

// signExtend6 interprets the low 6 bits of v as a two's-complement value in
// [-32, 31], the range J and K occupy in the packed YJK pixel format.
func signExtend6(v int) int {
	v &= 0x3F
	if v&0x20 != 0 {
		return v - 0x40
	}
	return v
}

func clip31(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 31 {
		return 31
	}
	return uint8(v)
}

// decode returns (r, g, b) each in 0..31:
//
//	r = clip<0,31>(Y + J)
//	g = clip<0,31>(Y + K)
//	b = clip<0,31>((5Y - 2J - K) / 4)
func (d *yjkDecoder) decode(y, jRaw, kRaw int) (r, g, b uint8) {
	j := signExtend6(jRaw)
	k := signExtend6(kRaw)
	key := yjkKey(y, jRaw, kRaw)
	if v, ok := d.cache.get(key); ok {
		return v[0], v[1], v[2]
	}
	r = clip31(y + j)
	g = clip31(y + k)
	b = clip31((5*y - 2*j - k) / 4)
	d.cache.put(key, [3]uint8{r, g, b})
	return
}

// to8 scales a 0..31 YJK channel to a full 0..255 RGB channel.
func to8(v uint8) uint8 { return uint8(int(v) * 255 / 31) }
