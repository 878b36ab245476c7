package mp

// UnsignedBinSize returns the byte length of the big-endian magnitude.
func (x *Int) UnsignedBinSize() int {
	return (x.CountBits() + 7) / 8
}

// ToUnsignedBin returns |x| as big-endian bytes. Zero encodes as no bytes.
func (x *Int) ToUnsignedBin() []byte {
	buf := make([]byte, x.UnsignedBinSize())
	_, _ = x.ToUnsignedBinInto(buf)
	return buf
}

// ToUnsignedBinInto writes |x| big-endian into the front of buf and returns
// the byte count, failing with ErrBuf when buf is too short.
func (x *Int) ToUnsignedBinInto(buf []byte) (int, error) {
	n := x.UnsignedBinSize()
	if len(buf) < n {
		return 0, newError(ErrBuf, "to_ubin")
	}
	var acc uint64
	var have uint
	di := 0
	for i := n - 1; i >= 0; i-- {
		for have < 8 && di < x.used {
			acc |= uint64(x.dp[di]) << have
			have += DigitBit
			di++
		}
		buf[i] = byte(acc)
		acc >>= 8
		if have >= 8 {
			have -= 8
		} else {
			have = 0
		}
	}
	return n, nil
}

// ReadUnsignedBin sets z to the non-negative big-endian value in b.
func (z *Int) ReadUnsignedBin(b []byte) error {
	var t Int
	if err := t.Grow((len(b)*8+DigitBit-1)/DigitBit + 1); err != nil {
		return relabel(err, "read_ubin")
	}
	var acc uint64
	var have uint
	di := 0
	for i := len(b) - 1; i >= 0; i-- {
		acc |= uint64(b[i]) << have
		have += 8
		if have >= DigitBit {
			t.dp[di] = Digit(acc) & Mask
			acc >>= DigitBit
			have -= DigitBit
			di++
		}
	}
	if have > 0 {
		t.dp[di] = Digit(acc) & Mask
		di++
	}
	t.used = di
	t.clamp()
	z.Exch(&t)
	return nil
}

// MarshalBinary encodes x as one sign byte (0 or 1) followed by the
// big-endian magnitude.
func (x *Int) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 1+x.UnsignedBinSize())
	if x.sign == NEG {
		buf[0] = 1
	}
	if _, err := x.ToUnsignedBinInto(buf[1:]); err != nil {
		return nil, relabel(err, "marshal")
	}
	return buf, nil
}

// UnmarshalBinary decodes the MarshalBinary format.
func (z *Int) UnmarshalBinary(b []byte) error {
	if len(b) == 0 || b[0] > 1 {
		return newError(ErrVal, "unmarshal")
	}
	var t Int
	if err := t.ReadUnsignedBin(b[1:]); err != nil {
		return relabel(err, "unmarshal")
	}
	if b[0] == 1 && t.used > 0 {
		t.sign = NEG
	}
	z.Exch(&t)
	return nil
}
