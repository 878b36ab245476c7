package mp

import "strings"

// radixDigits maps digit values to characters for radix 2..64. For radix 36
// and below, lowercase letters are accepted as well.
const radixDigits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz+/"

const (
	MinRadix = 2
	MaxRadix = 64
)

func radixValue(c byte, radix int) (Digit, bool) {
	if radix <= 36 && c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	i := strings.IndexByte(radixDigits[:radix], c)
	if i < 0 {
		return 0, false
	}
	return Digit(i), true
}

// ReadRadix sets z to the value of s in the given radix. A leading '-'
// marks a negative value. On failure z is unchanged.
func (z *Int) ReadRadix(s string, radix int) error {
	if radix < MinRadix || radix > MaxRadix {
		return newError(ErrVal, "read_radix")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if s == "" {
		return newError(ErrVal, "read_radix")
	}

	var t Int
	for i := 0; i < len(s); i++ {
		d, ok := radixValue(s[i], radix)
		if !ok {
			return newError(ErrVal, "read_radix")
		}
		if err := t.MulD(&t, Digit(radix)); err != nil {
			return relabel(err, "read_radix")
		}
		if err := t.AddD(&t, d); err != nil {
			return relabel(err, "read_radix")
		}
	}
	if neg && t.used > 0 {
		t.sign = NEG
	}
	z.Exch(&t)
	return nil
}

// ToRadix formats x in the given radix.
func (x *Int) ToRadix(radix int) (string, error) {
	if radix < MinRadix || radix > MaxRadix {
		return "", newError(ErrVal, "to_radix")
	}
	if x.used == 0 {
		return "0", nil
	}

	var t Int
	if err := t.Abs(x); err != nil {
		return "", relabel(err, "to_radix")
	}
	buf := make([]byte, 0, x.CountBits()+1)
	for t.used > 0 {
		d, err := DivD(&t, &t, Digit(radix))
		if err != nil {
			return "", relabel(err, "to_radix")
		}
		buf = append(buf, radixDigits[d])
	}
	if x.sign == NEG {
		buf = append(buf, '-')
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf), nil
}

// RadixSize returns the number of characters ToRadix produces, sign
// included.
func (x *Int) RadixSize(radix int) (int, error) {
	s, err := x.ToRadix(radix)
	if err != nil {
		return 0, relabel(err, "radix_size")
	}
	return len(s), nil
}

// String formats x in decimal.
func (x *Int) String() string {
	if x == nil {
		return "<nil>"
	}
	s, _ := x.ToRadix(10)
	return s
}

// SetString parses s in the given radix, accepting an optional "0x", "0b"
// or "0o" prefix when radix is 0.
func (z *Int) SetString(s string, radix int) error {
	if radix != 0 {
		return z.ReadRadix(s, radix)
	}
	neg := strings.HasPrefix(s, "-")
	body := strings.TrimPrefix(s, "-")
	radix = 10
	switch {
	case strings.HasPrefix(body, "0x"), strings.HasPrefix(body, "0X"):
		radix, body = 16, body[2:]
	case strings.HasPrefix(body, "0b"), strings.HasPrefix(body, "0B"):
		radix, body = 2, body[2:]
	case strings.HasPrefix(body, "0o"), strings.HasPrefix(body, "0O"):
		radix, body = 8, body[2:]
	}
	if neg {
		body = "-" + body
	}
	return z.ReadRadix(body, radix)
}

// MarshalText implements encoding.TextMarshaler using decimal.
func (x *Int) MarshalText() ([]byte, error) {
	s, err := x.ToRadix(10)
	return []byte(s), err
}

// UnmarshalText implements encoding.TextUnmarshaler, accepting the prefixes
// of SetString.
func (z *Int) UnmarshalText(b []byte) error {
	return z.SetString(string(b), 0)
}
