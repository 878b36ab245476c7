package mp

import "github.com/vmihailenco/msgpack/v5"

var (
	_ msgpack.CustomEncoder = (*Int)(nil)
	_ msgpack.CustomDecoder = (*Int)(nil)
)

// EncodeMsgpack writes x as a msgpack bin value holding MarshalBinary output.
func (x *Int) EncodeMsgpack(enc *msgpack.Encoder) error {
	b, err := x.MarshalBinary()
	if err != nil {
		return err
	}
	return enc.EncodeBytes(b)
}

// DecodeMsgpack reads a value written by EncodeMsgpack.
func (z *Int) DecodeMsgpack(dec *msgpack.Decoder) error {
	b, err := dec.DecodeBytes()
	if err != nil {
		return err
	}
	return z.UnmarshalBinary(b)
}
