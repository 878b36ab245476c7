// Package mp implements arbitrary-precision signed integers on top of a
// growable array of 28-bit digits.
//
// An Int stores its magnitude least-significant digit first together with a
// used-digit count and a sign flag. The zero value is a valid zero. Every
// exported operation leaves its result in canonical form: no leading zero
// digits beyond used, and zero is never negative.
//
// Operations follow the math/big convention of writing into the receiver:
//
//	var a, b mp.Int
//	a.SetI64(-5)
//	if err := b.AddD(&a, 1); err != nil { // b = -4
//		...
//	}
//
// The receiver may alias any operand. Failures are reported as *Error values
// carrying a Code; use errors.Is with ErrMemory, ErrValue, ErrBuffer or
// ErrOverflow, or CodeOf to recover the code.
//
// An Int must not be used from several goroutines at once without external
// locking; distinct Ints are independent.
package mp
