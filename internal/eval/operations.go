package eval

import (
	"fmt"
	"sort"
	"sync"

	"github.com/agbru/mpcalc/internal/mp"
)

// operands holds the parsed inputs of a request.
type operands struct {
	a, b, m mp.Int
	d       mp.Digit
	opts    mp.ExptOptions
}

// outcome collects what an operation produced.
type outcome struct {
	value    mp.Int
	rem      *mp.Int
	digit    *mp.Digit
	ordering *mp.Ordering
}

// Operation describes one engine entry point.
type Operation struct {
	// Name is the registry key (e.g. "exptmod").
	Name string
	// Args lists the big operands consumed, in order, using the request
	// field names "a", "b" and "m".
	Args string
	// UsesDigit reports whether the request field d is an input.
	UsesDigit bool
	// Help is a one-line description used by the REPL and completion.
	Help string

	run func(in *operands, out *outcome) error
}

// Registry maps operation names to their implementation. It is safe for
// concurrent use.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Operation
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Operation)}
}

// Register adds or replaces an operation.
func (r *Registry) Register(op Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op.Name] = op
}

// Get returns the named operation.
func (r *Registry) Get(name string) (Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[name]
	if !ok {
		return Operation{}, fmt.Errorf("unknown operation %q", name)
	}
	return op, nil
}

// List returns the registered operation names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry holding every built-in
// operation.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		for _, op := range builtins {
			defaultRegistry.Register(op)
		}
	})
	return defaultRegistry
}

func bitCount(d mp.Digit) int { return int(d) }

var builtins = []Operation{
	{Name: "neg", Args: "a", Help: "-a", run: func(in *operands, out *outcome) error {
		return out.value.Neg(&in.a)
	}},
	{Name: "abs", Args: "a", Help: "|a|", run: func(in *operands, out *outcome) error {
		return out.value.Abs(&in.a)
	}},
	{Name: "radix", Args: "a", Help: "a rendered in the output radix", run: func(in *operands, out *outcome) error {
		return out.value.Copy(&in.a)
	}},
	{Name: "sqr", Args: "a", Help: "a*a", run: func(in *operands, out *outcome) error {
		return out.value.Sqr(&in.a)
	}},
	{Name: "add", Args: "ab", Help: "a+b", run: func(in *operands, out *outcome) error {
		return out.value.Add(&in.a, &in.b)
	}},
	{Name: "sub", Args: "ab", Help: "a-b", run: func(in *operands, out *outcome) error {
		return out.value.Sub(&in.a, &in.b)
	}},
	{Name: "mul", Args: "ab", Help: "a*b", run: func(in *operands, out *outcome) error {
		return out.value.Mul(&in.a, &in.b)
	}},
	{Name: "div", Args: "ab", Help: "a/b truncated, with remainder", run: func(in *operands, out *outcome) error {
		out.rem = new(mp.Int)
		return mp.Div(&out.value, out.rem, &in.a, &in.b)
	}},
	{Name: "mod", Args: "ab", Help: "a mod b with the sign of b", run: func(in *operands, out *outcome) error {
		return out.value.Mod(&in.a, &in.b)
	}},
	{Name: "cmp", Args: "ab", Help: "signed comparison of a and b", run: func(in *operands, out *outcome) error {
		o := in.a.Cmp(&in.b)
		out.ordering = &o
		return nil
	}},
	{Name: "cmpmag", Args: "ab", Help: "comparison of |a| and |b|", run: func(in *operands, out *outcome) error {
		o := in.a.CmpMag(&in.b)
		out.ordering = &o
		return nil
	}},
	{Name: "gcd", Args: "ab", Help: "greatest common divisor", run: func(in *operands, out *outcome) error {
		return out.value.GCD(&in.a, &in.b)
	}},
	{Name: "lcm", Args: "ab", Help: "least common multiple", run: func(in *operands, out *outcome) error {
		return out.value.LCM(&in.a, &in.b)
	}},
	{Name: "invmod", Args: "ab", Help: "inverse of a modulo b", run: func(in *operands, out *outcome) error {
		return out.value.InvMod(&in.a, &in.b)
	}},
	{Name: "addmod", Args: "abm", Help: "(a+b) mod m", run: func(in *operands, out *outcome) error {
		return out.value.AddMod(&in.a, &in.b, &in.m)
	}},
	{Name: "submod", Args: "abm", Help: "(a-b) mod m", run: func(in *operands, out *outcome) error {
		return out.value.SubMod(&in.a, &in.b, &in.m)
	}},
	{Name: "mulmod", Args: "abm", Help: "(a*b) mod m", run: func(in *operands, out *outcome) error {
		return out.value.MulMod(&in.a, &in.b, &in.m)
	}},
	{Name: "sqrmod", Args: "am", Help: "(a*a) mod m", run: func(in *operands, out *outcome) error {
		return out.value.SqrMod(&in.a, &in.m)
	}},
	{Name: "exptmod", Args: "abm", Help: "a^b mod m", run: func(in *operands, out *outcome) error {
		return out.value.ExptModWith(&in.a, &in.b, &in.m, in.opts)
	}},
	{Name: "sqrt", Args: "a", Help: "floor(sqrt(a))", run: func(in *operands, out *outcome) error {
		return out.value.Sqrt(&in.a)
	}},
	{Name: "nroot", Args: "a", UsesDigit: true, Help: "d-th root of a truncated toward zero", run: func(in *operands, out *outcome) error {
		return out.value.NRoot(&in.a, in.d)
	}},
	{Name: "isprime", Args: "a", UsesDigit: true, Help: "1 when a is a probable prime after d extra rounds, else 0", run: func(in *operands, out *outcome) error {
		ok, err := mp.IsPrime(&in.a, int(in.d))
		if ok {
			out.value.Set(1)
		}
		return err
	}},
	{Name: "nextprime", Args: "a", UsesDigit: true, Help: "smallest probable prime above |a| (d extra rounds)", run: func(in *operands, out *outcome) error {
		return out.value.NextPrime(&in.a, int(in.d), false)
	}},
	{Name: "addd", Args: "a", UsesDigit: true, Help: "a+d", run: func(in *operands, out *outcome) error {
		return out.value.AddD(&in.a, in.d)
	}},
	{Name: "subd", Args: "a", UsesDigit: true, Help: "a-d", run: func(in *operands, out *outcome) error {
		return out.value.SubD(&in.a, in.d)
	}},
	{Name: "muld", Args: "a", UsesDigit: true, Help: "a*d", run: func(in *operands, out *outcome) error {
		return out.value.MulD(&in.a, in.d)
	}},
	{Name: "divd", Args: "a", UsesDigit: true, Help: "a/d truncated, with digit remainder", run: func(in *operands, out *outcome) error {
		r, err := mp.DivD(&out.value, &in.a, in.d)
		out.digit = &r
		return err
	}},
	{Name: "modd", Args: "a", UsesDigit: true, Help: "|a| mod d", run: func(in *operands, out *outcome) error {
		r, err := mp.ModD(&in.a, in.d)
		out.value.SetU32(uint32(r))
		return err
	}},
	{Name: "exptd", Args: "a", UsesDigit: true, Help: "a^d", run: func(in *operands, out *outcome) error {
		return out.value.ExptD(&in.a, in.d)
	}},
	{Name: "mul2d", Args: "a", UsesDigit: true, Help: "a*2^d", run: func(in *operands, out *outcome) error {
		return out.value.Mul2d(&in.a, bitCount(in.d))
	}},
	{Name: "div2d", Args: "a", UsesDigit: true, Help: "a/2^d truncated, with remainder", run: func(in *operands, out *outcome) error {
		out.rem = new(mp.Int)
		return mp.Div2d(&out.value, out.rem, &in.a, bitCount(in.d))
	}},
	{Name: "mod2d", Args: "a", UsesDigit: true, Help: "a mod 2^d with the sign of a", run: func(in *operands, out *outcome) error {
		return out.value.Mod2d(&in.a, bitCount(in.d))
	}},
}
