package orchestration

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/agbru/mpcalc/internal/mp"
)

// Strategy computes g^x mod p in one particular way.
type Strategy interface {
	Name() string
	ExptMod(ctx context.Context, g, x, p *mp.Int) (*mp.Int, error)
}

// engineStrategy runs the engine with a fixed reduction.
type engineStrategy struct {
	reduction mp.Reduction
	window    int
}

// NewEngineStrategy returns the engine exponentiation with the given
// reduction and window width (0 for automatic).
func NewEngineStrategy(red mp.Reduction, window int) Strategy {
	return engineStrategy{reduction: red, window: window}
}

func (s engineStrategy) Name() string { return s.reduction.String() }

// Supports hides the restricted reductions from moduli they cannot handle.
// Every other reduction stays in a comparison and reports its own failures.
func (s engineStrategy) Supports(p *mp.Int) bool {
	switch s.reduction {
	case mp.ReductionDR, mp.Reduction2k:
		return s.reduction.Supports(p)
	}
	return true
}

func (s engineStrategy) ExptMod(ctx context.Context, g, x, p *mp.Int) (*mp.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var y mp.Int
	if err := y.ExptModWith(g, x, p, mp.ExptOptions{Reduction: s.reduction, WindowBits: s.window, Interrupt: ctx.Err}); err != nil {
		return nil, err
	}
	return &y, nil
}

// bigintStrategy is the math/big oracle.
type bigintStrategy struct{}

func (bigintStrategy) Name() string { return "bigint" }

func (bigintStrategy) ExptMod(ctx context.Context, g, x, p *mp.Int) (*mp.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Sign() == mp.NEG || p.IsZero() {
		return nil, mp.ErrValue
	}
	bg, bx, bp := ToBig(g), ToBig(x), ToBig(p)
	if bx.Sign() < 0 {
		if bg = new(big.Int).ModInverse(bg, bp); bg == nil {
			return nil, mp.ErrValue
		}
		bx.Neg(bx)
	}
	return FromBig(new(big.Int).Exp(bg, bx, bp))
}

// ToBig converts x to a math/big integer.
func ToBig(x *mp.Int) *big.Int {
	b := new(big.Int).SetBytes(x.ToUnsignedBin())
	if x.IsNeg() {
		b.Neg(b)
	}
	return b
}

// FromBig converts a math/big integer to an engine integer.
func FromBig(b *big.Int) (*mp.Int, error) {
	z := mp.New()
	if err := z.ReadUnsignedBin(b.Bytes()); err != nil {
		return nil, err
	}
	if b.Sign() < 0 {
		if err := z.Neg(z); err != nil {
			return nil, err
		}
	}
	return z, nil
}

// optionalStrategies holds constructors registered by build-tagged files.
var optionalStrategies []func() Strategy

// StrategyRegistry is a thread-safe set of strategies keyed by name.
type StrategyRegistry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewStrategyRegistry creates an empty registry.
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{strategies: make(map[string]Strategy)}
}

// Register adds or replaces a strategy.
func (r *StrategyRegistry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[s.Name()] = s
}

// Get returns the strategy with the given name.
func (r *StrategyRegistry) Get(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
	return s, nil
}

// List returns the registered names in sorted order.
func (r *StrategyRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultStrategies returns a registry holding every engine reduction with
// the given window width, the math/big oracle and, when built with the gmp
// tag, the GMP oracle.
func DefaultStrategies(window int) *StrategyRegistry {
	r := NewStrategyRegistry()
	for _, name := range mp.ReductionNames() {
		red, _ := mp.ParseReduction(name)
		r.Register(NewEngineStrategy(red, window))
	}
	r.Register(bigintStrategy{})
	for _, ctor := range optionalStrategies {
		r.Register(ctor())
	}
	return r
}

// ForModulus keeps the strategies able to reduce modulo p. A strategy
// without a Supports(*mp.Int) bool method is always kept.
func ForModulus(strategies []Strategy, p *mp.Int) []Strategy {
	kept := make([]Strategy, 0, len(strategies))
	for _, s := range strategies {
		if sup, ok := s.(interface{ Supports(*mp.Int) bool }); ok && !sup.Supports(p) {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

// GetStrategiesToRun resolves the strategies of a run: every registered one
// when all is set, otherwise only the named one. Names are returned in sorted
// order for reproducible output.
func GetStrategiesToRun(all bool, name string, registry *StrategyRegistry) []Strategy {
	if all {
		keys := registry.List()
		strategies := make([]Strategy, 0, len(keys))
		for _, k := range keys {
			if s, err := registry.Get(k); err == nil {
				strategies = append(strategies, s)
			}
		}
		return strategies
	}
	if s, err := registry.Get(name); err == nil {
		return []Strategy{s}
	}
	return nil
}
