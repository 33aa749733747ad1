package pools

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

const (
	opAcquire = iota
	opRelease
	opReduce
)

// churn drives p with ops while honouring the release contract and reports
// whether every reservoir invariant held after each step.
func churn(p *Pool[*item], tr *tracker, ops []int) bool {
	var held []*item
	checkedOut := make(map[*item]bool)

	for _, op := range ops {
		switch op {
		case opAcquire:
			it := p.Acquire()
			if checkedOut[it] {
				return false // handed out twice
			}
			for _, d := range tr.destroyed {
				if d == it {
					return false // destroyed item resurrected
				}
			}
			checkedOut[it] = true
			held = append(held, it)
		case opRelease:
			if len(held) == 0 {
				continue
			}
			it := held[len(held)-1]
			held = held[:len(held)-1]
			delete(checkedOut, it)
			p.Release(it)
		case opReduce:
			p.Reduce()
		}

		if p.Available() < 0 || p.Available() > p.Len() {
			return false
		}
		// every item ever created is available, checked out or destroyed
		if tr.created-len(tr.destroyed) != p.Available()+len(held) {
			return false
		}
		s := p.Stats()
		if int(s.Created) != tr.created || int(s.Destroyed) != len(tr.destroyed) {
			return false
		}
	}
	return true
}

func TestPoolInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	opsGen := gen.SliceOf(gen.IntRange(opAcquire, opReduce))

	properties.Property("cursor, accounting and identity hold under churn", prop.ForAll(
		func(initCount, growthCount int, ops []int) bool {
			tr := &tracker{}
			p, err := New(tr.create, tr.destroy, initCount, growthCount)
			if err != nil {
				return false
			}
			return churn(p, tr, ops)
		},
		gen.IntRange(0, 20),
		gen.IntRange(1, 8),
		opsGen,
	))

	properties.Property("teardown destroys exactly the physical reservoir", prop.ForAll(
		func(initCount, growthCount int, ops []int) bool {
			tr := &tracker{}
			p, err := New(tr.create, tr.destroy, initCount, growthCount)
			if err != nil {
				return false
			}
			if !churn(p, tr, ops) {
				return false
			}

			before := len(tr.destroyed)
			slots := p.Len()
			p.Teardown()
			return len(tr.destroyed)-before == slots
		},
		gen.IntRange(0, 20),
		gen.IntRange(1, 8),
		opsGen,
	))

	properties.Property("acquire after release returns the released item", prop.ForAll(
		func(initCount, growthCount, warmup int) bool {
			tr := &tracker{}
			p, err := New(tr.create, tr.destroy, initCount, growthCount)
			if err != nil {
				return false
			}
			for i := 0; i < warmup; i++ {
				p.Acquire()
			}

			it := p.Acquire()
			created := tr.created
			p.Release(it)
			return p.Acquire() == it && tr.created == created
		},
		gen.IntRange(0, 20),
		gen.IntRange(1, 8),
		gen.IntRange(0, 40),
	))

	properties.Property("growth creates exactly one batch per exhaustion", prop.ForAll(
		func(initCount, growthCount, acquires int) bool {
			tr := &tracker{}
			p, err := New(tr.create, tr.destroy, initCount, growthCount)
			if err != nil {
				return false
			}
			for i := 0; i < acquires; i++ {
				p.Acquire()
			}

			want := initCount
			if acquires > initCount {
				batches := (acquires - initCount + growthCount - 1) / growthCount
				want += batches * growthCount
			}
			return tr.created == want
		},
		gen.IntRange(0, 20),
		gen.IntRange(1, 8),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
