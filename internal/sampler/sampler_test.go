package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterminism(t *testing.T) {
	ranges := []Range{{0, 1}, {-10, 10}, {100, 100.5}, {-3.2, -1}}

	for _, seed := range []uint64{0, 1, DefaultSeed, 1 << 40} {
		a, b := NewUniform(seed), NewUniform(seed)
		for i := 0; i < 500; i++ {
			r := ranges[i%len(ranges)]
			assert.Equal(t, a.Draw(r), b.Draw(r))
		}
	}
}

func TestReseedRepeats(t *testing.T) {
	u := NewUniform(7)
	first := make([]float64, 20)
	for i := range first {
		first[i] = u.Draw(Range{0, 1})
	}

	u.Seed(7)
	for i := range first {
		assert.Equal(t, first[i], u.Draw(Range{0, 1}))
	}
}

func TestSeedsDiffer(t *testing.T) {
	a, b := NewUniform(1), NewUniform(2)
	same := true
	for i := 0; i < 10; i++ {
		if a.Draw(Range{0, 1}) != b.Draw(Range{0, 1}) {
			same = false
		}
	}
	assert.False(t, same)
}

func TestDrawInRange(t *testing.T) {
	u := NewUniform(DefaultSeed)
	r := Range{-2.5, 4}
	for i := 0; i < 10000; i++ {
		v := u.Draw(r)
		assert.GreaterOrEqual(t, v, r.Low)
		assert.Less(t, v, r.High)
	}

	assert.Equal(t, 3.0, u.Draw(Range{3, 3}))
}
