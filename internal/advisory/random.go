package advisory

import (
	"context"
	"math/rand/v2"
	"sync"
)

const DefaultRandomChance = 0.3

// Random ignores the conditions and suggests a random plan with a fixed chance.
type Random struct {
	mu     sync.Mutex
	rng    *rand.Rand
	chance float64
}

// NewRandom takes the random source so callers (tests mostly) can seed it.
func NewRandom(rng *rand.Rand, chance float64) *Random {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Random{
		rng:    rng,
		chance: chance,
	}
}

func (r *Random) SuggestBackupPlan(_ context.Context, _ Conditions) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rng.Float64() >= r.chance {
		return "", nil
	}
	return BackupPlans[r.rng.IntN(len(BackupPlans))], nil
}
