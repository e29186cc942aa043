package payment

import (
	"math/rand"
	"sync"

	"github.com/sirupsen/logrus"
)

// Gateway is the external settlement collaborator. The engine treats it as an
// opaque gate: a declined charge must never corrupt reservation state, and
// refund outcomes are fire-and-forget.
type Gateway interface {
	// Charge attempts to settle the amount and reports success.
	Charge(amount float64) bool

	// Refund returns the amount to the payer. Outcome is not observed.
	Refund(amount float64)
}

// Simulator is a settlement simulator with a configurable success rate,
// defaulting to the legacy gateway's 80%.
type Simulator struct {
	mu          sync.Mutex
	successRate float64
	rng         *rand.Rand
	logger      *logrus.Logger
}

// NewSimulator creates a simulator charging successfully with probability
// successRate. A non-zero seed makes outcomes reproducible.
func NewSimulator(successRate float64, seed int64, logger *logrus.Logger) *Simulator {
	if successRate < 0 {
		successRate = 0
	}
	if successRate > 1 {
		successRate = 1
	}
	src := rand.NewSource(seed)
	if seed == 0 {
		src = rand.NewSource(rand.Int63())
	}
	return &Simulator{
		successRate: successRate,
		rng:         rand.New(src),
		logger:      logger,
	}
}

// Charge simulates settling the amount.
func (s *Simulator) Charge(amount float64) bool {
	s.mu.Lock()
	ok := s.rng.Float64() < s.successRate
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"amount":  amount,
		"settled": ok,
	}).Debug("payment charge attempted")
	return ok
}

// Refund simulates returning the amount.
func (s *Simulator) Refund(amount float64) {
	s.logger.WithField("amount", amount).Debug("payment refund processed")
}
