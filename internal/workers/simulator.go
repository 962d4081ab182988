// Package workers holds the background job handlers that drive payments,
// refunds and webhook deliveries to their terminal states.
package workers

import (
	"math/rand"
	"time"

	"payment-gateway/internal/config"
	"payment-gateway/internal/models"
)

// Simulator decides processing delays and outcomes for simulated payment
// rails. Handlers depend on it so tests can pin both.
type Simulator interface {
	// PaymentDelay returns how long payment processing takes.
	PaymentDelay() time.Duration

	// RefundDelay returns how long refund processing takes.
	RefundDelay() time.Duration

	// PaymentOutcome reports whether a payment using method succeeds.
	PaymentOutcome(method models.PaymentMethod) bool
}

// RandomSimulator draws delays and outcomes from the configured ranges and
// success rates. In test mode delay and outcome are fixed by configuration.
type RandomSimulator struct {
	cfg *config.Config
	rng *rand.Rand
}

// NewRandomSimulator creates a simulator seeded from the current time
func NewRandomSimulator(cfg *config.Config) *RandomSimulator {
	return &RandomSimulator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *RandomSimulator) between(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(s.rng.Int63n(int64(max-min)))
}

func (s *RandomSimulator) PaymentDelay() time.Duration {
	if s.cfg.TestMode {
		return s.cfg.TestProcessingDelay
	}
	return s.between(s.cfg.ProcessingDelayMin, s.cfg.ProcessingDelayMax)
}

func (s *RandomSimulator) RefundDelay() time.Duration {
	if s.cfg.TestMode {
		return s.cfg.TestProcessingDelay
	}
	return s.between(s.cfg.RefundDelayMin, s.cfg.RefundDelayMax)
}

func (s *RandomSimulator) PaymentOutcome(method models.PaymentMethod) bool {
	if s.cfg.TestMode {
		return s.cfg.TestPaymentSuccess
	}
	rate := s.cfg.CardSuccessRate
	if method == models.MethodUPI {
		rate = s.cfg.UPISuccessRate
	}
	return s.rng.Float64() < rate
}

// FixedSimulator pins delay and outcome for tests
type FixedSimulator struct {
	Delay   time.Duration
	Succeed bool
}

func (s FixedSimulator) PaymentDelay() time.Duration { return s.Delay }
func (s FixedSimulator) RefundDelay() time.Duration  { return s.Delay }
func (s FixedSimulator) PaymentOutcome(models.PaymentMethod) bool {
	return s.Succeed
}
