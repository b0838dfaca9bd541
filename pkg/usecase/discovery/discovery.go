package discovery

import (
	"math/rand/v2"
	"time"

	"github.com/m-mizutani/whisker/pkg/adapter"
)

// UseCase loads the breed catalog and picks breeds to display
type UseCase struct {
	api  adapter.CatAPI
	intN func(n int) int
	now  func() time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithIntN sets the random source used to pick a breed. intN(n) must return
// a value in [0, n).
func WithIntN(intN func(n int) int) Option {
	return func(uc *UseCase) {
		uc.intN = intN
	}
}

// WithClock sets the clock used for the capture timestamp
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// New creates a new discovery UseCase instance
func New(api adapter.CatAPI, opts ...Option) *UseCase {
	uc := &UseCase{
		api:  api,
		intN: rand.IntN,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
