// Package transport implements the asymmetric multi-repository transports:
// reads scan repositories and compatibility tiers until the first success,
// writes replicate to every configured repository and report per-target
// outcomes.
package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"

	vpm "github.com/vessel-lang/vpm"
)

// FetchClient is the single-repository client the fan-out drives.
type FetchClient interface {
	Fetch(ctx context.Context, repoURL, suffix, destDir string) (string, error)
}

// Attempt records one failed (repository, tier) try for diagnostics.
type Attempt struct {
	Repo string
	Tier vpm.Tier
	Err  error
}

func (a Attempt) String() string {
	return fmt.Sprintf("%s [%s]: %v", a.Repo, a.Tier, a.Err)
}

// NotFoundError is returned when every (tier, repository) combination was
// exhausted without a successful fetch. It carries every individual
// failure so a mirror outage is visible in the report.
type NotFoundError struct {
	Suffix   string
	Attempts []Attempt
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: not found on any repository (%d attempts)", e.Suffix, len(e.Attempts))
}

func (e *NotFoundError) Unwrap() error {
	return vpm.ErrNotFound
}

// Fetcher fans a fetch out across repositories and tiers. Repositories
// that keep failing trip a per-host circuit breaker and are skipped for
// the rest of the process.
type Fetcher struct {
	client   FetchClient
	breakers map[string]*circuit.Breaker
	mu       sync.Mutex
}

// NewFetcher creates a fan-out fetcher over a single-repository client.
func NewFetcher(client FetchClient) *Fetcher {
	return &Fetcher{
		client:   client,
		breakers: make(map[string]*circuit.Breaker),
	}
}

// getBreaker returns or creates the circuit breaker for a repository.
// Trips after 5 consecutive connection failures.
func (f *Fetcher) getBreaker(repoURL string) *circuit.Breaker {
	f.mu.Lock()
	defer f.mu.Unlock()

	if b, ok := f.breakers[repoURL]; ok {
		return b
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	b := circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	})
	f.breakers[repoURL] = b
	return b
}

// Fetch tries suffix(tier) on every repository, tiers outer and
// repositories inner, both in configured order. A NotFound or a
// ConnectionFailed on one repository moves the scan along; the first
// success short-circuits both loops. Exhaustion returns a *NotFoundError
// carrying every individual failure.
func (f *Fetcher) Fetch(ctx context.Context, repos []string, chain vpm.Chain, suffix func(vpm.Tier) string, destDir string) (string, error) {
	var attempts []Attempt

	for _, tier := range chain {
		sfx := suffix(tier)
		for _, repoURL := range repos {
			breaker := f.getBreaker(repoURL)
			if !breaker.Ready() {
				attempts = append(attempts, Attempt{
					Repo: repoURL,
					Tier: tier,
					Err:  fmt.Errorf("circuit open: %w", vpm.ErrConnectionFailed),
				})
				continue
			}

			var local string
			var fetchErr error
			err := breaker.Call(func() error {
				local, fetchErr = f.client.Fetch(ctx, repoURL, sfx, destDir)
				if errors.Is(fetchErr, vpm.ErrNotFound) {
					// A missing package is an answer, not a host
					// failure; it must not feed the breaker.
					return nil
				}
				return fetchErr
			}, 0)

			if err == nil && fetchErr == nil {
				return local, nil
			}
			if fetchErr == nil {
				fetchErr = err
			}
			attempts = append(attempts, Attempt{Repo: repoURL, Tier: tier, Err: fetchErr})
		}
	}

	var sfx string
	if len(chain) > 0 {
		sfx = suffix(chain[0])
	}
	return "", &NotFoundError{Suffix: sfx, Attempts: attempts}
}

// BreakerState reports the open/closed state per repository, for
// diagnostics output.
func (f *Fetcher) BreakerState() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	states := make(map[string]string)
	for repoURL, b := range f.breakers {
		if b.Tripped() {
			states[repoURL] = "open"
		} else {
			states[repoURL] = "closed"
		}
	}
	return states
}
