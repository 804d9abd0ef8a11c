package transport

import (
	"context"
)

// PublishClient is the single-repository write client.
type PublishClient interface {
	Put(ctx context.Context, repoURL, suffix string, payload []byte) (string, error)
}

// Outcome classifies a publish across all targets.
type Outcome int

const (
	// AllOk means every repository accepted the payload.
	AllOk Outcome = iota
	// PartialFailure means some repositories accepted it and some did not.
	PartialFailure
	// AllFailed means no repository accepted it.
	AllFailed
)

func (o Outcome) String() string {
	switch o {
	case AllOk:
		return "all ok"
	case PartialFailure:
		return "partial failure"
	}
	return "all failed"
}

// PublishResult aggregates per-repository publish outcomes. URLs holds the
// successful targets, Failures the failed ones with their reasons, so a
// caller can retry just the failed subset.
type PublishResult struct {
	URLs     []string
	Failures []Attempt
}

// Outcome classifies the result after every target was attempted.
func (r *PublishResult) Outcome() Outcome {
	switch {
	case len(r.Failures) == 0:
		return AllOk
	case len(r.URLs) == 0:
		return AllFailed
	}
	return PartialFailure
}

// Publisher replicates payloads to every configured repository.
type Publisher struct {
	client PublishClient
}

// NewPublisher creates a Publisher over a single-repository write client.
func NewPublisher(client PublishClient) *Publisher {
	return &Publisher{client: client}
}

// Publish PUTs payload to suffix on every repository. Unlike the fetch
// side there is no short-circuit: a failure on one target never prevents
// the attempt on the next, and results are classified only after every
// target was contacted.
func (p *Publisher) Publish(ctx context.Context, repos []string, suffix string, payload []byte) *PublishResult {
	result := &PublishResult{}
	for _, repoURL := range repos {
		url, err := p.client.Put(ctx, repoURL, suffix, payload)
		if err != nil {
			result.Failures = append(result.Failures, Attempt{Repo: repoURL, Err: err})
			continue
		}
		result.URLs = append(result.URLs, url)
	}
	return result
}
