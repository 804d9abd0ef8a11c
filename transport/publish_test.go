package transport

import (
	"context"
	"errors"
	"testing"
)

type fakePublishClient struct {
	fail  map[string]error
	calls []string
}

func (f *fakePublishClient) Put(ctx context.Context, repoURL, suffix string, payload []byte) (string, error) {
	f.calls = append(f.calls, repoURL)
	if err, ok := f.fail[repoURL]; ok {
		return "", err
	}
	return repoURL + "/" + suffix, nil
}

func TestPublishAllOk(t *testing.T) {
	client := &fakePublishClient{}
	p := NewPublisher(client)

	res := p.Publish(context.Background(), []string{"http://a", "http://b"}, "Generic/lib/x/1.0/x-1.0.tar.gz", []byte("p"))
	if res.Outcome() != AllOk {
		t.Fatalf("outcome = %v, want AllOk", res.Outcome())
	}
	if len(res.URLs) != 2 {
		t.Errorf("urls = %v, want 2", res.URLs)
	}
}

func TestPublishPartialFailure(t *testing.T) {
	client := &fakePublishClient{fail: map[string]error{
		"http://b": errors.New("disk full"),
	}}
	p := NewPublisher(client)

	res := p.Publish(context.Background(), []string{"http://a", "http://b", "http://c"}, "s", []byte("p"))
	if res.Outcome() != PartialFailure {
		t.Fatalf("outcome = %v, want PartialFailure", res.Outcome())
	}
	if len(res.URLs) != 2 || len(res.Failures) != 1 {
		t.Errorf("urls = %v, failures = %v", res.URLs, res.Failures)
	}
	if res.Failures[0].Repo != "http://b" {
		t.Errorf("failed repo = %q, want http://b", res.Failures[0].Repo)
	}
	// Every target was contacted despite the failure in the middle.
	if len(client.calls) != 3 {
		t.Errorf("calls = %v, want all 3 repos", client.calls)
	}
}

func TestPublishAllFailed(t *testing.T) {
	client := &fakePublishClient{fail: map[string]error{
		"http://a": errors.New("403"),
		"http://b": errors.New("unreachable"),
	}}
	p := NewPublisher(client)

	res := p.Publish(context.Background(), []string{"http://a", "http://b"}, "s", []byte("p"))
	if res.Outcome() != AllFailed {
		t.Fatalf("outcome = %v, want AllFailed", res.Outcome())
	}
	if len(res.Failures) != 2 {
		t.Errorf("failures = %v, want 2", res.Failures)
	}
	if len(client.calls) != 2 {
		t.Errorf("calls = %v, want both repos contacted", client.calls)
	}
}
