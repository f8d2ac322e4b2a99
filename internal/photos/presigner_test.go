package photos

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/GTDGit/opsdash/internal/config"
)

func testClient() *s3.Client {
	return s3.New(s3.Options{
		Region: "sa-east-1",
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret"}, nil
		}),
	})
}

func TestS3PresignerSignsKeys(t *testing.T) {
	p := newS3Presigner(testClient(), "service-photos", 10*time.Minute)

	raw, err := p.URL(context.Background(), "/orders/42/before.jpg")
	if err != nil {
		t.Fatalf("URL() error: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	if !strings.Contains(u.Host+u.Path, "service-photos") || !strings.HasSuffix(u.Path, "/orders/42/before.jpg") {
		t.Errorf("unexpected presigned url %q", raw)
	}
	q := u.Query()
	if q.Get("X-Amz-Signature") == "" {
		t.Error("missing signature")
	}
	if q.Get("X-Amz-Expires") != "600" {
		t.Errorf("X-Amz-Expires = %q, want 600", q.Get("X-Amz-Expires"))
	}
}

func TestS3PresignerKeepsAbsoluteURLs(t *testing.T) {
	p := newS3Presigner(testClient(), "service-photos", 0)

	for _, ref := range []string{"https://cdn.example.com/a.jpg", "http://bot.local/b.jpg", ""} {
		got, err := p.URL(context.Background(), ref)
		if err != nil {
			t.Fatalf("URL(%q) error: %v", ref, err)
		}
		if got != ref {
			t.Errorf("URL(%q) = %q, want unchanged", ref, got)
		}
	}
}

func TestNewWithoutBucketPassesThrough(t *testing.T) {
	s, err := New(context.Background(), config.PhotosConfig{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, ok := s.(Passthrough); !ok {
		t.Fatalf("expected Passthrough, got %T", s)
	}
	got, _ := s.URL(context.Background(), "orders/1/a.jpg")
	if got != "orders/1/a.jpg" {
		t.Errorf("passthrough changed ref: %q", got)
	}
}
