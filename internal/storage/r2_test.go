package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/guuukimama/shop-manager/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if in.Body != nil {
		b, _ := io.ReadAll(in.Body)
		f.body = string(b)
	}
	return &s3.PutObjectOutput{}, f.err
}

func TestUpload(t *testing.T) {
	fake := &fakePutter{}
	r2 := newR2Client(fake, "reports", "https://cdn.example.com/")

	url, err := r2.Upload(context.Background(), "reports/2024-06-01.xlsx", strings.NewReader("data"), "application/xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://cdn.example.com/reports/2024-06-01.xlsx" {
		t.Fatalf("unexpected url %q", url)
	}
	if aws.ToString(fake.in.Bucket) != "reports" || aws.ToString(fake.in.ContentType) != "application/xlsx" {
		t.Fatalf("unexpected input %+v", fake.in)
	}
	if fake.body != "data" {
		t.Fatalf("unexpected body %q", fake.body)
	}
}

func TestUpload_NoBaseURL(t *testing.T) {
	r2 := newR2Client(&fakePutter{}, "reports", "")

	url, err := r2.Upload(context.Background(), "k.xlsx", strings.NewReader(""), "")
	if err != nil || url != "k.xlsx" {
		t.Fatalf("got (%q, %v)", url, err)
	}
}

func TestUpload_Error(t *testing.T) {
	r2 := newR2Client(&fakePutter{err: errors.New("denied")}, "reports", "")

	if _, err := r2.Upload(context.Background(), "k", strings.NewReader(""), ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewR2Client_NotConfigured(t *testing.T) {
	if _, err := NewR2Client(context.Background(), config.R2Config{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
