package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	putKeys     []string
	putBodies   [][]byte
	contentType string
	err         error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(params.Body)
	f.putKeys = append(f.putKeys, aws.ToString(params.Key))
	f.putBodies = append(f.putBodies, body)
	f.contentType = aws.ToString(params.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestPutReturnsPublicURL(t *testing.T) {
	fake := &fakeS3{}
	store := NewStore(fake, "tcx-certificate", "us-east-1", "", nil)

	url, err := store.Put(context.Background(), "certificate_John_Doe_abc.png", []byte("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "https://tcx-certificate.s3.us-east-1.amazonaws.com/certificate_John_Doe_abc.png"
	if url != want {
		t.Errorf("expected %s, got %s", want, url)
	}
	if len(fake.putKeys) != 1 || fake.putKeys[0] != "certificate_John_Doe_abc.png" {
		t.Errorf("unexpected keys uploaded: %v", fake.putKeys)
	}
	if fake.contentType != "image/png" {
		t.Errorf("expected image/png content type, got %s", fake.contentType)
	}
	if string(fake.putBodies[0]) != "png-bytes" {
		t.Errorf("body not uploaded verbatim")
	}
}

func TestPutUsesPublicBaseURLOverride(t *testing.T) {
	store := NewStore(&fakeS3{}, "bucket", "us-east-1", "https://cdn.certgen.dev/", nil)

	url, err := store.Put(context.Background(), "k.png", []byte("x"), "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://cdn.certgen.dev/k.png" {
		t.Errorf("expected override URL, got %s", url)
	}
}

func TestPutPropagatesError(t *testing.T) {
	fake := &fakeS3{err: errors.New("access denied")}
	store := NewStore(fake, "bucket", "us-east-1", "", nil)

	if _, err := store.Put(context.Background(), "k.png", []byte("x"), "image/png"); err == nil {
		t.Fatal("expected upload error to propagate")
	}
}

func TestPutUnconfigured(t *testing.T) {
	store := NewStore(nil, "", "us-east-1", "", nil)

	if _, err := store.Put(context.Background(), "k.png", nil, "image/png"); err == nil {
		t.Fatal("expected error from unconfigured store")
	}
}

func TestURLForMatchesPut(t *testing.T) {
	fake := &fakeS3{}
	store := NewStore(fake, "bucket", "eu-west-1", "", nil)

	key := "certificate_A_1.png"
	preComputed := store.URLFor(key)
	uploaded, err := store.Put(context.Background(), key, []byte("x"), "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if preComputed != uploaded {
		t.Errorf("URLFor (%s) must match the URL Put returns (%s)", preComputed, uploaded)
	}
}
