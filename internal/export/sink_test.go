package export

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestFileName(t *testing.T) {
	t.Parallel()

	now := time.Unix(1714564800, 0)
	tests := []struct {
		id   string
		want string
	}{
		{id: "3f2a-11", want: "interactions-3f2a-11-1714564800.csv"},
		{id: "../../etc/passwd", want: "interactions-______etc_passwd-1714564800.csv"},
	}
	for _, tt := range tests {
		if got := FileName(tt.id, now); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestFileSink_Write(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "exports")
	sink, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	loc, err := sink.Write(context.Background(), "interactions-a-1.csv", []byte("Timestamp,Message,Action\n"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if loc != filepath.Join(dir, "interactions-a-1.csv") {
		t.Errorf("Unexpected location %s", loc)
	}
	data, err := os.ReadFile(loc)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "Timestamp,Message,Action\n" {
		t.Errorf("Unexpected content %q", data)
	}
}

func TestFileSink_WriteFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sink, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	// A directory in place of the target file makes the write fail
	if err := os.Mkdir(filepath.Join(dir, "taken.csv"), 0o750); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if _, err := sink.Write(context.Background(), "taken.csv", []byte("x")); err == nil {
		t.Error("Expected write error, got nil")
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Sink_Write(t *testing.T) {
	t.Parallel()

	fake := &fakeS3{}
	sink := NewS3SinkWithClient(fake, "cinemate-exports", "/interactions/")
	loc, err := sink.Write(context.Background(), "interactions-a-1.csv", []byte("csv"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if loc != "s3://cinemate-exports/interactions/interactions-a-1.csv" {
		t.Errorf("Unexpected location %s", loc)
	}
	if aws.ToString(fake.input.Key) != "interactions/interactions-a-1.csv" {
		t.Errorf("Unexpected key %s", aws.ToString(fake.input.Key))
	}
	if aws.ToString(fake.input.ContentType) != ContentType {
		t.Errorf("Unexpected content type %s", aws.ToString(fake.input.ContentType))
	}
	if string(fake.body) != "csv" {
		t.Errorf("Unexpected body %q", fake.body)
	}
}

func TestS3Sink_WriteError(t *testing.T) {
	t.Parallel()

	sink := NewS3SinkWithClient(&fakeS3{err: errors.New("access denied")}, "b", "")
	if _, err := sink.Write(context.Background(), "x.csv", []byte("csv")); err == nil {
		t.Error("Expected upload error, got nil")
	}
}
