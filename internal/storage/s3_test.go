package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	IfNoneMatch string
	Body        string
}

// fakeS3 answers just enough of the S3 REST API for the store.
type fakeS3 struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		ContentType: r.Header.Get("Content-Type"),
		IfNoneMatch: r.Header.Get("If-None-Match"),
		Body:        string(body),
	})
	status := f.status
	f.mu.Unlock()

	if status != 0 {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(status)
		io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
		return
	}

	switch r.Method {
	case http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func newTestStore(t *testing.T, fake *fakeS3) *S3Store {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:                     "us-east-1",
		BaseEndpoint:               aws.String(srv.URL),
		UsePathStyle:               true,
		Credentials:                credentials.NewStaticCredentialsProvider("key", "secret", ""),
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	})

	return NewS3StoreWithClient(client, Config{
		Endpoint:     srv.URL,
		Region:       "us-east-1",
		FilesBucket:  "opportunity-files",
		ImagesBucket: "opportunity-images",
	})
}

func TestS3Store_Put(t *testing.T) {
	fake := &fakeS3{}
	store := newTestStore(t, fake)

	err := store.Put(context.Background(), FilesBucket, "files/1-deck.pdf", strings.NewReader("pdf bytes"), "application/pdf")
	require.NoError(t, err)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/opportunity-files/files/1-deck.pdf", req.Path)
	assert.Equal(t, "application/pdf", req.ContentType)
	assert.Equal(t, "*", req.IfNoneMatch)
	assert.Equal(t, "pdf bytes", req.Body)
}

func TestS3Store_PutFailure(t *testing.T) {
	fake := &fakeS3{status: http.StatusForbidden}
	store := newTestStore(t, fake)

	err := store.Put(context.Background(), ImagesBucket, "uploads/1-abc.jpg", strings.NewReader("jpeg"), "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload to s3")
}

func TestS3Store_Delete(t *testing.T) {
	fake := &fakeS3{}
	store := newTestStore(t, fake)

	require.NoError(t, store.Delete(context.Background(), ImagesBucket, "uploads/1-abc.jpg"))

	require.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodDelete, fake.requests[0].Method)
	assert.Equal(t, "/opportunity-images/uploads/1-abc.jpg", fake.requests[0].Path)
}

func TestS3Store_UnknownBucket(t *testing.T) {
	store := NewS3StoreWithClient(nil, Config{FilesBucket: "opportunity-files"})

	err := store.Delete(context.Background(), ImagesBucket, "uploads/x.jpg")
	assert.Error(t, err)
}

func TestS3Store_PublicURL(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{
			name:   "public base",
			config: Config{PublicURL: "https://cdn.example.com/", FilesBucket: "opportunity-files"},
			want:   "https://cdn.example.com/opportunity-files/files/1-a%20b.pdf",
		},
		{
			name:   "endpoint",
			config: Config{Endpoint: "http://localhost:9000", FilesBucket: "opportunity-files"},
			want:   "http://localhost:9000/opportunity-files/files/1-a%20b.pdf",
		},
		{
			name:   "aws",
			config: Config{Region: "eu-west-1", FilesBucket: "opportunity-files"},
			want:   "https://opportunity-files.s3.eu-west-1.amazonaws.com/files/1-a%20b.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewS3StoreWithClient(nil, tt.config)
			assert.Equal(t, tt.want, store.PublicURL(FilesBucket, "files/1-a b.pdf"))
		})
	}
}
