package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "invoices/a.pdf", want: "invoices/a.pdf"},
		{key: "invoices//./a.pdf", want: "invoices/a.pdf"},
		{key: "", wantErr: true},
		{key: "/etc/passwd", wantErr: true},
		{key: "../secret", wantErr: true},
		{key: "invoices/../../x", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			got, err := cleanKey(tc.key)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLocalStore_PutServeDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "http://localhost:8080/files/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), Object{
		Key:         "invoices/invoice_INV-1.pdf",
		Body:        []byte("%PDF-1.3"),
		ContentType: "application/pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/invoices/invoice_INV-1.pdf", url)

	onDisk, err := os.ReadFile(filepath.Join(root, "invoices", "invoice_INV-1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(onDisk))

	srv := httptest.NewServer(store.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/invoices/invoice_INV-1.pdf")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "%PDF-1.3", string(body))

	require.NoError(t, store.Delete(context.Background(), "invoices/invoice_INV-1.pdf"))
	require.NoError(t, store.Delete(context.Background(), "invoices/invoice_INV-1.pdf"), "deleting twice is fine")
}

// fakeS3 is a hand-written test double for s3API.
type fakeS3 struct {
	put    func(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error)
	delete func(ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error)
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return f.put(ctx, in)
}
func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return f.delete(ctx, in)
}

var _ s3API = (*fakeS3)(nil)

func TestS3Store_Put(t *testing.T) {
	var got *s3.PutObjectInput
	store := newS3Store(&fakeS3{
		put: func(_ context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			got = in
			return &s3.PutObjectOutput{}, nil
		},
	}, "ap-south-1", "desk-invoices", "")

	url, err := store.Put(context.Background(), Object{Key: "invoices/a.pdf", Body: []byte("pdf"), ContentType: "application/pdf"})

	require.NoError(t, err)
	assert.Equal(t, "https://desk-invoices.s3.ap-south-1.amazonaws.com/invoices/a.pdf", url)
	assert.Equal(t, "desk-invoices", aws.ToString(got.Bucket))
	assert.Equal(t, "invoices/a.pdf", aws.ToString(got.Key))
	assert.Equal(t, int64(3), aws.ToInt64(got.ContentLength))
	assert.Equal(t, "application/pdf", aws.ToString(got.ContentType))
}

func TestS3Store_PutUsesBaseURL(t *testing.T) {
	store := newS3Store(&fakeS3{
		put: func(context.Context, *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			return &s3.PutObjectOutput{}, nil
		},
	}, "ap-south-1", "b", "https://cdn.example.com")

	url, err := store.Put(context.Background(), Object{Key: "k.pdf"})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/k.pdf", url)
}

func TestS3Store_PutError(t *testing.T) {
	boom := errors.New("boom")
	store := newS3Store(&fakeS3{
		put: func(context.Context, *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			return nil, boom
		},
	}, "r", "b", "")

	_, err := store.Put(context.Background(), Object{Key: "k.pdf"})

	assert.ErrorIs(t, err, boom)
}
