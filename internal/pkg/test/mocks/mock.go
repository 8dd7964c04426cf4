package mocks

import (
	"context"
	"io"
	"net/http"

	"github.com/memora/reflections/internal/pkg/analysis"
	"github.com/memora/reflections/internal/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// Filer is minio mock
type Filer struct{ mock.Mock }

func (m *Filer) SaveReflection(ctx context.Context, entryID, name string, data []byte) (string, string, error) {
	args := m.Called(ctx, entryID, name, data)
	return args.String(0), args.String(1), args.Error(2)
}

// LoadFile func mock
func (m *Filer) LoadFile(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	args := m.Called(ctx, path)
	return to[io.ReadSeekCloser](args.Get(0)), args.Error(1)
}

func (m *Filer) Bucket() string {
	args := m.Called()
	return args.String(0)
}

// DB is postgres DB mock
type DB struct{ mock.Mock }

func (m *DB) InsertEntry(ctx context.Context, e *persistence.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *DB) InsertTranscript(ctx context.Context, t *persistence.EntryTranscript) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *DB) InsertAnalysis(ctx context.Context, entryID string, data *analysis.Result) (*persistence.EntryAnalysis, error) {
	args := m.Called(ctx, entryID, data)
	return to[*persistence.EntryAnalysis](args.Get(0)), args.Error(1)
}

func (m *DB) UpdateEntryStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *DB) LoadEntry(ctx context.Context, id string) (*persistence.Entry, error) {
	args := m.Called(ctx, id)
	return to[*persistence.Entry](args.Get(0)), args.Error(1)
}

// Converter is audio transcoder mock
type Converter struct{ mock.Mock }

func (m *Converter) Convert(ctx context.Context, data []byte, fileName string) ([]byte, string, error) {
	args := m.Called(ctx, data, fileName)
	return to[[]byte](args.Get(0)), args.String(1), args.Error(2)
}

// Transcriber is speech to text client mock
type Transcriber struct{ mock.Mock }

func (m *Transcriber) Transcribe(ctx context.Context, audio []byte, fileName string) (string, error) {
	args := m.Called(ctx, audio, fileName)
	return args.String(0), args.Error(1)
}

// Analyzer is analysis client mock
type Analyzer struct{ mock.Mock }

func (m *Analyzer) Analyze(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

// Auth is user resolver mock
type Auth struct{ mock.Mock }

func (m *Auth) ResolveUser(ctx context.Context, req *http.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func to[T interface{}](val interface{}) T {
	if val == nil {
		var res T
		return res
	}
	return val.(T)
}
