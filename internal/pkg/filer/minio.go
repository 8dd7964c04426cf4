package filer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
)

// Filer stores normalized reflection audio in minio and returns
// a stable public locator for each object
type Filer struct {
	minioClient *minio.Client
	bucket      string
	publicURL   string
	backoff     func() backoff.BackOff
}

// NewFiler creates minio filer instance
func NewFiler(cfg *viper.Viper) (*Filer, error) {
	res := Filer{}
	urlStr := cfg.GetString("filer.url")
	if urlStr == "" {
		return nil, fmt.Errorf("no filer.url")
	}
	res.bucket = cfg.GetString("filer.bucket")
	if res.bucket == "" {
		return nil, fmt.Errorf("no filer.bucket")
	}
	res.publicURL = cfg.GetString("filer.publicURL")
	if res.publicURL == "" {
		return nil, fmt.Errorf("no filer.publicURL")
	}
	var err error
	res.minioClient, err = minio.New(urlStr, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetString("filer.user"), cfg.GetString("filer.key"), ""),
		Secure: cfg.GetBool("filer.https"),
	})
	if err != nil {
		return nil, fmt.Errorf("can't init minio client: %w", err)
	}
	res.backoff = newSimpleBackoff
	goapp.Log.Info().Str("url", urlStr).Str("bucket", res.bucket).Msg("cfg: filer")
	return &res, nil
}

// SaveReflection stores audio under an entry scoped random key,
// returns {storage path, public locator}
func (f *Filer) SaveReflection(ctx context.Context, entryID, name string, data []byte) (string, string, error) {
	objName := fmt.Sprintf("audio/%s/%d-%s-%s", entryID, time.Now().UnixMilli(), uuid.NewString(), name)
	_, err := goapp.InvokeWithBackoff(ctx, func() (minio.UploadInfo, bool, error) {
		info, err := f.minioClient.PutObject(ctx, f.bucket, objName, bytes.NewReader(data),
			int64(len(data)), minio.PutObjectOptions{ContentType: "audio/ogg"})
		return info, goapp.IsRetryableErr(err), err
	}, f.backoff())
	if err != nil {
		return "", "", fmt.Errorf("can't save '%s': %w", objName, err)
	}
	pURL, err := url.JoinPath(f.publicURL, f.bucket, objName)
	if err != nil {
		return "", "", fmt.Errorf("can't build public url: %w", err)
	}
	goapp.Log.Info().Str("path", objName).Msg("saved")
	return objName, pURL, nil
}

// Bucket returns the configured bucket name
func (f *Filer) Bucket() string {
	return f.bucket
}

// LoadFile loads stored audio by path
func (f *Filer) LoadFile(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	res, err := f.minioClient.GetObject(ctx, f.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("can't load '%s': %w", path, err)
	}
	return res, nil
}

// Clean removes all audio objects of one entry
func (f *Filer) Clean(ctx context.Context, id string) error {
	prefix := fmt.Sprintf("audio/%s/", id)
	for obj := range f.minioClient.ListObjects(ctx, f.bucket,
		minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return fmt.Errorf("can't list '%s': %w", prefix, obj.Err)
		}
		if err := f.minioClient.RemoveObject(ctx, f.bucket, obj.Key,
			minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("can't remove '%s': %w", obj.Key, err)
		}
		goapp.Log.Info().Str("ID", id).Str("key", obj.Key).Msg("removed")
	}
	return nil
}

func newSimpleBackoff() backoff.BackOff {
	res := backoff.NewExponentialBackOff()
	res.InitialInterval = time.Second
	return backoff.WithMaxRetries(res, 3)
}
