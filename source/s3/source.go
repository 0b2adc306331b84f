package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/tidwall/btree"

	"github.com/mwantia/cncmaps/data"
)

// S3Source serves the objects below a prefix of an S3 compatible bucket.
type S3Source struct {
	mu sync.RWMutex

	client   *minio.Client
	endpoint string
	bucket   string
	prefix   string

	// lower-cased entry name -> object key
	keys *btree.Map[string, string]
}

func NewS3Source(endpoint, bucket, prefix, accessKey, secretKey string, useSsl bool) (*S3Source, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSsl,
	})
	if err != nil {
		return nil, err
	}

	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	return &S3Source{
		client:   client,
		endpoint: endpoint,
		bucket:   bucket,
		prefix:   prefix,
		keys:     btree.NewMap[string, string](0),
	}, nil
}

func (ss *S3Source) Name() string {
	return fmt.Sprintf("s3://%s/%s/%s", ss.endpoint, ss.bucket, ss.prefix)
}

func (ss *S3Source) Open(ctx context.Context) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	exists, err := ss.client.BucketExists(ctx, ss.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return data.ErrSourceFailed
	}

	for obj := range ss.client.ListObjects(ctx, ss.bucket, minio.ListObjectsOptions{
		Prefix:    ss.prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return obj.Err
		}

		name := strings.TrimPrefix(obj.Key, ss.prefix)
		if name == "" || strings.HasSuffix(name, "/") {
			continue
		}
		ss.keys.Set(strings.ToLower(name), obj.Key)
	}

	return nil
}

func (ss *S3Source) Close(ctx context.Context) error {
	return nil
}

func (ss *S3Source) Contains(name string) bool {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	_, ok := ss.keys.Get(strings.ToLower(name))
	return ok
}

func (ss *S3Source) Entries() []string {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	return ss.keys.Keys()
}

func (ss *S3Source) ReadEntry(ctx context.Context, name string) ([]byte, error) {
	ss.mu.RLock()
	key, ok := ss.keys.Get(strings.ToLower(name))
	ss.mu.RUnlock()

	if !ok {
		return nil, data.NewNotFound(data.KindEntry, name)
	}

	obj, err := ss.client.GetObject(ctx, ss.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	content, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, data.NewNotFound(data.KindEntry, name)
		}
		return nil, err
	}

	return content, nil
}

// Put uploads content as the named entry below the prefix.
func (ss *S3Source) Put(ctx context.Context, name string, content []byte) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	key := ss.prefix + name
	_, err := ss.client.PutObject(ctx, ss.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: string(data.GetMIMEType(name)),
	})
	if err != nil {
		return err
	}

	ss.keys.Set(strings.ToLower(name), key)
	return nil
}
