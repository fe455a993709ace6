package folio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrNoOriginal is returned when an origin has no object for a key.
var ErrNoOriginal = errors.New("folio: original not found")

// Origin reads original images by object key, e.g. "covers/a.jpg".
type Origin interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// cleanKey rejects keys that could escape the origin root.
func cleanKey(key string) (string, bool) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "\\") {
		return "", false
	}
	cleaned := path.Clean(key)
	if cleaned != key || cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return "", false
	}
	return cleaned, true
}

// DirOrigin serves originals from a local directory.
type DirOrigin struct {
	root string
}

// NewDirOrigin returns an Origin rooted at dir.
func NewDirOrigin(dir string) *DirOrigin {
	return &DirOrigin{root: dir}
}

// Open opens the original stored under key.
func (o *DirOrigin) Open(_ context.Context, key string) (io.ReadCloser, error) {
	k, ok := cleanKey(key)
	if !ok {
		return nil, ErrNoOriginal
	}
	f, err := os.Open(filepath.Join(o.root, filepath.FromSlash(k)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoOriginal
		}
		return nil, fmt.Errorf("open original: %w", err)
	}
	if st, err := f.Stat(); err == nil && st.IsDir() {
		f.Close()
		return nil, ErrNoOriginal
	}
	return f, nil
}

// S3Origin serves originals from an S3-compatible bucket.
type S3Origin struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Origin builds an S3 client from cfg. Static credentials are used
// when both keys are set, otherwise the default credential chain.
func NewS3Origin(ctx context.Context, cfg S3Config) (*S3Origin, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("folio: s3 bucket is required")
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &S3Origin{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// ObjectKey maps a managed key to the bucket key.
func (o *S3Origin) ObjectKey(key string) string {
	if o.prefix == "" {
		return key
	}
	return o.prefix + "/" + key
}

// Open fetches the original stored under key.
func (o *S3Origin) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	k, ok := cleanKey(key)
	if !ok {
		return nil, ErrNoOriginal
	}
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.ObjectKey(k)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrNoOriginal
		}
		return nil, fmt.Errorf("get object %s: %w", k, err)
	}
	return out.Body, nil
}

// NewOrigin picks the S3 origin when a bucket is configured, otherwise the
// media directory.
func NewOrigin(ctx context.Context, cfg SiteConfig) (Origin, error) {
	if cfg.S3.Bucket != "" {
		return NewS3Origin(ctx, cfg.S3)
	}
	return NewDirOrigin(cfg.MediaDir), nil
}
