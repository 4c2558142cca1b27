package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/postcraft/core/internal/config"
	"github.com/postcraft/core/internal/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
)

// ErrBlobNotFound is returned when a stored object is missing.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore abstracts the backend holding image bytes.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// NewBlobStore builds the configured backend.
func NewBlobStore(cfg config.StorageOptions, db *database.Database) (BlobStore, error) {
	switch cfg.Backend {
	case "s3":
		return newS3Store(cfg.S3)
	case "gridfs":
		return &gridfsStore{bucket: db.Bucket()}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// gridfsStore keeps blobs in the Mongo GridFS bucket, keyed by filename.
type gridfsStore struct {
	bucket *gridfs.Bucket
}

func (g *gridfsStore) Put(_ context.Context, key string, data []byte, _ string) error {
	// Upsert semantics: drop any previous revision first.
	_ = g.deleteByName(key)
	_, err := g.bucket.UploadFromStream(key, bytes.NewReader(data))
	return err
}

func (g *gridfsStore) Get(_ context.Context, key string) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := g.bucket.DownloadToStreamByName(key, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *gridfsStore) Exists(_ context.Context, key string) (bool, error) {
	cursor, err := g.bucket.Find(bson.M{"filename": key})
	if err != nil {
		return false, err
	}
	defer cursor.Close(context.Background())
	return cursor.Next(context.Background()), nil
}

func (g *gridfsStore) Delete(_ context.Context, key string) error {
	return g.deleteByName(key)
}

func (g *gridfsStore) deleteByName(key string) error {
	cursor, err := g.bucket.Find(bson.M{"filename": key})
	if err != nil {
		return err
	}
	defer cursor.Close(context.Background())

	for cursor.Next(context.Background()) {
		var file struct {
			ID interface{} `bson:"_id"`
		}
		if err := cursor.Decode(&file); err != nil {
			continue
		}
		if err := g.bucket.Delete(file.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return err
		}
	}
	return nil
}

// s3Store keeps blobs in an S3-compatible bucket.
type s3Store struct {
	client *s3.Client
	bucket string
}

func newS3Store(opts config.S3Options) (*s3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		),
		awsconfig.WithRegion(opts.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &s3Store{client: client, bucket: opts.Bucket}, nil
}

func (s *s3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	return err
}

func (s *s3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (s *s3Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *s3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}
