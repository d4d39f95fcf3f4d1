package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
)

type s3Folder struct {
	client *minio.Client
	bucket string
	prefix string
}

// s3Credentials is the shape of the drive.credentials_file for the S3
// provider.
type s3Credentials struct {
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

// NewS3Folder creates a Folder over an S3-compatible bucket. The
// configured folder id is used as the object key prefix.
func NewS3Folder(cfg config.DriveConfig) (Folder, error) {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read drive credentials %s: %w", cfg.CredentialsFile, err)
	}
	var creds s3Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse drive credentials %s: %w", cfg.CredentialsFile, err)
	}

	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(creds.AccessKey, creds.SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	prefix := strings.Trim(cfg.FolderID, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &s3Folder{
		client: client,
		bucket: cfg.S3Bucket,
		prefix: prefix,
	}, nil
}

func (f *s3Folder) List(ctx context.Context) ([]FileInfo, error) {
	var files []FileInfo
	for obj := range f.client.ListObjects(ctx, f.bucket, minio.ListObjectsOptions{
		Prefix:    f.prefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list bucket %s: %w", f.bucket, obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, f.prefix)
		if name == "" || strings.HasSuffix(name, "/") {
			continue
		}
		files = append(files, FileInfo{
			ID:   obj.Key,
			Name: name,
			Size: obj.Size,
		})
	}
	return files, nil
}

func (f *s3Folder) Download(ctx context.Context, id string) ([]byte, error) {
	obj, err := f.client.GetObject(ctx, f.bucket, id, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", id, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", id, err)
	}
	return data, nil
}
