package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/audiovault/pkg/configs"
	nlog "github.com/yeisme/audiovault/pkg/log"
)

func init() {
	RegisterFactory(configs.BlobTypeS3, func(ctx context.Context, cfg *configs.BlobConfig) (Store, error) {
		return NewS3(ctx, &cfg.S3)
	})
}

// S3 基于 MinIO 客户端的对象存储.
type S3 struct {
	cli    *minio.Client
	bucket string
	prefix string
}

var _ Store = (*S3)(nil)

// NewS3 初始化 MinIO 客户端，若 bucket 不存在则尝试创建.
func NewS3(ctx context.Context, cfg *configs.S3Config) (*S3, error) {
	endpoint := cfg.Endpoint
	secure := cfg.UseSSL
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo(configs.AppName, configs.AppVersion)

	if cfg.BucketName == "" {
		return nil, fmt.Errorf("blob: s3 bucket_name is required")
	}

	exists, err := cli.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.BucketName, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.BucketName, err)
		}

		nlog.Logger().Info().Str("bucket", cfg.BucketName).Msg("bucket created")
	}

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.BucketName).Msg("s3 connected")

	return &S3{cli: cli, bucket: cfg.BucketName, prefix: cfg.Prefix}, nil
}

func (s *S3) objectName(key string) (string, error) {
	if err := CheckKey(key); err != nil {
		return "", err
	}

	return s.prefix + key, nil
}

// Put 流式上传，大小未知时由 minio 分片.
func (s *S3) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	name, err := s.objectName(key)
	if err != nil {
		return 0, err
	}

	info, err := s.cli.PutObject(ctx, s.bucket, name, r, -1, minio.PutObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("put object %s: %w", name, err)
	}

	return info.Size, nil
}

// Open 返回可 Seek 的 *minio.Object.
func (s *S3) Open(ctx context.Context, key string) (Object, error) {
	name, err := s.objectName(key)
	if err != nil {
		return nil, err
	}

	obj, err := s.cli.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrapErr(key, err)
	}

	st, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, s.wrapErr(key, err)
	}

	return &s3Object{Object: obj, size: st.Size, mod: st.LastModified}, nil
}

// Delete 删除对象. S3 的 RemoveObject 对不存在的键本身就返回成功.
func (s *S3) Delete(ctx context.Context, key string) error {
	name, err := s.objectName(key)
	if err != nil {
		return err
	}

	if err := s.cli.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		if isNotFound(err) {
			return nil
		}

		return fmt.Errorf("remove object %s: %w", name, err)
	}

	return nil
}

// Exists 通过 StatObject 判断.
func (s *S3) Exists(ctx context.Context, key string) (bool, error) {
	name, err := s.objectName(key)
	if err != nil {
		return false, err
	}

	if _, err := s.cli.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// List 列出前缀下（非递归）的对象.
func (s *S3) List(ctx context.Context) ([]Info, error) {
	out := make([]Info, 0)

	for obj := range s.cli.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.prefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}

		key := strings.TrimPrefix(obj.Key, s.prefix)
		if key == "" || strings.HasSuffix(key, "/") {
			continue
		}

		out = append(out, Info{Key: key, Size: obj.Size, ModTime: obj.LastModified})
	}

	return out, nil
}

// Ping 检查 bucket 可访问.
func (s *S3) Ping(ctx context.Context) error {
	ok, err := s.cli.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}

	return nil
}

// Close 关闭 S3 客户端连接（无实际操作，接口兼容）.
func (s *S3) Close() error { return nil }

func (s *S3) wrapErr(key string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	return fmt.Errorf("get object %s: %w", key, err)
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)

	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

type s3Object struct {
	*minio.Object

	size int64
	mod  time.Time
}

func (o *s3Object) Size() int64        { return o.size }
func (o *s3Object) ModTime() time.Time { return o.mod }
