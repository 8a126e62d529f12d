package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"portfolioX/internal/config"
)

const generatorMetadata = "portfoliox"

// Client 封装 MinIO：internal 负责读写，public 只用于签发浏览器可访问的下载链接。
type Client struct {
	internal *minio.Client
	public   *minio.Client
	bucket   string
}

// NewClient 初始化 MinIO 客户端并确保 Bucket 存在。archiveTTL > 0 时为
// 归档与预览前缀设置过期规则。
func NewClient(cfg config.MinIOConfig, archiveTTL time.Duration) (*Client, error) {
	lookup, err := parseBucketLookup(cfg.BucketLookup)
	if err != nil {
		return nil, err
	}

	internal, err := newMinioClient(cfg, cfg.Endpoint, cfg.UseSSL, lookup)
	if err != nil {
		return nil, fmt.Errorf("init internal minio client: %w", err)
	}

	publicURL, err := url.Parse(cfg.PublicEndpoint)
	if err != nil {
		return nil, fmt.Errorf("parse minio public endpoint: %w", err)
	}
	if publicURL.Host == "" {
		return nil, fmt.Errorf("invalid minio public endpoint %q: host missing", cfg.PublicEndpoint)
	}
	public, err := newMinioClient(cfg, publicURL.Host, publicURL.Scheme == "https", lookup)
	if err != nil {
		return nil, fmt.Errorf("init public minio client: %w", err)
	}

	c := &Client{internal: internal, public: public, bucket: cfg.Bucket}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.ensureBucket(ctx, cfg.Region, cfg.AutoCreateBucket); err != nil {
		return nil, err
	}
	if archiveTTL > 0 {
		if err := c.applyExpiry(ctx, archiveTTL); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func parseBucketLookup(raw string) (minio.BucketLookupType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "auto":
		return minio.BucketLookupAuto, nil
	case "dns":
		return minio.BucketLookupDNS, nil
	case "path":
		return minio.BucketLookupPath, nil
	default:
		return minio.BucketLookupAuto, fmt.Errorf("invalid minio bucket lookup %q", raw)
	}
}

func newMinioClient(cfg config.MinIOConfig, endpoint string, secure bool, lookup minio.BucketLookupType) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure:       secure,
		Region:       cfg.Region,
		BucketLookup: lookup,
	})
}

func (c *Client) ensureBucket(ctx context.Context, region string, autoCreate bool) error {
	exists, err := c.internal.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", c.bucket, err)
	}
	if exists {
		return nil
	}
	if !autoCreate {
		return fmt.Errorf("bucket %q does not exist (auto create disabled)", c.bucket)
	}
	if err := c.internal.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("make bucket %q: %w", c.bucket, err)
	}
	return nil
}

// applyExpiry 生命周期规则以天为单位，不足一天按一天算。
func (c *Client) applyExpiry(ctx context.Context, ttl time.Duration) error {
	rules := lifecycle.NewConfiguration()
	rules.Rules = []lifecycle.Rule{
		expiryRule(ArchivePrefix, ttl),
		expiryRule(PreviewPrefix, ttl),
	}
	if err := c.internal.SetBucketLifecycle(ctx, c.bucket, rules); err != nil {
		return fmt.Errorf("set lifecycle on bucket %q: %w", c.bucket, err)
	}
	return nil
}

func expiryRule(prefix string, ttl time.Duration) lifecycle.Rule {
	return lifecycle.Rule{
		ID:         prefix + "-expiry",
		Status:     "Enabled",
		RuleFilter: lifecycle.Filter{Prefix: prefix + "/"},
		Expiration: lifecycle.Expiration{Days: lifecycle.ExpirationDays(ExpiryDays(ttl))},
	}
}

// ExpiryDays rounds ttl up to whole days, minimum one.
func ExpiryDays(ttl time.Duration) int {
	days := int((ttl + 24*time.Hour - 1) / (24 * time.Hour))
	if days < 1 {
		return 1
	}
	return days
}

// Upload 写入私有 Bucket。
func (c *Client) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error) {
	info, err := c.internal.PutObject(ctx, c.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"generator": generatorMetadata},
	})
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", objectName, err)
	}
	return &info, nil
}

// PresignDownload signs a GET against the public endpoint. params become
// response-* overrides such as Content-Disposition.
func (c *Client) PresignDownload(ctx context.Context, objectKey string, ttl time.Duration, params map[string]string) (string, error) {
	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}
	signed, err := c.public.PresignedGetObject(ctx, c.bucket, objectKey, ttl, query)
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", objectKey, err)
	}
	return signed.String(), nil
}

// DeleteObject 幂等删除，对象不存在视为成功。
func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	objectKey = strings.TrimSpace(objectKey)
	if objectKey == "" {
		return nil
	}
	err := c.internal.RemoveObject(ctx, c.bucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil && !IsNoSuchKey(err) {
		return fmt.Errorf("remove object %q: %w", objectKey, err)
	}
	return nil
}

// Exists 判断归档是否仍在 Bucket 中。
func (c *Client) Exists(ctx context.Context, objectKey string) (bool, error) {
	_, err := c.internal.StatObject(ctx, c.bucket, objectKey, minio.StatObjectOptions{})
	switch {
	case err == nil:
		return true, nil
	case IsNoSuchKey(err):
		return false, nil
	case IsNoSuchBucket(err):
		return false, fmt.Errorf("bucket %q missing: %w", c.bucket, err)
	default:
		return false, fmt.Errorf("stat object %q: %w", objectKey, err)
	}
}
