package storage

import (
	"errors"
	"strings"

	"github.com/minio/minio-go/v7"
)

// S3 兼容网关对"对象不存在"的表达并不统一，这里同时看错误码和错误文本。
var (
	missingKeyCodes    = []string{"nosuchkey", "notfound"}
	missingKeyPhrases  = []string{"nosuchkey", "specified key does not exist", "not found"}
	missingBucketCodes = []string{"nosuchbucket"}
	missingBucketTexts = []string{"nosuchbucket", "specified bucket does not exist"}
)

// IsNoSuchKey reports whether err means the archive object is gone, e.g.
// removed by the bucket lifecycle rule after ArchiveTTL.
func IsNoSuchKey(err error) bool {
	return matchesError(err, missingKeyCodes, missingKeyPhrases)
}

// IsNoSuchBucket reports whether err means the configured bucket is missing.
func IsNoSuchBucket(err error) bool {
	return matchesError(err, missingBucketCodes, missingBucketTexts)
}

func matchesError(err error, codes, phrases []string) bool {
	if err == nil {
		return false
	}

	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		code := strings.ToLower(strings.TrimSpace(resp.Code))
		for _, c := range codes {
			if code == c {
				return true
			}
		}
	}

	// 代理层可能只保留了错误字符串
	lower := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
