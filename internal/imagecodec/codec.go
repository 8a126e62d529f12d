// Package imagecodec turns data URIs produced by the editor into raw image
// bytes for packaging. Corrupt input is reported through DecodeError and
// never panics; callers decide whether to skip the asset.
package imagecodec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrMissingPayload = errors.New("data uri has no payload")
	ErrInvalidBase64  = errors.New("payload is not valid base64")
	ErrEmptyPayload   = errors.New("payload decodes to zero bytes")
	ErrTooLarge       = errors.New("decoded image exceeds size limit")
)

// DecodeError 记录解码失败的原因，Err 为上面的哨兵错误之一。
type DecodeError struct {
	Err    error
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Detail)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Image is a decoded data URI.
type Image struct {
	Data []byte
	// DeclaredType comes from the "data:<type>;base64" prefix and may be empty.
	DeclaredType string
	// DetectedType is sniffed from Data.
	DetectedType string
}

// Decode splits uri on the first comma and base64-decodes the payload.
func Decode(uri string) (Image, error) {
	return DecodeLimit(uri, 0)
}

// DecodeLimit is Decode with an upper bound on the decoded size.
// maxBytes <= 0 disables the check. The bound is checked against the
// encoded length first so oversized payloads are never allocated.
func DecodeLimit(uri string, maxBytes int64) (Image, error) {
	prefix, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return Image{}, &DecodeError{Err: ErrMissingPayload}
	}

	payload = stripSpace(payload)
	if payload == "" {
		return Image{}, &DecodeError{Err: ErrEmptyPayload}
	}

	if maxBytes > 0 {
		if estimated := int64(base64.StdEncoding.DecodedLen(len(payload))) - int64(padding(payload)); estimated > maxBytes {
			return Image{}, &DecodeError{
				Err:    ErrTooLarge,
				Detail: fmt.Sprintf("%d bytes > %d", estimated, maxBytes),
			}
		}
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return Image{}, &DecodeError{Err: ErrInvalidBase64, Detail: err.Error()}
	}
	if len(data) == 0 {
		return Image{}, &DecodeError{Err: ErrEmptyPayload}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return Image{}, &DecodeError{
			Err:    ErrTooLarge,
			Detail: fmt.Sprintf("%d bytes > %d", len(data), maxBytes),
		}
	}

	return Image{
		Data:         data,
		DeclaredType: declaredType(prefix),
		DetectedType: mimetype.Detect(data).String(),
	}, nil
}

// DecodeOrEmpty never fails: any problem yields an empty byte slice.
func DecodeOrEmpty(uri string) []byte {
	img, err := Decode(uri)
	if err != nil {
		return []byte{}
	}
	return img.Data
}

// IsImage reports whether the detected type is an image/* type.
func (img Image) IsImage() bool {
	return strings.HasPrefix(img.DetectedType, "image/")
}

// EncodeDataURI is the inverse of Decode.
func EncodeDataURI(contentType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}

func decodeBase64(payload string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return data, nil
	}
	// 兜底：部分客户端会去掉末尾的 '='。
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, err
}

func declaredType(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	rest, ok := strings.CutPrefix(prefix, "data:")
	if !ok {
		return ""
	}
	mediaType, _, _ := strings.Cut(rest, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func padding(payload string) int {
	return len(payload) - len(strings.TrimRight(payload, "="))
}

func stripSpace(s string) string {
	if !strings.ContainsAny(s, " \t\r\n") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '\r', '\n':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
