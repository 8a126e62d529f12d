package imagecodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestDecodeValidDataURI(t *testing.T) {
	uri := EncodeDataURI("image/png", pngHeader)

	img, err := Decode(uri)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(img.Data, pngHeader) {
		t.Fatalf("unexpected bytes %q", img.Data)
	}
	if img.DeclaredType != "image/png" {
		t.Fatalf("unexpected declared type %q", img.DeclaredType)
	}
	if img.DetectedType != "image/png" || !img.IsImage() {
		t.Fatalf("unexpected detected type %q", img.DetectedType)
	}
}

func TestDecodeWithoutPrefixStillUsesPayload(t *testing.T) {
	img, err := Decode("," + base64.StdEncoding.EncodeToString([]byte("abc")))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(img.Data) != "abc" || img.DeclaredType != "" {
		t.Fatalf("unexpected image %+v", img)
	}
}

func TestDecodeSplitsOnFirstComma(t *testing.T) {
	_, err := Decode("data:image/png;base64,QUJD,REVG")
	if !errors.Is(err, ErrInvalidBase64) {
		t.Fatalf("expected invalid base64 for payload containing a comma, got %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		uri  string
		want error
	}{
		{"empty", "", ErrMissingPayload},
		{"no comma", "data:image/png;base64", ErrMissingPayload},
		{"empty payload", "data:image/png;base64,", ErrEmptyPayload},
		{"garbage", "data:image/png;base64,@@not-base64@@", ErrInvalidBase64},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.uri)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected *DecodeError, got %T", err)
			}
		})
	}
}

func TestDecodeToleratesWhitespaceAndMissingPadding(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("hello!!"))
	wrapped := encoded[:4] + "\n" + encoded[4:]
	img, err := Decode("data:image/jpeg;base64," + wrapped)
	if err != nil {
		t.Fatalf("decode wrapped: %v", err)
	}
	if string(img.Data) != "hello!!" {
		t.Fatalf("unexpected bytes %q", img.Data)
	}

	img, err = Decode("data:image/jpeg;base64," + strings.TrimRight(encoded, "="))
	if err != nil {
		t.Fatalf("decode unpadded: %v", err)
	}
	if string(img.Data) != "hello!!" {
		t.Fatalf("unexpected bytes %q", img.Data)
	}
}

func TestDecodeLimit(t *testing.T) {
	uri := EncodeDataURI("image/jpeg", bytes.Repeat([]byte{0xff}, 1024))

	if _, err := DecodeLimit(uri, 1024); err != nil {
		t.Fatalf("expected payload at limit to decode, got %v", err)
	}
	if _, err := DecodeLimit(uri, 1023); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestDecodeOrEmpty(t *testing.T) {
	if got := DecodeOrEmpty("not a data uri"); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
	if got := DecodeOrEmpty(EncodeDataURI("image/png", pngHeader)); !bytes.Equal(got, pngHeader) {
		t.Fatalf("unexpected bytes %q", got)
	}
}
