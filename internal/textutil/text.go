// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil normalizes raw document bytes into UTF-8 strings.
// Documentation trees in the wild mix encodings: UTF-8 with and without a
// byte-order mark, UTF-16 from Windows tooling, and legacy charsets on
// older hosted pages.
package textutil

import (
	"bytes"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// Normalize decodes raw file bytes into a UTF-8 string. UTF-16 content is
// converted via its byte-order mark, a UTF-8 BOM is stripped, and any
// remaining invalid byte sequences are replaced with U+FFFD so downstream
// string processing never sees broken encoding.
func Normalize(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		if decoded, err := dec.Bytes(data); err == nil {
			data = decoded
		}
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		data = data[3:]
	}
	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}

// DecodeHTML converts a fetched page body to UTF-8 using the charset
// parameter of its Content-Type header. Unknown, missing, or already-UTF-8
// charsets fall back to Normalize.
func DecodeHTML(body []byte, contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err == nil {
		cs := strings.ToLower(params["charset"])
		if cs != "" && cs != "utf-8" && cs != "utf8" {
			if enc, err := htmlindex.Get(cs); err == nil {
				if decoded, err := enc.NewDecoder().Bytes(body); err == nil {
					return strings.ToValidUTF8(string(decoded), string(utf8.RuneError))
				}
			}
		}
	}
	return Normalize(body)
}
