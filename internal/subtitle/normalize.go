// StreamBridge - Emby to Stremio bridge
// Copyright 2026 StreamBridge contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streambridge/streambridge

// Package subtitle normalizes text subtitle payloads for delivery to
// players: character-set transcoding to UTF-8, newline normalization and
// the WebVTT header players require on .vtt tracks.
//
// Emby serves subtitles in whatever encoding the source file used; many
// scene releases are Windows-1252 or UTF-16. Players generally only accept
// UTF-8, so everything is transcoded on the way through.
package subtitle

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Byte-order marks recognized during encoding detection.
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

const webvttHeader = "WEBVTT"

// Normalize transcodes a subtitle payload to UTF-8, strips any byte-order
// mark, normalizes line endings to \n and, for the vtt format, prepends
// the WEBVTT header when absent.
func Normalize(raw []byte, format string) ([]byte, error) {
	decoded, err := decode(raw)
	if err != nil {
		return nil, err
	}

	text := strings.ReplaceAll(decoded, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	if strings.EqualFold(format, "vtt") && !strings.HasPrefix(text, webvttHeader) {
		text = webvttHeader + "\n\n" + text
	}
	return []byte(text), nil
}

// decode converts raw bytes to a UTF-8 string: BOM first, then UTF-8
// validation, then a Windows-1252 fallback. The fallback cannot fail;
// every byte sequence is valid Windows-1252.
func decode(raw []byte) (string, error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return string(raw[len(bomUTF8):]), nil
	case bytes.HasPrefix(raw, bomUTF16LE):
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), raw)
	case bytes.HasPrefix(raw, bomUTF16BE):
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), raw)
	case utf8.Valid(raw):
		return string(raw), nil
	default:
		return decodeWith(charmap.Windows1252, raw)
	}
}

func decodeWith(enc encoding.Encoding, raw []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
