// Package textcodec decodes file content under an ordered chain of text
// encodings and encodes rewritten content back.
package textcodec

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

var (
	// ErrUndecodable is returned when content is not valid under any codec tried.
	ErrUndecodable = errors.New("content cannot be decoded")
	// ErrUnknownEncoding is returned by Lookup for unsupported encoding names.
	ErrUnknownEncoding = errors.New("unknown encoding")
)

// Codec is a named text encoding.
type Codec struct {
	enc  encoding.Encoding
	name string
}

// Lookup resolves a WHATWG encoding label such as "utf-8", "gbk" or "shift_jis".
func Lookup(name string) (Codec, error) {
	label := strings.TrimSpace(name)
	enc, err := htmlindex.Get(label)
	if err != nil {
		return Codec{}, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}

	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = strings.ToLower(label)
	}
	return Codec{enc: enc, name: canonical}, nil
}

// MustLookup is Lookup for labels known to be valid.
func MustLookup(name string) Codec {
	c, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the canonical encoding name.
func (c Codec) Name() string {
	return c.name
}

// Decode converts data to a string. Decoding is strict: the result must encode
// back to exactly data, otherwise ErrUndecodable is returned.
func (c Codec) Decode(data []byte) (string, error) {
	decoded, err := c.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w as %s: %w", ErrUndecodable, c.name, err)
	}

	roundTrip, err := c.enc.NewEncoder().Bytes(decoded)
	if err != nil || !bytes.Equal(roundTrip, data) {
		return "", fmt.Errorf("%w as %s", ErrUndecodable, c.name)
	}
	return string(decoded), nil
}

// Encode converts text to bytes in this encoding.
func (c Codec) Encode(text string) ([]byte, error) {
	out, err := c.enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to encode as %s: %w", c.name, err)
	}
	return out, nil
}

// Chain is an ordered list of codecs; the first is the primary encoding.
type Chain []Codec

// NewChain resolves the primary and fallback encoding names.
func NewChain(primary string, fallbacks ...string) (Chain, error) {
	chain := make(Chain, 0, 1+len(fallbacks))
	for _, name := range append([]string{primary}, fallbacks...) {
		c, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		chain = append(chain, c)
	}
	return chain, nil
}

// Primary returns the first codec of the chain.
func (ch Chain) Primary() Codec {
	return ch[0]
}

// Decode tries each codec in order and returns the text with the codec that
// accepted it.
func (ch Chain) Decode(data []byte) (string, Codec, error) {
	tried := make([]string, 0, len(ch))
	for _, c := range ch {
		text, err := c.Decode(data)
		if err == nil {
			return text, c, nil
		}
		tried = append(tried, c.name)
	}
	return "", Codec{}, fmt.Errorf("%w (tried %s)", ErrUndecodable, strings.Join(tried, ", "))
}
