// Package kvformat reads and writes flat "key1=value1;key2=value2" payloads.
//
// Decoding is lenient: a segment without a key/value separator, or with an empty
// key, is skipped and the rest of the payload is still decoded. Empty segments
// are ignored. When a key repeats, the last value wins.
package kvformat

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Default separators.
const (
	DefaultPairSeparator     = ";"
	DefaultKeyValueSeparator = "="
)

// ErrMalformedSegment is wrapped by every SegmentError.
var ErrMalformedSegment = errors.New("malformed key/value segment")

// SegmentError describes one skipped segment.
type SegmentError struct {
	Index   int // position of the segment in the payload
	Segment string
	Reason  string
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d %q: %s", e.Index, e.Segment, e.Reason)
}

func (e *SegmentError) Unwrap() error { return ErrMalformedSegment }

// Skipped returns the SegmentErrors carried by an error from DecodeReport.
func Skipped(err error) []*SegmentError {
	if err == nil {
		return nil
	}
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}
	out := make([]*SegmentError, 0, len(errs))
	for _, e := range errs {
		var se *SegmentError
		if errors.As(e, &se) {
			out = append(out, se)
		}
	}
	return out
}

// Codec decodes and encodes payloads with fixed separators. The zero value is not usable; call New.
type Codec struct {
	pairSep string
	kvSep   string
}

// Option configures a Codec.
type Option func(*Codec)

// WithPairSeparator sets the separator between pairs.
func WithPairSeparator(sep string) Option {
	return func(c *Codec) {
		if sep != "" {
			c.pairSep = sep
		}
	}
}

// WithKeyValueSeparator sets the separator between a key and its value.
func WithKeyValueSeparator(sep string) Option {
	return func(c *Codec) {
		if sep != "" {
			c.kvSep = sep
		}
	}
}

// New creates a Codec. Neither separator may contain the other.
func New(opts ...Option) (*Codec, error) {
	c := &Codec{pairSep: DefaultPairSeparator, kvSep: DefaultKeyValueSeparator}
	for _, o := range opts {
		o(c)
	}
	if err := CheckSeparators(c.pairSep, c.kvSep); err != nil {
		return nil, err
	}
	return c, nil
}

// CheckSeparators rejects separator pairs that make Decode(Encode(m)) lossy:
// equal separators, or one contained in the other.
func CheckSeparators(pairSep, kvSep string) error {
	if pairSep == kvSep {
		return fmt.Errorf("pair and key/value separators must differ, both are %q", pairSep)
	}
	if strings.Contains(pairSep, kvSep) || strings.Contains(kvSep, pairSep) {
		return fmt.Errorf("pair separator %q and key/value separator %q overlap", pairSep, kvSep)
	}
	return nil
}

// Default returns a Codec with the default separators.
func Default() *Codec {
	return &Codec{pairSep: DefaultPairSeparator, kvSep: DefaultKeyValueSeparator}
}

// Decode parses raw into a map. It never fails; malformed segments are dropped.
func (c *Codec) Decode(raw string) map[string]string {
	m, _ := c.DecodeReport(raw)
	return m
}

// DecodeReport parses raw like Decode and also returns the joined SegmentErrors of
// the dropped segments. The map is complete regardless of the error.
func (c *Codec) DecodeReport(raw string) (map[string]string, error) {
	out := make(map[string]string)
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}

	var errs []error
	for i, seg := range strings.Split(raw, c.pairSep) {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		k, v, ok := strings.Cut(seg, c.kvSep)
		if !ok {
			errs = append(errs, &SegmentError{Index: i, Segment: seg, Reason: "missing " + c.kvSep})
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			errs = append(errs, &SegmentError{Index: i, Segment: seg, Reason: "empty key"})
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, errors.Join(errs...)
}

// Encode writes m with keys in ascending order.
func (c *Codec) Encode(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(c.pairSep)
		}
		sb.WriteString(k)
		sb.WriteString(c.kvSep)
		sb.WriteString(m[k])
	}
	return sb.String()
}
