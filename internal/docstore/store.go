// Package docstore holds document records grouped into named collections and offers
// single-store transactions for read-modify-write updates.
package docstore

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
)

// Fields is the body of a document.
type Fields map[string]any

type Document struct {
	Key    string
	Fields Fields
}

type SetOptions struct {
	// Merge keeps fields that are not named in the write. Without it the document is replaced.
	Merge bool
}

var (
	Merge     = SetOptions{Merge: true}
	Overwrite = SetOptions{}
)

// Tx is the view of the store inside RunTransaction. Reads observe the transaction's own
// writes; nothing becomes visible to others until the callback returns nil.
type Tx interface {
	Get(ctx context.Context, collection, key string) (Document, bool, error)
	Set(ctx context.Context, collection, key string, fields Fields, opts SetOptions) error
}

// Store is implemented by every backend. A missing document is reported with found=false,
// never as an error.
type Store interface {
	Get(ctx context.Context, collection, key string) (Document, bool, error)
	Set(ctx context.Context, collection, key string, fields Fields, opts SetOptions) error
	List(ctx context.Context, collection string) ([]Document, error)

	// RunTransaction runs fn atomically. fn may be invoked more than once when a
	// concurrent writer conflicts; it must not have side effects outside tx. When the
	// transaction cannot commit within the configured attempts the error wraps
	// domain.ErrStorageConflict.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	Close(ctx context.Context) error
}

// Int reads a whole number out of a decoded field value. Backends hand numbers back as
// float64 (JSON), int32/int64 (BSON) or json.Number; anything else, including NaN and
// infinities, is reported as not numeric.
func Int(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f < -(1<<63) || f >= 1<<63 {
		return 0, false
	}
	return int64(math.Trunc(f)), true
}

// String renders a scalar field as text, the way the table records store numbers typed
// by staff.
func String(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(s, 10)
	case int32:
		return strconv.FormatInt(int64(s), 10)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	case json.Number:
		return s.String()
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
