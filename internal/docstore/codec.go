package docstore

import (
	"fmt"

	"github.com/bytedance/sonic"
)

var codec = sonic.ConfigStd

func encodeFields(f Fields) ([]byte, error) {
	if f == nil {
		f = Fields{}
	}
	b, err := codec.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

func decodeFields(b []byte) (Fields, error) {
	f := Fields{}
	if len(b) == 0 {
		return f, nil
	}
	if err := codec.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return f, nil
}

func encodeValue(v any) (string, error) {
	b, err := codec.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode field: %w", err)
	}
	return string(b), nil
}

func decodeValue(s string) (any, error) {
	var v any
	if err := codec.UnmarshalFromString(s, &v); err != nil {
		return nil, fmt.Errorf("decode field: %w", err)
	}
	return v, nil
}

// cloneFields deep-copies f through the codec so callers never share nested values with
// a stored document, and numbers come back in the same shape every JSON backend uses.
func cloneFields(f Fields) (Fields, error) {
	b, err := encodeFields(f)
	if err != nil {
		return nil, err
	}
	return decodeFields(b)
}

func mergeFields(dst, src Fields) Fields {
	out := make(Fields, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}
