package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kasuganosora/tablecore/pkg/row"
	"github.com/kasuganosora/tablecore/pkg/value"
)

// wireValue is the on-disk shape of a value.Value: Raw is an
// interface{} that round-trips through encoding/json as the wrong
// concrete type (everything numeric becomes float64, for one), so each
// Kind gets its own typed field instead of relying on Raw directly.
type wireValue struct {
	Kind  value.Kind
	Bool  bool      `json:",omitempty"`
	Int   int64     `json:",omitempty"`
	Float float64   `json:",omitempty"`
	Str   string    `json:",omitempty"`
	Bytes []byte    `json:",omitempty"`
	Time  time.Time `json:",omitempty"`
}

func toWire(v value.Value) wireValue {
	w := wireValue{Kind: v.Kind}
	switch v.Kind {
	case value.KindBool:
		w.Bool, _ = v.Raw.(bool)
	case value.KindInt:
		w.Int, _ = v.Raw.(int64)
	case value.KindFloat:
		w.Float, _ = v.Raw.(float64)
	case value.KindString:
		w.Str, _ = v.Raw.(string)
	case value.KindBytes:
		w.Bytes, _ = v.Raw.([]byte)
	case value.KindTime:
		w.Time, _ = v.Raw.(time.Time)
	}
	return w
}

func fromWire(w wireValue) value.Value {
	switch w.Kind {
	case value.KindBool:
		return value.NewBool(w.Bool)
	case value.KindInt:
		return value.NewInt(w.Int)
	case value.KindFloat:
		return value.NewFloat(w.Float)
	case value.KindString:
		return value.NewString(w.Str)
	case value.KindBytes:
		return value.NewBytes(w.Bytes)
	case value.KindTime:
		return value.Value{Kind: value.KindTime, Raw: w.Time}
	default:
		return value.Null
	}
}

// encodeRow serializes a row's values (not its key, which is a separate
// SQL column) to its durable BLOB representation.
func encodeRow(r *row.Row) ([]byte, error) {
	wire := make([]wireValue, len(r.Values))
	for i, v := range r.Values {
		wire[i] = toWire(v)
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("store: encode row %d: %w", r.Key, err)
	}
	return data, nil
}

// decodeRow reverses encodeRow, attaching key.
func decodeRow(key row.Key, data []byte) (*row.Row, error) {
	var wire []wireValue
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("store: decode row %d: %w", key, err)
	}
	values := make([]value.Value, len(wire))
	for i, w := range wire {
		values[i] = fromWire(w)
	}
	return row.New(key, values), nil
}
