package httpx

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Nullable is a JSON field that tells an absent key from an explicit null.
// Set is true whenever the key appears; Value is nil when it was null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON is only called for keys present in the object.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// LooseInt64 accepts either a JSON number or a string holding a base-10 integer.
type LooseInt64 int64

func (n *LooseInt64) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("not an integer: %s", data)
	}
	*n = LooseInt64(v)
	return nil
}
