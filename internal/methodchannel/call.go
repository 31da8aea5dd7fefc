// Package methodchannel models the host framework's method channel: a named
// call carrying loosely-typed arguments, answered exactly once through a
// Result.
package methodchannel

import (
	"encoding/json"
	"math"
)

// MethodCall is a single invocation received on a channel.
type MethodCall struct {
	Method    string
	Arguments any
}

// Args returns the arguments as a map. ok is false when the call carries no
// arguments or they are not a string-keyed map.
func (c *MethodCall) Args() (map[string]any, bool) {
	m, ok := c.Arguments.(map[string]any)
	return m, ok
}

// Argument returns the raw value for key, or nil.
func (c *MethodCall) Argument(key string) any {
	m, ok := c.Args()
	if !ok {
		return nil
	}
	return m[key]
}

// String returns the argument as a string. Values of any other kind count
// as absent.
func (c *MethodCall) String(key string) (string, bool) {
	s, ok := c.Argument(key).(string)
	return s, ok
}

// Bool returns the argument as a bool.
func (c *MethodCall) Bool(key string) (bool, bool) {
	b, ok := c.Argument(key).(bool)
	return b, ok
}

// Int returns the argument as an int. Floats are accepted only when they
// carry an integral value, since JSON decoding yields float64 for every
// number.
func (c *MethodCall) Int(key string) (int, bool) {
	switch v := c.Argument(key).(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

// Float returns the argument as a float64. Any numeric kind is accepted.
func (c *MethodCall) Float(key string) (float64, bool) {
	switch v := c.Argument(key).(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Map returns the argument as a string-keyed map.
func (c *MethodCall) Map(key string) (map[string]any, bool) {
	m, ok := c.Argument(key).(map[string]any)
	return m, ok
}
