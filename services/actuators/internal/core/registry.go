package core

import (
	"reflect"
	"sync"

	"github.com/go-viper/mapstructure/v2"

	"actuatorcode-go/errcode"
	"actuatorcode-go/fixed"
)

var (
	regMu    sync.RWMutex
	builders = map[string]Builder{}
)

func RegisterBuilder(typ string, b Builder) {
	regMu.Lock()
	defer regMu.Unlock()
	if _, exists := builders[typ]; exists {
		panic("duplicate actuator builder: " + typ)
	}
	builders[typ] = b
}

func LookupBuilder(typ string) (Builder, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	b, ok := builders[typ]
	return b, ok
}

// DecodeParams converts loosely typed params (as decoded from YAML or JSON)
// into a builder's Params struct, read through its mapstructure tags.
// Unknown keys are rejected.
func DecodeParams[T any](p map[string]any) (T, error) {
	var out T
	if len(p) == 0 {
		return out, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  fixedValueHook,
		ErrorUnused: true,
		Result:      &out,
	})
	if err != nil {
		return out, &errcode.E{C: errcode.InvalidParams, Op: "decode_params", Err: err}
	}
	if err := dec.Decode(p); err != nil {
		return out, &errcode.E{C: errcode.InvalidParams, Op: "decode_params", Err: err}
	}
	return out, nil
}

var fixedType = reflect.TypeOf(fixed.Value{})

// fixedValueHook accepts decimal text or a number wherever a fixed.Value is
// expected. Text is exact; floats round to the nearest millionth.
func fixedValueHook(from, to reflect.Type, data any) (any, error) {
	if to != fixedType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return fixed.Parse(v)
	case float64:
		return fixed.FromFloat64(v)
	case int:
		return fixed.New(int64(v), 0)
	case int64:
		return fixed.New(v, 0)
	case uint64:
		if v > 1<<31 {
			return nil, errcode.Overflow
		}
		return fixed.New(int64(v), 0)
	}
	return data, nil
}
