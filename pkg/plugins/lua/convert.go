package lua

import (
	"fmt"
	"math"

	"github.com/Shopify/go-lua"
)

const maxDepth = 16

// toGo converts the value at index into plain Go values. Tables with keys 1..n become slices.
func toGo(state *lua.State, index, depth int) any {
	switch state.TypeOf(index) {
	case lua.TypeNil, lua.TypeNone:
		return nil
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeNumber:
		n, _ := state.ToNumber(index)
		if n == math.Trunc(n) && !math.IsInf(n, 0) && math.Abs(n) < 1<<53 {
			return int64(n)
		}
		return n
	case lua.TypeString:
		s, _ := state.ToString(index)
		return s
	case lua.TypeTable:
		if depth >= maxDepth {
			return "table"
		}
		return tableToGo(state, state.AbsIndex(index), depth+1)
	default:
		return lua.TypeNameOf(state, index)
	}
}

func tableToGo(state *lua.State, index, depth int) any {
	values := make(map[string]any)
	positional := make(map[int64]any)
	state.PushNil()
	for state.Next(index) {
		value := toGo(state, -1, depth)
		switch key := toGo(state, -2, depth).(type) {
		case int64:
			positional[key] = value
			values[fmt.Sprint(key)] = value
		default:
			values[fmt.Sprint(key)] = value
		}
		state.Pop(1)
	}

	if len(positional) > 0 && len(positional) == len(values) {
		list := make([]any, len(positional))
		for i := range list {
			v, ok := positional[int64(i+1)]
			if !ok {
				return values
			}
			list[i] = v
		}
		return list
	}
	return values
}

// pushGo pushes a Go value produced by toGo, or by JSON decoding, back onto the stack.
func pushGo(state *lua.State, value any, depth int) {
	if depth >= maxDepth {
		state.PushNil()
		return
	}
	switch v := value.(type) {
	case nil:
		state.PushNil()
	case bool:
		state.PushBoolean(v)
	case string:
		state.PushString(v)
	case int:
		state.PushInteger(v)
	case int64:
		state.PushInteger(int(v))
	case float64:
		state.PushNumber(v)
	case []any:
		state.NewTable()
		for i, item := range v {
			pushGo(state, item, depth+1)
			state.RawSetInt(-2, i+1)
		}
	case map[string]any:
		state.NewTable()
		for k, item := range v {
			pushGo(state, item, depth+1)
			state.SetField(-2, k)
		}
	default:
		state.PushString(fmt.Sprint(v))
	}
}
