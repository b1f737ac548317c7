package scripting

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// ErrUndefined is returned when a hook is not defined by the script.
var ErrUndefined = errors.New("scripting: hook not defined")

// Script is one compiled Lua chunk with its own VM. Hooks are global Lua
// functions called by name. A Script is safe for concurrent use; calls are
// serialised.
type Script struct {
	name  string
	limit int

	mu sync.Mutex
	L  *lua.LState
}

// Compile loads source into a new sandboxed VM and runs its top level.
//
// Precondition: limit >= 0; 0 uses DefaultInstructionLimit.
func Compile(name, source string, limit int) (*Script, error) {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	L := NewSandboxedState()
	err := withBudget(L, limit, func() error { return L.DoString(source) })
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: loading %s: %w", name, err)
	}
	return &Script{name: name, limit: limit, L: L}, nil
}

// Name returns the script name given to Compile.
func (s *Script) Name() string { return s.name }

// Has reports whether the script defines hook as a function.
func (s *Script) Has(hook string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.L.GetGlobal(hook).(*lua.LFunction)
	return ok
}

// Call invokes hook with args converted to Lua values and returns its first
// result converted back to Go. Supported values are nil, bool, int,
// float64, string, []string, []any and map[string]any.
//
// Postcondition: on error the VM stack is left empty.
func (s *Script) Call(hook string, args ...any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn, ok := s.L.GetGlobal(hook).(*lua.LFunction)
	if !ok {
		return nil, ErrUndefined
	}

	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = toLua(s.L, a)
	}

	err := withBudget(s.L, s.limit, func() error {
		return s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, largs...)
	})
	if err != nil {
		s.L.SetTop(0)
		return nil, fmt.Errorf("scripting: %s.%s: %w", s.name, hook, err)
	}

	ret := s.L.Get(-1)
	s.L.Pop(1)
	return fromLua(ret), nil
}

// CallNumber calls hook and coerces the result to a number. A nil result is 0.
func (s *Script) CallNumber(hook string, args ...any) (float64, error) {
	v, err := s.Call(hook, args...)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("scripting: %s.%s returned %T, want number", s.name, hook, v)
	}
}

// CallTable calls hook and requires a table result. A nil result yields nil.
func (s *Script) CallTable(hook string, args ...any) (map[string]any, error) {
	v, err := s.Call(hook, args...)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return t, nil
	case []any:
		if len(t) == 0 {
			return map[string]any{}, nil
		}
	}
	return nil, fmt.Errorf("scripting: %s.%s returned %T, want table", s.name, hook, v)
}

// Close releases the VM.
func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.L.Close()
}

func toLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	case []string:
		t := L.NewTable()
		for _, s := range x {
			t.Append(lua.LString(s))
		}
		return t
	case []any:
		t := L.NewTable()
		for _, e := range x {
			t.Append(toLua(L, e))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			L.SetField(t, k, toLua(L, x[k]))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(x))
	}
}

func fromLua(v lua.LValue) any {
	switch x := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(x)
	case lua.LNumber:
		return float64(x)
	case lua.LString:
		return string(x)
	case *lua.LTable:
		if n := x.MaxN(); n > 0 {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, fromLua(x.RawGetInt(i)))
			}
			return out
		}
		out := map[string]any{}
		x.ForEach(func(k, val lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				out[string(ks)] = fromLua(val)
			}
		})
		return out
	default:
		return nil
	}
}
