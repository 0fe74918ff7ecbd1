package config

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
)

// Node is one mapping of the cluster document. The zero value and Empty()
// behave as a mapping with no keys, so every default still applies.
type Node struct {
	path   string
	values map[string]any
}

// NewNode wraps an already-parsed mapping. The map is not copied and must not
// be mutated afterwards.
func NewNode(values map[string]any) *Node {
	return &Node{values: values}
}

// Empty returns a node without keys.
func Empty() *Node {
	return &Node{}
}

// Path returns the dotted path of this node from the document root.
func (n *Node) Path() string {
	return n.path
}

// IsEmpty reports whether the node has no keys.
func (n *Node) IsEmpty() bool {
	return len(n.values) == 0
}

// Has reports whether key is present with a non-null value.
func (n *Node) Has(key string) bool {
	v, ok := n.values[key]
	return ok && v != nil
}

// Keys returns the keys of the node in sorted order.
func (n *Node) Keys() []string {
	keys := make([]string, 0, len(n.values))
	for k := range n.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Key returns the full dotted path of key below this node.
func (n *Node) Key(key string) string {
	if n.path == "" {
		return key
	}
	return n.path + "." + key
}

// Nested returns the mapping stored at key. It fails if the key is absent.
func (n *Node) Nested(key string) (*Node, error) {
	if !n.Has(key) {
		return nil, &MissingConfigurationError{Key: n.Key(key)}
	}
	return n.NestedOrEmpty(key)
}

// NestedOrEmpty returns the mapping stored at key, or an empty node rooted at
// key when it is absent.
func (n *Node) NestedOrEmpty(key string) (*Node, error) {
	path := n.Key(key)
	if !n.Has(key) {
		return &Node{path: path}, nil
	}
	m, ok := asMap(n.values[key])
	if !ok {
		return nil, &TypeMismatchError{Key: path, Type: "mapping"}
	}
	return &Node{path: path, values: m}, nil
}

// NestedList returns the list of mappings stored at key. It fails if the key
// is absent.
func (n *Node) NestedList(key string) ([]*Node, error) {
	if !n.Has(key) {
		return nil, &MissingConfigurationError{Key: n.Key(key)}
	}
	return n.NestedListOrEmpty(key)
}

// NestedListOrEmpty returns the list of mappings stored at key, or nil when it
// is absent.
func (n *Node) NestedListOrEmpty(key string) ([]*Node, error) {
	return n.NestedListWithShorthand(key, "")
}

// NestedListWithShorthand is NestedListOrEmpty where a scalar item s is
// accepted as shorthand for the mapping {shorthand: s}. An empty shorthand
// disables this.
func (n *Node) NestedListWithShorthand(key, shorthand string) ([]*Node, error) {
	if !n.Has(key) {
		return nil, nil
	}
	path := n.Key(key)
	items, ok := n.values[key].([]any)
	if !ok {
		return nil, &TypeMismatchError{Key: path, Type: "list of mappings"}
	}

	nodes := make([]*Node, 0, len(items))
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		if item == nil {
			nodes = append(nodes, &Node{path: itemPath})
			continue
		}
		m, ok := asMap(item)
		if !ok {
			if shorthand == "" || isCollection(item) {
				return nil, &TypeMismatchError{Key: itemPath, Type: "mapping"}
			}
			m = map[string]any{shorthand: item}
		}
		nodes = append(nodes, &Node{path: itemPath, values: m})
	}
	return nodes, nil
}

// Raw returns the unconverted value stored at key.
func (n *Node) Raw(key string) (any, bool) {
	v, ok := n.values[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Get reads key as T, returning def when the key is absent.
func Get[T any](n *Node, key string, def T) (T, error) {
	v, ok, err := lookup[T](n, key)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

// Require reads key as T and fails if it is absent.
func Require[T any](n *Node, key string) (T, error) {
	v, ok, err := lookup[T](n, key)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, &MissingConfigurationError{Key: n.Key(key)}
	}
	return v, nil
}

// Optional reads key as T, returning nil when it is absent.
func Optional[T any](n *Node, key string) (*T, error) {
	v, ok, err := lookup[T](n, key)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

// List reads key as a list of T and fails if it is absent.
func List[T any](n *Node, key string) ([]T, error) {
	return Require[[]T](n, key)
}

// ListOrEmpty reads key as a list of T, returning nil when it is absent.
func ListOrEmpty[T any](n *Node, key string) ([]T, error) {
	return Get[[]T](n, key, nil)
}

// Enum reads key as a string-valued enum, returning def when it is absent.
// Values outside allowed yield an InvalidEnumValueError.
func Enum[T ~string](n *Node, key string, def T, allowed []T) (T, error) {
	v, err := Get[string](n, key, string(def))
	if err != nil {
		return def, err
	}
	for _, a := range allowed {
		if string(a) == v {
			return a, nil
		}
	}

	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return def, &InvalidEnumValueError{Key: n.Key(key), Value: v, Allowed: names}
}

// OptionalEnum is Enum without a default: an absent key yields nil.
func OptionalEnum[T ~string](n *Node, key string, allowed []T) (*T, error) {
	if !n.Has(key) {
		return nil, nil
	}
	v, err := Enum(n, key, "", allowed)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func lookup[T any](n *Node, key string) (T, bool, error) {
	var out T
	raw, ok := n.Raw(key)
	if !ok {
		return out, false, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       strictScalars,
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, false, err
	}
	if err := dec.Decode(raw); err != nil {
		return out, false, &TypeMismatchError{Key: n.Key(key), Type: fmt.Sprintf("%T", out), Err: err}
	}
	return out, true, nil
}

// strictScalars narrows weak typing: booleans keep their YAML spelling when
// decoded into strings, and integers must be whole and fit the target width.
func strictScalars(from, to reflect.Type, data any) (any, error) {
	v := reflect.ValueOf(data)
	switch {
	case to.Kind() == reflect.String && from.Kind() == reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case isSignedInt(to.Kind()):
		var i int64
		switch k := from.Kind(); {
		case isSignedInt(k):
			i = v.Int()
		case k >= reflect.Uint && k <= reflect.Uintptr:
			u := v.Uint()
			if u > math.MaxInt64 {
				return nil, fmt.Errorf("%d overflows %s", u, to)
			}
			i = int64(u)
		case k == reflect.Float32 || k == reflect.Float64:
			f := v.Float()
			if f != math.Trunc(f) {
				return nil, fmt.Errorf("%v is not a whole number", f)
			}
			if f < math.MinInt64 || f >= math.MaxInt64 {
				return nil, fmt.Errorf("%v overflows %s", f, to)
			}
			i = int64(f)
		case k == reflect.String:
			parsed, err := strconv.ParseInt(v.String(), 0, 64)
			if err != nil {
				return nil, fmt.Errorf("%q is not an integer", v.String())
			}
			i = parsed
		default:
			return data, nil
		}
		if reflect.Zero(to).OverflowInt(i) {
			return nil, fmt.Errorf("%d overflows %s", i, to)
		}
		return i, nil
	}
	return data, nil
}

func isSignedInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func isCollection(v any) bool {
	if _, ok := v.([]any); ok {
		return true
	}
	_, ok := asMap(v)
	return ok
}
