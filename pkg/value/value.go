// Package value implements the structured value used for every JSON asset
// the packer touches, plus path-based get/set/replace over it.
//
// A Value is one of null, bool, number, string, array or object. Objects keep
// their keys in insertion order so a file that is read, patched and written
// back only differs where a patch changed it.
package value

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a node of a structured document. The zero value is null.
type Value struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	arr  []*Value
	keys []string
	obj  map[string]*Value
}

func NewNull() *Value { return &Value{} }

func NewBool(b bool) *Value { return &Value{kind: Bool, b: b} }

func NewString(s string) *Value { return &Value{kind: String, str: s} }

// NewNumber keeps the literal text of n so integers round-trip unchanged.
func NewNumber(n json.Number) *Value { return &Value{kind: Number, num: n} }

func NewInt(i int64) *Value {
	return NewNumber(json.Number(strconv.FormatInt(i, 10)))
}

func NewFloat(f float64) *Value {
	return NewNumber(json.Number(strconv.FormatFloat(f, 'f', -1, 64)))
}

func NewArray(items ...*Value) *Value {
	return &Value{kind: Array, arr: append([]*Value{}, items...)}
}

func NewObject() *Value {
	return &Value{kind: Object, obj: make(map[string]*Value)}
}

// Kind reports the variant. A nil *Value reports Null.
func (v *Value) Kind() Kind {
	if v == nil {
		return Null
	}
	return v.kind
}

func (v *Value) IsNull() bool   { return v.Kind() == Null }
func (v *Value) IsObject() bool { return v.Kind() == Object }
func (v *Value) IsArray() bool  { return v.Kind() == Array }
func (v *Value) IsString() bool { return v.Kind() == String }

// AsBool returns the boolean and whether v is a bool.
func (v *Value) AsBool() (bool, bool) {
	if v.Kind() != Bool {
		return false, false
	}
	return v.b, true
}

// AsString returns the string and whether v is a string.
func (v *Value) AsString() (string, bool) {
	if v.Kind() != String {
		return "", false
	}
	return v.str, true
}

// AsFloat returns the number as float64 and whether v is a valid number.
func (v *Value) AsFloat() (float64, bool) {
	if v.Kind() != Number {
		return 0, false
	}
	f, err := v.num.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// AsInt returns the number as int64 when it is integral.
func (v *Value) AsInt() (int64, bool) {
	if v.Kind() != Number {
		return 0, false
	}
	if i, err := v.num.Int64(); err == nil {
		return i, true
	}
	f, err := v.num.Float64()
	if err != nil || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}

// Len is the number of elements of an array or fields of an object.
func (v *Value) Len() int {
	switch v.Kind() {
	case Array:
		return len(v.arr)
	case Object:
		return len(v.keys)
	default:
		return 0
	}
}

// Items returns the elements of an array. The slice is shared.
func (v *Value) Items() []*Value {
	if v.Kind() != Array {
		return nil
	}
	return v.arr
}

// Index returns element i of an array.
func (v *Value) Index(i int) (*Value, bool) {
	if v.Kind() != Array || i < 0 || i >= len(v.arr) {
		return nil, false
	}
	return v.arr[i], true
}

// SetIndex replaces element i of an array. Out of range is ignored.
func (v *Value) SetIndex(i int, item *Value) {
	if v.Kind() != Array || i < 0 || i >= len(v.arr) {
		return
	}
	v.arr[i] = item
}

// Append adds items to an array.
func (v *Value) Append(items ...*Value) {
	if v.Kind() != Array {
		return
	}
	v.arr = append(v.arr, items...)
}

// Keys returns the object keys in document order.
func (v *Value) Keys() []string {
	if v.Kind() != Object {
		return nil
	}
	return append([]string(nil), v.keys...)
}

// Get returns the field named key of an object.
func (v *Value) Get(key string) (*Value, bool) {
	if v.Kind() != Object {
		return nil, false
	}
	f, ok := v.obj[key]
	return f, ok
}

// Has reports whether an object has the field key.
func (v *Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Set assigns a field. New keys are appended, existing keys keep their position.
func (v *Value) Set(key string, field *Value) {
	if v.Kind() != Object {
		return
	}
	if _, ok := v.obj[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.obj[key] = field
}

// Delete removes a field from an object.
func (v *Value) Delete(key string) {
	if v.Kind() != Object {
		return
	}
	if _, ok := v.obj[key]; !ok {
		return
	}
	delete(v.obj, key)
	for i, k := range v.keys {
		if k == key {
			v.keys = append(v.keys[:i], v.keys[i+1:]...)
			break
		}
	}
}

// Merge copies every field of other into v, shallowly. Both must be objects.
func (v *Value) Merge(other *Value) {
	if v.Kind() != Object || other.Kind() != Object {
		return
	}
	for _, k := range other.keys {
		v.Set(k, other.obj[k].Clone())
	}
}

// Clone returns a deep copy.
func (v *Value) Clone() *Value {
	if v == nil {
		return NewNull()
	}
	c := &Value{kind: v.kind, b: v.b, num: v.num, str: v.str}
	switch v.kind {
	case Array:
		c.arr = make([]*Value, len(v.arr))
		for i, item := range v.arr {
			c.arr[i] = item.Clone()
		}
	case Object:
		c.keys = append([]string(nil), v.keys...)
		c.obj = make(map[string]*Value, len(v.obj))
		for k, f := range v.obj {
			c.obj[k] = f.Clone()
		}
	}
	return c
}

// Equal compares two values structurally. Object key order is ignored and
// numbers compare by value.
func Equal(a, b *Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case Null:
		return true
	case Bool:
		return a.b == b.b
	case String:
		return a.str == b.str
	case Number:
		if a.num == b.num {
			return true
		}
		fa, okA := a.AsFloat()
		fb, okB := b.AsFloat()
		return okA && okB && fa == fb
	case Array:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(a.keys) != len(b.keys) {
			return false
		}
		for k, fa := range a.obj {
			fb, ok := b.obj[k]
			if !ok || !Equal(fa, fb) {
				return false
			}
		}
		return true
	}
	return false
}

// FromAny converts plain Go data (as produced by encoding/json, go-toml or
// yaml.v3) into a Value. Map keys are sorted since Go maps carry no order.
func FromAny(x interface{}) *Value {
	switch t := x.(type) {
	case nil:
		return NewNull()
	case *Value:
		return t.Clone()
	case bool:
		return NewBool(t)
	case string:
		return NewString(t)
	case json.Number:
		return NewNumber(t)
	case int:
		return NewInt(int64(t))
	case int8:
		return NewInt(int64(t))
	case int16:
		return NewInt(int64(t))
	case int32:
		return NewInt(int64(t))
	case int64:
		return NewInt(t)
	case uint:
		return NewNumber(json.Number(strconv.FormatUint(uint64(t), 10)))
	case uint8:
		return NewInt(int64(t))
	case uint16:
		return NewInt(int64(t))
	case uint32:
		return NewInt(int64(t))
	case uint64:
		return NewNumber(json.Number(strconv.FormatUint(t, 10)))
	case float32:
		return NewFloat(float64(t))
	case float64:
		return NewFloat(t)
	case []interface{}:
		arr := NewArray()
		for _, item := range t {
			arr.Append(FromAny(item))
		}
		return arr
	case []string:
		arr := NewArray()
		for _, item := range t {
			arr.Append(NewString(item))
		}
		return arr
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			obj.Set(k, FromAny(t[k]))
		}
		return obj
	default:
		return NewNull()
	}
}

// ToAny converts v into plain Go data: map[string]interface{},
// []interface{}, string, bool, nil, and int64 or float64 for numbers.
func (v *Value) ToAny() interface{} {
	switch v.Kind() {
	case Bool:
		return v.b
	case String:
		return v.str
	case Number:
		if i, err := v.num.Int64(); err == nil {
			return i
		}
		f, _ := v.num.Float64()
		return f
	case Array:
		out := make([]interface{}, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.ToAny()
		}
		return out
	case Object:
		out := make(map[string]interface{}, len(v.obj))
		for k, f := range v.obj {
			out[k] = f.ToAny()
		}
		return out
	default:
		return nil
	}
}

// Strings returns the string elements of an array, skipping anything else.
func (v *Value) Strings() []string {
	var out []string
	for _, item := range v.Items() {
		if s, ok := item.AsString(); ok {
			out = append(out, s)
		}
	}
	return out
}
