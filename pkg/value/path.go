package value

import (
	"regexp"
	"strconv"
	"strings"
)

// Wildcard matches every field of an object or every element of an array.
// A literal key named "*" cannot be addressed: it is always read as the
// wildcard.
const Wildcard = "*"

// Path is a sequence of keys. A key is an object field name, an array index
// or Wildcard.
type Path []string

// ParsePath splits a slash separated location such as "textures/*". The
// empty string addresses the root.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

func (p Path) String() string {
	return strings.Join(p, "/")
}

// HasWildcard reports whether any segment is Wildcard.
func (p Path) HasWildcard() bool {
	for _, seg := range p {
		if seg == Wildcard {
			return true
		}
	}
	return false
}

// SetOptions controls how Set writes the terminal key.
type SetOptions struct {
	// Merge shallow-merges the new value into the current one when both are
	// objects. Otherwise the value is replaced.
	Merge bool
	// CreateMissing builds nested single-key objects when a literal
	// intermediate key is absent.
	CreateMissing bool
}

// Get returns every value the path resolves to, in document order. ok is
// false only when a wildcard-free path names a key that does not exist; a
// wildcard path with no matches returns an empty slice and ok true.
func Get(root *Value, path Path) ([]*Value, bool) {
	var out []*Value
	get(root, path, &out)
	return out, len(out) > 0 || path.HasWildcard()
}

func get(node *Value, path Path, out *[]*Value) {
	if len(path) == 0 {
		*out = append(*out, node)
		return
	}
	seg, rest := path[0], path[1:]
	if seg == Wildcard {
		eachChild(node, func(child *Value, _ func(*Value)) {
			get(child, rest, out)
		})
		return
	}
	if child, ok := literalChild(node, seg); ok {
		get(child, rest, out)
	}
}

// Set writes v at every location path resolves to and returns the root,
// which is a new value only when path is empty. Each wildcard branch
// receives its own copy of v.
func Set(root *Value, path Path, v *Value, opts SetOptions) *Value {
	if len(path) == 0 {
		return assign(root, v, opts)
	}
	set(root, path, v, opts)
	return root
}

func set(node *Value, path Path, v *Value, opts SetOptions) {
	seg, rest := path[0], path[1:]

	if seg == Wildcard {
		eachChild(node, func(child *Value, replace func(*Value)) {
			if len(rest) == 0 {
				replace(assign(child, v, opts))
				return
			}
			set(child, rest, v, opts)
		})
		return
	}

	switch node.Kind() {
	case Object:
		child, ok := node.Get(seg)
		if len(rest) == 0 {
			if ok {
				node.Set(seg, assign(child, v, opts))
			} else {
				node.Set(seg, v.Clone())
			}
			return
		}
		if !ok {
			if opts.CreateMissing && !rest.HasWildcard() {
				node.Set(seg, nest(rest, v))
			}
			return
		}
		set(child, rest, v, opts)
	case Array:
		i, ok := arrayIndex(node, seg)
		if !ok {
			return
		}
		if len(rest) == 0 {
			node.SetIndex(i, assign(node.arr[i], v, opts))
			return
		}
		set(node.arr[i], rest, v, opts)
	}
}

func assign(current, v *Value, opts SetOptions) *Value {
	if opts.Merge && current.IsObject() && v.IsObject() {
		current.Merge(v)
		return current
	}
	return v.Clone()
}

// nest wraps v in one single-key object per segment of path.
func nest(path Path, v *Value) *Value {
	out := v.Clone()
	for i := len(path) - 1; i >= 0; i-- {
		obj := NewObject()
		obj.Set(path[i], out)
		out = obj
	}
	return out
}

var pythonGroupRef = regexp.MustCompile(`\\(\d+)`)

// ReplaceText runs a regular expression substitution on every string leaf
// the path resolves to and returns how many strings changed. Non-string
// leaves are left alone. Groups are referenced with a backslash (\1); a
// dollar sign in the replacement is literal.
func ReplaceText(root *Value, path Path, pattern, replacement string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, err
	}
	replacement = strings.ReplaceAll(replacement, "$", "$$")
	replacement = pythonGroupRef.ReplaceAllString(replacement, `$${$1}`)

	changed := 0
	var targets []*Value
	get(root, path, &targets)
	for _, target := range targets {
		s, ok := target.AsString()
		if !ok {
			continue
		}
		if out := re.ReplaceAllString(s, replacement); out != s {
			target.str = out
			changed++
		}
	}
	return changed, nil
}

// eachChild calls fn for every field of an object or element of an array,
// passing a setter that replaces that child in place.
func eachChild(node *Value, fn func(child *Value, replace func(*Value))) {
	switch node.Kind() {
	case Object:
		for _, k := range node.Keys() {
			key := k
			fn(node.obj[key], func(nv *Value) { node.obj[key] = nv })
		}
	case Array:
		for i := range node.arr {
			idx := i
			fn(node.arr[idx], func(nv *Value) { node.arr[idx] = nv })
		}
	}
}

func literalChild(node *Value, seg string) (*Value, bool) {
	switch node.Kind() {
	case Object:
		return node.Get(seg)
	case Array:
		if i, ok := arrayIndex(node, seg); ok {
			return node.arr[i], true
		}
	}
	return nil, false
}

func arrayIndex(node *Value, seg string) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= len(node.arr) {
		return 0, false
	}
	return i, true
}
