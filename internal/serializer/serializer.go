// Package serializer projects models into JSON-ready values, dropping fields
// the caller's scopes may not see. Fields are tagged with
// `szlr:"scope:admin"`; untagged fields and `szlr:"always"` are always kept.
package serializer

import (
	"encoding"
	"encoding/json"
	"io"
	"reflect"
	"strings"
)

const (
	ScopeAdmin = "admin"
	ScopeUser  = "user"
	scopeAll   = "always"
	tagName    = "szlr"
)

// Extender lets a model add computed fields to its projection.
type Extender interface {
	SerializerExtras(scopes []string) map[string]any
}

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// ParseScopes extracts the scope portion from the tag. Example: "scope:admin,self" -> ["admin", "self"]
func ParseScopes(tag string) []string {
	prefix := "scope:"
	idx := strings.Index(tag, prefix)
	if idx == -1 {
		if tag == scopeAll {
			return []string{scopeAll}
		}
		return nil
	}

	scopes := strings.TrimSpace(strings.TrimPrefix(tag[idx:], prefix))
	out := []string{}
	for _, s := range strings.Split(scopes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CanViewField reports whether a field with the given szlr tag is visible to
// a caller holding scopes.
func CanViewField(szlrTag string, scopes []string) bool {
	if szlrTag == "" {
		return true
	}

	for _, required := range ParseScopes(szlrTag) {
		if required == scopeAll {
			return true
		}
		for _, held := range scopes {
			if held == required {
				return true
			}
		}
	}
	return false
}

// Project returns v as maps, slices and leaf values, with every field the
// scopes cannot see removed. Field names follow the json tags.
func Project(v any, scopes ...string) any {
	return project(reflect.ValueOf(v), scopes)
}

// Encode writes the projection of v as JSON.
func Encode(w io.Writer, v any, scopes ...string) error {
	return json.NewEncoder(w).Encode(Project(v, scopes...))
}

func project(v reflect.Value, scopes []string) any {
	if !v.IsValid() {
		return nil
	}

	t := v.Type()
	if t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) {
		if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
			return nil
		}
		return v.Interface()
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return project(v.Elem(), scopes)

	case reflect.Struct:
		return projectStruct(v, scopes)

	case reflect.Slice:
		if v.IsNil() {
			if t.Elem().Kind() == reflect.Uint8 {
				return nil
			}
			return []any{}
		}
		fallthrough
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return v.Interface()
		}
		out := make([]any, v.Len())
		for i := range out {
			out[i] = project(v.Index(i), scopes)
		}
		return out

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[mapKey(iter.Key())] = project(iter.Value(), scopes)
		}
		return out

	default:
		return v.Interface()
	}
}

func projectStruct(v reflect.Value, scopes []string) map[string]any {
	t := v.Type()
	out := make(map[string]any, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omitEmpty, skip := jsonName(field)
		if skip || !CanViewField(field.Tag.Get(tagName), scopes) {
			continue
		}

		fv := v.Field(i)
		if field.Anonymous && field.Tag.Get("json") == "" && indirectKind(field.Type) == reflect.Struct {
			if embedded, ok := project(fv, scopes).(map[string]any); ok {
				for k, val := range embedded {
					out[k] = val
				}
			}
			continue
		}

		if omitEmpty && fv.IsZero() {
			continue
		}
		out[name] = project(fv, scopes)
	}

	if ext, ok := v.Interface().(Extender); ok {
		for k, val := range ext.SerializerExtras(scopes) {
			out[k] = val
		}
	} else if v.CanAddr() {
		if ext, ok := v.Addr().Interface().(Extender); ok {
			for k, val := range ext.SerializerExtras(scopes) {
				out[k] = val
			}
		}
	}

	return out
}

func jsonName(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}

	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = field.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

func indirectKind(t reflect.Type) reflect.Kind {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind()
}

func mapKey(k reflect.Value) string {
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		if b, err := tm.MarshalText(); err == nil {
			return string(b)
		}
	}
	if k.Kind() == reflect.String {
		return k.String()
	}
	b, _ := json.Marshal(k.Interface())
	return strings.Trim(string(b), `"`)
}
