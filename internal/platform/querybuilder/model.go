package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// UpsertModels builds a multi-row upsert from structs tagged with `db:"col"`.
// A `db:"col,keep"` tag writes the column on insert only.
func UpsertModels[T any](table string, models []T, conflictColumns ...string) (string, []any, error) {
	if len(models) == 0 {
		return "", nil, fmt.Errorf("upsert models are required")
	}

	cols, keep, err := modelColumns(reflect.TypeOf(models[0]))
	if err != nil {
		return "", nil, err
	}

	b := Upsert(table, conflictColumns...).Columns(cols...).KeepExisting(keep...)
	for i := range models {
		vals, err := modelValues(models[i])
		if err != nil {
			return "", nil, fmt.Errorf("model %d: %w", i, err)
		}
		b.Values(vals...)
	}
	return b.ToSQL()
}

func modelColumns(typ reflect.Type) ([]string, []string, error) {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct, got %s", typ.Kind())
	}

	cols := make([]string, 0, typ.NumField())
	var keep []string
	for i := 0; i < typ.NumField(); i++ {
		col, opts, ok := dbTag(typ.Field(i))
		if !ok {
			continue
		}
		cols = append(cols, col)
		if opts == "keep" {
			keep = append(keep, col)
		}
	}
	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, keep, nil
}

func modelValues(model any) ([]any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	typ := value.Type()
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		if _, _, ok := dbTag(typ.Field(i)); !ok {
			continue
		}
		vals = append(vals, value.Field(i).Interface())
	}
	return vals, nil
}

func dbTag(field reflect.StructField) (string, string, bool) {
	if field.PkgPath != "" {
		return "", "", false
	}
	tag := strings.TrimSpace(field.Tag.Get("db"))
	if tag == "" || tag == "-" {
		return "", "", false
	}
	name, opts, _ := strings.Cut(tag, ",")
	name = strings.TrimSpace(name)
	if name == "" || name == "-" {
		return "", "", false
	}
	return name, strings.TrimSpace(opts), true
}
