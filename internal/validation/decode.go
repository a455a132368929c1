package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Decode copies string values into the exported fields of the struct dst
// points to, matching by JSON name. Unknown names are ignored. Values that
// do not parse are reported per field; the rest are still applied.
func Decode(dst any, values map[string][]string) Fields {
	rv := reflect.ValueOf(dst).Elem()
	rt := rv.Type()
	errs := Fields{}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name := jsonName(sf)
		if name == "" {
			continue
		}
		vs, ok := values[name]
		if !ok || len(vs) == 0 {
			continue
		}
		if err := setField(rv.Field(i), vs[0]); err != nil {
			errs[name] = append(errs[name], err.Error())
		}
	}
	return errs
}

// Names lists the JSON names Decode understands for the struct v.
func Names(v any) []string {
	rt := reflect.TypeOf(v)
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	var out []string
	for i := 0; i < rt.NumField(); i++ {
		if name := jsonName(rt.Field(i)); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func jsonName(sf reflect.StructField) string {
	if !sf.IsExported() {
		return ""
	}
	name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func setField(f reflect.Value, raw string) error {
	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return errors.New("must be an integer")
		}
		f.SetInt(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errors.New("must be a number")
		}
		f.SetFloat(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return errors.New("must be true or false")
		}
		f.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", f.Kind())
	}
	return nil
}
