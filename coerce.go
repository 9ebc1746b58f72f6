package marshmallow

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	guuid "github.com/google/uuid"

	"github.com/brotich/marshmallow/i18n"
)

// output runs the full extraction -> default -> required -> coercion ->
// validation pipeline for one field against one source object. A returned
// error is either a *MarshalError (collected unless strict), an ErrorMap
// (nested/list failure, embedded under the field key), or a *ConfigError
// (always fatal).
func (f *Field) output(name string, acc accessor, env *marshalEnv) (any, error) {
	var v any
	var missing bool

	switch f.kind {
	case KindMethod, KindFunction:
		res, err := f.invoke(env)
		if err != nil {
			return nil, f.override(err)
		}
		v, missing = res, false
	default:
		raw, ok := acc.get(name)
		v = raw
		missing = isMissing(raw, ok)
		if missing && f.hasDef {
			v = f.def
			missing = isMissing(v, true)
		}
		if missing && f.required {
			// The required contract is never overridden by ErrorMsg.
			return nil, marshalErr(i18n.T(i18n.CodeRequired, nil), nil)
		}
	}

	coerced, err := f.coerce(name, v, missing, env)
	if err != nil {
		return nil, f.override(err)
	}
	if f.validate != nil && coerced != nil {
		if ok := runValidator(f.validate, coerced); !ok {
			return nil, f.override(marshalErr(i18n.T(i18n.CodeNotTrue, map[string]string{
				"value": fmt.Sprint(coerced),
			}), nil))
		}
	}
	return coerced, nil
}

// override applies the field's ErrorMsg to marshal failures. Config errors
// and embedded nested error maps keep their shape.
func (f *Field) override(err error) error {
	if f.errMsg == "" {
		return err
	}
	if me, ok := AsMarshalError(err); ok {
		return &MarshalError{Msg: f.errMsg, Underlying: me.Underlying}
	}
	return err
}

// failValue is the value stored in the output mapping when the field failed:
// the variant default, so a non-strict marshal never leaves garbage behind.
func (f *Field) failValue() any {
	if f.hasDef {
		return f.def
	}
	switch f.kind {
	case KindString:
		return ""
	case KindInteger:
		return int64(0)
	case KindFloat:
		return 0.0
	case KindBoolean:
		return false
	case KindFixed:
		return strconv.FormatFloat(0, 'f', f.digits, 64)
	case KindArbitrary:
		return "0"
	default:
		return nil
	}
}

// runValidator merges a predicate panic with a false return: both are the
// same generic validation failure.
func runValidator(pred func(any) bool, v any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return pred(v)
}

func (f *Field) invoke(env *marshalEnv) (any, error) {
	if f.kind == KindMethod {
		return env.callMethod(f.methodName)
	}
	if f.fnCtx != nil {
		if env.ctx == nil {
			return nil, marshalErr(i18n.T(i18n.CodeMarshal, map[string]string{
				"cause": "no context available for context-aware field",
			}), nil)
		}
		return f.fnCtx(env.obj, env.ctx)
	}
	if f.fn == nil {
		return nil, configErrf("marshmallow: Function field requires a callable")
	}
	return f.fn(env.obj)
}

func (f *Field) coerce(name string, v any, missing bool, env *marshalEnv) (any, error) {
	switch f.kind {
	case KindRaw, KindMethod, KindFunction:
		if missing {
			return nil, nil
		}
		return v, nil

	case KindString:
		if missing || v == nil {
			return "", nil
		}
		return stringify(v), nil

	case KindInteger:
		if missing {
			return int64(0), nil
		}
		n, err := toInt(v)
		if err != nil {
			return nil, castErr(err)
		}
		return n, nil

	case KindFloat:
		if missing {
			return 0.0, nil
		}
		n, err := toFloat(v)
		if err != nil {
			return nil, castErr(err)
		}
		return n, nil

	case KindBoolean:
		return truthy(v), nil

	case KindFixed:
		n := 0.0
		if !missing {
			var err error
			if n, err = toFloat(v); err != nil {
				return nil, castErr(err)
			}
		}
		return strconv.FormatFloat(n, 'f', f.digits, 64), nil

	case KindArbitrary:
		n := 0.0
		if !missing {
			var err error
			if n, err = toFloat(v); err != nil {
				return nil, castErr(err)
			}
		}
		return strconv.FormatFloat(n, 'f', -1, 64), nil

	case KindDateTime, KindLocalDateTime:
		if missing {
			return nil, nil
		}
		t, ok := toTime(v)
		if !ok {
			return nil, marshalErr(i18n.T(i18n.CodeMarshal, map[string]string{
				"cause": fmt.Sprintf("%T is not a datetime", v),
			}), nil)
		}
		format := f.format
		if format == "" {
			format = env.dateformat
		}
		return formatDateTime(t, format, f.kind == KindLocalDateTime), nil

	case KindDate:
		if missing {
			return nil, nil
		}
		t, ok := toTime(v)
		if !ok {
			return nil, marshalErr(i18n.T(i18n.CodeInvalidDate, map[string]string{
				"value": fmt.Sprint(v),
			}), nil)
		}
		return isoDate(t), nil

	case KindTime:
		if missing {
			return nil, nil
		}
		t, ok := toTime(v)
		if !ok {
			return nil, marshalErr(i18n.T(i18n.CodeInvalidTime, map[string]string{
				"value": fmt.Sprint(v),
			}), nil)
		}
		return isoTime(t), nil

	case KindTimeDelta:
		if missing {
			return nil, nil
		}
		d, ok := toDuration(v)
		if !ok {
			return nil, marshalErr(i18n.T(i18n.CodeMarshal, map[string]string{
				"cause": fmt.Sprintf("%T is not a duration", v),
			}), nil)
		}
		return d.Seconds(), nil

	case KindUUID:
		if missing {
			return nil, nil
		}
		switch u := v.(type) {
		case guuid.UUID:
			return u.String(), nil
		case *guuid.UUID:
			return u.String(), nil
		default:
			return stringify(v), nil
		}

	case KindURL:
		// An empty string is an unset attribute, not a malformed URL.
		if s := stringify(v); !missing && s != "" {
			return f.coerceURL(s)
		}
		return nil, nil

	case KindEmail:
		if s := stringify(v); !missing && s != "" {
			return coerceEmail(s)
		}
		return nil, nil

	case KindSelect:
		if missing {
			return nil, nil
		}
		for _, c := range f.choices {
			if looseEqual(v, c) {
				return v, nil
			}
		}
		return nil, marshalErr(i18n.T(i18n.CodeInvalidChoice, map[string]string{
			"value": fmt.Sprint(v),
		}), nil)

	case KindList:
		return f.coerceList(name, v, missing, env)

	case KindNested:
		return f.outputNested(v, missing, env)
	}
	return v, nil
}

func (f *Field) coerceURL(s string) (any, error) {
	u, err := url.Parse(s)
	if err == nil && u.Scheme != "" && u.Host != "" {
		return s, nil
	}
	if f.relative && err == nil && s != "" {
		return s, nil
	}
	data := map[string]string{"value": s}
	if err == nil && u.Scheme == "" {
		data["suggestion"] = "http://" + s
	}
	return nil, marshalErr(i18n.T(i18n.CodeInvalidURL, data), err)
}

func coerceEmail(s string) (any, error) {
	at := strings.LastIndexByte(s, '@')
	if at > 0 && at < len(s)-1 {
		domain := s[at+1:]
		dot := strings.IndexByte(domain, '.')
		if dot > 0 && dot < len(domain)-1 {
			return s, nil
		}
	}
	return nil, marshalErr(i18n.T(i18n.CodeInvalidEmail, map[string]string{"value": s}), nil)
}

// coerceList coerces each element through the element field, collecting
// failures under the element index.
func (f *Field) coerceList(name string, v any, missing bool, env *marshalEnv) (any, error) {
	if f.elem == nil {
		return nil, configErrf("marshmallow: List element must be a field instance")
	}
	if missing {
		return nil, nil
	}
	seq, ok := asSequence(v)
	if !ok {
		return nil, marshalErr(i18n.T(i18n.CodeMarshal, map[string]string{
			"cause": fmt.Sprintf("%T is not a sequence", v),
		}), nil)
	}
	out := make([]any, 0, seq.Len())
	var em ErrorMap
	for i := 0; i < seq.Len(); i++ {
		ev := seq.Index(i).Interface()
		coerced, err := f.elem.coerce(name, ev, isMissing(ev, true), env)
		if err == nil && f.elem.validate != nil && coerced != nil {
			if !runValidator(f.elem.validate, coerced) {
				err = marshalErr(i18n.T(i18n.CodeNotTrue, map[string]string{
					"value": fmt.Sprint(coerced),
				}), nil)
			}
		}
		if err != nil {
			if _, fatal := AsConfigError(err); fatal {
				return nil, err
			}
			if em == nil {
				em = ErrorMap{}
			}
			em[strconv.Itoa(i)] = errEntry(f.elem.override(err))
			out = append(out, f.elem.failValue())
			continue
		}
		out = append(out, coerced)
	}
	if em != nil {
		return out, em
	}
	return out, nil
}

// errEntry converts a field failure into its error-mapping representation.
func errEntry(err error) any {
	if em, ok := err.(ErrorMap); ok {
		return em
	}
	if me, ok := AsMarshalError(err); ok {
		return me.Msg
	}
	return err.Error()
}

func castErr(cause error) *MarshalError {
	return marshalErr(i18n.T(i18n.CodeMarshal, map[string]string{"cause": cause.Error()}), cause)
}

// ---- scalar coercion helpers ----

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func toInt(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	default:
		return 0, fmt.Errorf("cannot cast %T to integer", v)
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("cannot cast %T to float", v)
	}
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	default:
		return time.Time{}, false
	}
}

func toDuration(v any) (time.Duration, bool) {
	switch d := v.(type) {
	case time.Duration:
		return d, true
	case *time.Duration:
		if d == nil {
			return 0, false
		}
		return *d, true
	default:
		return 0, false
	}
}

// truthy mirrors duck-typed boolean coercion: nil, zero numbers, empty
// strings and empty collections are false, everything else is true.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}

func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() == rb.Type() && ra.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b) || fmt.Sprint(a) == fmt.Sprint(b)
}
