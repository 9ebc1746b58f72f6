// Package marshmallow provides:
//
// - Declarative, schema-driven marshaling of arbitrary source objects
//   (struct- or map-shaped) into ordered output mappings
// - Per-field coercion and validation with a stable, overridable message
//   contract, collected into an error mapping mirroring the schema shape
// - Schema composition (Fields/Additional/Exclude at the type level,
//   Only/Exclude/Prefix/Context/Extra per instance) including nested and
//   self-referential sub-schemas
// - A hook pipeline (ordered data handlers, a single error handler) and a
//   pluggable output encoder (JSON by default, YAML available)
//
// Design policy:
// - Keep the public engine in the root package; messages live under i18n/.
// - Schema types are built once via the Builder and are immutable and safe
//   for concurrent use; instances are single-owner and never shared.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	user := marshmallow.New().
//		Field("name", marshmallow.String(marshmallow.Required())).
//		Field("email", marshmallow.Email()).
//		MustBuild()
//
//	inst, err := user.Bind(obj)
//	data := inst.Data()
//	if ok, _ := inst.IsValid(); !ok {
//		errs := inst.Errors()
//		_ = errs
//	}
package marshmallow
