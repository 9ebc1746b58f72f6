package marshmallow_test

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	marshmallow "github.com/brotich/marshmallow"
)

func TestEncodeJSONKeepsFieldOrder(t *testing.T) {
	schema := marshmallow.New().
		Field("name", marshmallow.String()).
		Field("age", marshmallow.Integer()).
		Field("email", marshmallow.Email()).
		MustBuild()

	inst, err := schema.Bind(newTestUser())
	if err != nil {
		t.Fatal(err)
	}
	out, err := inst.Encode()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"name":"Monty","age":42,"email":"monty@python.org"}`
	if string(out) != want {
		t.Fatalf("encoded output mismatch:\n got  %s\n want %s", out, want)
	}
}

func TestEncodeJSONMany(t *testing.T) {
	schema := marshmallow.New().
		Field("name", marshmallow.String()).
		MustBuild()
	inst, err := schema.BindMany([]*testUser{{Name: "Mick"}, {Name: "Keith"}})
	if err != nil {
		t.Fatal(err)
	}
	out, err := inst.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `[{"name":"Mick"},{"name":"Keith"}]` {
		t.Fatalf("encoded sequence mismatch: %s", out)
	}
}

func TestEncodeIndented(t *testing.T) {
	schema := marshmallow.New().
		Field("name", marshmallow.String()).
		Encoder(marshmallow.JSONEncoder{Indent: "  "}).
		MustBuild()
	inst, err := schema.Bind(newTestUser())
	if err != nil {
		t.Fatal(err)
	}
	out, err := inst.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "\n") {
		t.Fatalf("expected indented output, got %s", out)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("indented output is not valid JSON: %v", err)
	}
}

func TestEncodeYAML(t *testing.T) {
	schema := marshmallow.New().
		Field("name", marshmallow.String()).
		Field("age", marshmallow.Integer()).
		Encoder(marshmallow.YAMLEncoder{}).
		MustBuild()
	inst, err := schema.Bind(newTestUser())
	if err != nil {
		t.Fatal(err)
	}
	out, err := inst.Encode()
	if err != nil {
		t.Fatal(err)
	}
	want := "name: Monty\nage: 42\n"
	if string(out) != want {
		t.Fatalf("yaml output mismatch:\n got  %q\n want %q", out, want)
	}
}

type upperEncoder struct{}

func (upperEncoder) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []byte(strings.ToUpper(string(b))), nil
}

func TestEncoderIsSwappable(t *testing.T) {
	schema := marshmallow.New().
		Field("name", marshmallow.String()).
		Encoder(upperEncoder{}).
		MustBuild()
	inst, err := schema.Bind(newTestUser())
	if err != nil {
		t.Fatal(err)
	}
	out, err := inst.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"NAME":"MONTY"}` {
		t.Fatalf("custom encoder not applied: %s", out)
	}
}

func TestNestedDataEncodesAsObject(t *testing.T) {
	schema := marshmallow.New().
		Field("title", marshmallow.String()).
		Field("user", marshmallow.Nested(newUserSchema(), marshmallow.NestedOnly("name"))).
		MustBuild()
	inst, err := schema.Bind(newTestBlog(newTestUser()))
	if err != nil {
		t.Fatal(err)
	}
	out, err := inst.Encode()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"title":"Monty's blog","user":{"name":"Monty"}}`
	if string(out) != want {
		t.Fatalf("nested encoding mismatch:\n got  %s\n want %s", out, want)
	}
}
