package marshmallow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	marshmallow "github.com/brotich/marshmallow"
)

type testBlog struct {
	Title         string
	User          *testUser
	Collaborators []*testUser
	Categories    []string
}

func newTestBlog(u *testUser) *testBlog {
	return &testBlog{
		Title:      "Monty's blog",
		User:       u,
		Categories: []string{"humor", "violence"},
	}
}

func newBlogSchema() *marshmallow.Schema {
	return marshmallow.New().
		Field("title", marshmallow.String()).
		Field("user", marshmallow.Nested(newUserSchema())).
		Field("categories", marshmallow.List(marshmallow.String())).
		MustBuild()
}

func TestNestedField(t *testing.T) {
	inst, err := newBlogSchema().Bind(newTestBlog(newTestUser()))
	require.NoError(t, err)

	data := inst.Data()
	assert.Equal(t, "Monty's blog", data.Value("title"))
	user, ok := data.Value("user").(*marshmallow.Data)
	require.True(t, ok, "nested field must contribute a mapping, got %T", data.Value("user"))
	assert.Equal(t, "Monty", user.Value("name"))
	assert.Equal(t, "monty@python.org", user.Value("email"))
	assert.Equal(t, []any{"humor", "violence"}, data.Value("categories"))
}

func TestNestedFieldErrorsEmbed(t *testing.T) {
	u := newTestUser()
	u.Email = "monty.python.org"
	inst, err := newBlogSchema().Bind(newTestBlog(u))
	require.NoError(t, err)

	errs := inst.Errors()
	child := errs.Nested("user")
	require.NotNil(t, child, "nested failures must embed as a mapping: %v", errs)
	assert.Equal(t, `"monty.python.org" is not a valid email address.`, child["email"])
	assert.False(t, errs.Has("title"))
}

func TestNestedFieldMissing(t *testing.T) {
	inst, err := newBlogSchema().Bind(newTestBlog(nil))
	require.NoError(t, err)
	assert.Nil(t, inst.Data().Value("user"))
	assert.Empty(t, inst.Errors())
}

func TestNestedOnly(t *testing.T) {
	schema := marshmallow.New().
		Field("user", marshmallow.Nested(newUserSchema(), marshmallow.NestedOnly("name", "email"))).
		MustBuild()
	inst, err := schema.Bind(newTestBlog(newTestUser()))
	require.NoError(t, err)
	user := inst.Data().Value("user").(*marshmallow.Data)
	assert.Equal(t, []string{"name", "email"}, user.Keys())
}

func TestNestedExclude(t *testing.T) {
	schema := marshmallow.New().
		Field("user", marshmallow.Nested(newUserSchema(), marshmallow.NestedExclude("balance", "created"))).
		MustBuild()
	inst, err := schema.Bind(newTestBlog(newTestUser()))
	require.NoError(t, err)
	user := inst.Data().Value("user").(*marshmallow.Data)
	assert.False(t, user.Has("balance"))
	assert.False(t, user.Has("created"))
	assert.True(t, user.Has("name"))
}

func TestNestedMany(t *testing.T) {
	schema := marshmallow.New().
		Field("title", marshmallow.String()).
		Field("collaborators", marshmallow.Nested(newUserSchema(), marshmallow.NestedMany())).
		MustBuild()

	blog := newTestBlog(newTestUser())
	blog.Collaborators = []*testUser{
		{Name: "Mick", Email: "mick@stones.com"},
		{Name: "Keith", Email: "keith.stones.com"},
	}
	inst, err := schema.Bind(blog)
	require.NoError(t, err)

	out, ok := inst.Data().Value("collaborators").([]any)
	require.True(t, ok, "nested many must contribute a list, got %T", inst.Data().Value("collaborators"))
	require.Len(t, out, 2)
	assert.Equal(t, "Mick", out[0].(*marshmallow.Data).Value("name"))

	// the second collaborator's failure lands under its index
	child := inst.Errors().Nested("collaborators")
	require.NotNil(t, child)
	assert.False(t, child.Has("0"))
	idx := child.Nested("1")
	require.NotNil(t, idx)
	assert.True(t, idx.Has("email"))
}

func TestNestedManyRequiresSequence(t *testing.T) {
	schema := marshmallow.New().
		Field("collaborators", marshmallow.Nested(newUserSchema(), marshmallow.NestedMany())).
		MustBuild()
	// a scalar where the field expects a sequence is a broken declaration
	_, err := schema.Bind(map[string]any{"collaborators": newTestUser()})
	_, ok := marshmallow.AsConfigError(err)
	require.True(t, ok, "expected a ConfigError, got %v", err)
}

func TestNestedSequenceWithoutMany(t *testing.T) {
	schema := marshmallow.New().
		Field("user", marshmallow.Nested(newUserSchema())).
		MustBuild()
	_, err := schema.Bind(map[string]any{"user": []*testUser{newTestUser()}})
	require.Error(t, err)
	ce, ok := marshmallow.AsConfigError(err)
	require.True(t, ok)
	assert.Contains(t, ce.Msg, "NestedMany()")
}

func TestNestedPluck(t *testing.T) {
	schema := marshmallow.New().
		Field("user", marshmallow.Nested(newUserSchema(), marshmallow.Pluck("name"))).
		MustBuild()
	inst, err := schema.Bind(newTestBlog(newTestUser()))
	require.NoError(t, err)
	assert.Equal(t, "Monty", inst.Data().Value("user"))
}

func TestNestedManyPluck(t *testing.T) {
	schema := marshmallow.New().
		Field("collaborators", marshmallow.Nested(newUserSchema(),
			marshmallow.NestedMany(), marshmallow.Pluck("name"))).
		MustBuild()

	blog := &testBlog{Collaborators: []*testUser{{Name: "Mick"}, {Name: "Keith"}}}
	inst, err := schema.Bind(blog)
	require.NoError(t, err)
	assert.Equal(t, []any{"Mick", "Keith"}, inst.Data().Value("collaborators"))
}

func TestNestedFactoryTarget(t *testing.T) {
	fc := newUserSchema().Factory(marshmallow.Only("name", "email"))
	schema := marshmallow.New().
		Field("title", marshmallow.String()).
		Field("user", marshmallow.Nested(fc)).
		MustBuild()

	inst, err := schema.Bind(newTestBlog(newTestUser()))
	require.NoError(t, err)
	user := inst.Data().Value("user").(*marshmallow.Data)
	assert.Equal(t, []string{"name", "email"}, user.Keys())
}

func TestNestedSelf(t *testing.T) {
	schema := marshmallow.New().
		Field("name", marshmallow.String()).
		Field("employer", marshmallow.Nested(marshmallow.Self)).
		MustBuild()

	boss := &testUser{Name: "Basil"}
	u := &testUser{Name: "Monty", Employer: boss}
	inst, err := schema.Bind(u)
	require.NoError(t, err)

	data := inst.Data()
	assert.Equal(t, "Monty", data.Value("name"))
	employer, ok := data.Value("employer").(*marshmallow.Data)
	require.True(t, ok, "self-nested field must produce a mapping, got %T", data.Value("employer"))
	assert.Equal(t, "Basil", employer.Value("name"))
	// recursion terminates with the data: the boss has no employer
	assert.Nil(t, employer.Value("employer"))
}

func TestNestedSelfStringToken(t *testing.T) {
	schema := marshmallow.New().
		Field("name", marshmallow.String()).
		Field("relatives", marshmallow.Nested("self",
			marshmallow.NestedMany(), marshmallow.NestedOnly("name"))).
		MustBuild()

	u := &testUser{Name: "Monty", Relatives: []*testUser{{Name: "Terry"}}}
	inst, err := schema.Bind(u)
	require.NoError(t, err)
	out := inst.Data().Value("relatives").([]any)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"name"}, out[0].(*marshmallow.Data).Keys())
}

func TestNestedContextPropagates(t *testing.T) {
	userSchema := marshmallow.New().
		Field("name", marshmallow.String()).
		Field("is_owner", marshmallow.FunctionCtx(func(obj any, ctx marshmallow.Context) (any, error) {
			return ctx["owner"] == obj.(*testUser).Name, nil
		})).
		MustBuild()
	schema := marshmallow.New().
		Field("user", marshmallow.Nested(userSchema)).
		MustBuild()

	inst, err := schema.Bind(newTestBlog(newTestUser()),
		marshmallow.WithContext(marshmallow.Context{"owner": "Monty"}))
	require.NoError(t, err)
	user := inst.Data().Value("user").(*marshmallow.Data)
	assert.Equal(t, true, user.Value("is_owner"))
}
