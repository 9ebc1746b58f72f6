package marshmallow_test

import (
	"time"

	"github.com/google/uuid"

	marshmallow "github.com/brotich/marshmallow"
)

// testUser mirrors the attribute surface the schemas in these tests expect.
// Pointer fields model truly-absent attributes.
type testUser struct {
	Name           string
	Age            float64
	Email          string
	Homepage       string
	Balance        float64
	Registered     bool
	Created        time.Time
	Updated        time.Time
	UID            uuid.UUID
	TimeRegistered time.Time
	Birthdate      time.Time
	SinceCreated   time.Duration
	Sex            string
	Employer       *testUser
	Relatives      []*testUser
}

var testCreated = time.Date(2013, 11, 10, 14, 20, 58, 0, time.UTC)

func newTestUser() *testUser {
	return &testUser{
		Name:           "Monty",
		Age:            42.3,
		Email:          "monty@python.org",
		Homepage:       "http://monty.python.org/",
		Balance:        100,
		Registered:     true,
		Created:        testCreated,
		UID:            uuid.MustParse("12345678-1234-5678-1234-567812345678"),
		TimeRegistered: time.Date(0, 1, 1, 14, 20, 58, 123456000, time.UTC),
		Birthdate:      time.Date(1980, 2, 25, 0, 0, 0, 0, time.UTC),
		SinceCreated:   90 * time.Minute,
		Sex:            "male",
	}
}

// newUserSchema builds the reference schema used across the suite. Each test
// builds its own copy so hook registration never leaks between tests.
func newUserSchema() *marshmallow.Schema {
	return marshmallow.New().
		Doc("A registered user of the site.").
		Field("name", marshmallow.String()).
		Field("age", marshmallow.Float()).
		Field("email", marshmallow.Email()).
		Field("homepage", marshmallow.URL()).
		Field("balance", marshmallow.Price()).
		Field("registered", marshmallow.Boolean()).
		Field("created", marshmallow.DateTime()).
		MustBuild()
}
