package seed

import (
	"bytes"
	_ "embed"
)

//go:embed campus.yaml
var campusFixture []byte

// Campus returns the built-in demo fixture.
func Campus() (*Fixture, error) {
	return Load(bytes.NewReader(campusFixture))
}
