// Package seeder provisions demo accounts, profiles and matches across the
// identity provider and the backend services.
package seeder

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed demo_users.yaml
var defaultUsersYAML []byte

//go:embed demo_users.schema.json
var usersSchemaJSON []byte

const schemaURL = "demo_users.schema.json"

// DefaultPassword is used when a users file does not set one.
const DefaultPassword = "Demo123!"

// User is one demo account.
type User struct {
	FullName  string   `yaml:"full_name" json:"full_name"`
	Username  string   `yaml:"username"  json:"username"`
	Email     string   `yaml:"email"     json:"email"`
	Bio       string   `yaml:"bio"       json:"bio,omitempty"`
	Age       int      `yaml:"age"       json:"age"`
	Location  string   `yaml:"location"  json:"location,omitempty"`
	Interests []string `yaml:"interests" json:"interests,omitempty"`
}

// UserFile is the document format of a users file.
type UserFile struct {
	Password string `yaml:"password"`
	Users    []User `yaml:"users"`
}

var usersSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(usersSchemaJSON)); err != nil {
		panic(fmt.Sprintf("add users schema: %v", err))
	}
	return c.MustCompile(schemaURL)
}

// ParseUsers validates a YAML (or JSON) users document against the schema
// and decodes it.
func ParseUsers(data []byte) (UserFile, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return UserFile{}, fmt.Errorf("parse users file: %w", err)
	}
	// Round-trip through JSON so the validator sees JSON types.
	js, err := json.Marshal(raw)
	if err != nil {
		return UserFile{}, fmt.Errorf("parse users file: %w", err)
	}
	var instance interface{}
	if err := json.Unmarshal(js, &instance); err != nil {
		return UserFile{}, fmt.Errorf("parse users file: %w", err)
	}
	if err := usersSchema.Validate(instance); err != nil {
		return UserFile{}, fmt.Errorf("invalid users file: %w", err)
	}

	var f UserFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return UserFile{}, fmt.Errorf("decode users file: %w", err)
	}
	if f.Password == "" {
		f.Password = DefaultPassword
	}
	seen := map[string]bool{}
	for _, u := range f.Users {
		if seen[u.Username] {
			return UserFile{}, fmt.Errorf("invalid users file: duplicate username %q", u.Username)
		}
		seen[u.Username] = true
	}
	return f, nil
}

// DefaultUsers returns the embedded demo users.
func DefaultUsers() UserFile {
	f, err := ParseUsers(defaultUsersYAML)
	if err != nil {
		panic(err)
	}
	return f
}
