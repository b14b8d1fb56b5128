package scenario

import (
	"bytes"
	"embed"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"text/template"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

var builtins = template.Must(template.New("builtin").Funcs(template.FuncMap{
	"q": strconv.Quote,
}).ParseFS(builtinFS, "builtin/*.yaml"))

// Data fills the built-in scenario templates.
type Data struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Bio       string
	Age       int
	// Swipes lists like (true) or pass (false) decisions in order.
	Swipes []bool
}

// DemoPassword is the password used for generated demo users.
const DemoPassword = "Demo123!"

var (
	firstNames = []string{"Erik", "Anna", "Oskar", "Sara", "Magnus", "Elin", "Johan", "Maja"}
	lastNames  = []string{"Astrom", "Lindberg", "Kallstrom", "Blomqvist", "Ohman", "Nyberg", "Sjoberg"}
	bios       = []string{
		"Coffee, long walks and board games.",
		"Hiking in the archipelago every summer.",
		"Amateur chef looking for a taste tester.",
		"Runner, reader and terrible at karaoke.",
	}
)

// NewData generates a plausible demo user from r.
func NewData(r *rand.Rand) Data {
	first := firstNames[r.Intn(len(firstNames))]
	last := lastNames[r.Intn(len(lastNames))]
	swipes := make([]bool, 5)
	for i := range swipes {
		swipes[i] = r.Intn(3) != 0
	}
	return Data{
		FirstName: first,
		LastName:  last,
		Email:     fmt.Sprintf("%s.%s%d@demo.example.se", strings.ToLower(first), strings.ToLower(last), r.Intn(9000)+1000),
		Password:  DemoPassword,
		Bio:       bios[r.Intn(len(bios))],
		Age:       22 + r.Intn(20),
		Swipes:    swipes,
	}
}

// Names lists the built-in scenarios.
func Names() []string {
	var names []string
	for _, t := range builtins.Templates() {
		if n, ok := strings.CutSuffix(t.Name(), ".yaml"); ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Render expands the named built-in scenario with d.
func Render(name string, d Data) ([]byte, error) {
	t := builtins.Lookup(name + ".yaml")
	if t == nil {
		return nil, fmt.Errorf("unknown scenario %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, d); err != nil {
		return nil, fmt.Errorf("render scenario %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Builtin renders and parses the named built-in scenario.
func Builtin(name string, d Data) ([]Step, error) {
	data, err := Render(name, d)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
