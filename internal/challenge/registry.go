package challenge

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
)

//go:embed challenges.yaml
var defaultChallenges []byte

type file struct {
	Challenges []domain.CodeChallenge `yaml:"challenges"`
}

// Registry is an ordered, read-only list of code challenges.
type Registry struct {
	challenges []domain.CodeChallenge
}

func Default() *Registry {
	r, err := Parse(defaultChallenges)
	if err != nil {
		panic(fmt.Sprintf("challenge: embedded registry is invalid: %v", err))
	}
	return r
}

// Load reads a registry from path, or returns the built-in registry when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read challenges file: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%w: parse challenges: %v", domain.ErrValidation, err)
	}
	for i, c := range f.Challenges {
		if strings.TrimSpace(c.Keyword) == "" || c.Solution == "" {
			return nil, fmt.Errorf("%w: challenge %d needs a keyword and a solution", domain.ErrValidation, i)
		}
	}
	return &Registry{challenges: f.Challenges}, nil
}

// Find returns the first challenge whose keyword is contained in text, ignoring case.
func (r *Registry) Find(text string) (domain.CodeChallenge, bool) {
	lower := strings.ToLower(text)
	for _, c := range r.challenges {
		if strings.Contains(lower, strings.ToLower(c.Keyword)) {
			return c, true
		}
	}
	return domain.CodeChallenge{}, false
}

// Matches reports whether any challenge applies to text.
func (r *Registry) Matches(text string) bool {
	_, ok := r.Find(text)
	return ok
}

func (r *Registry) List() []domain.CodeChallenge {
	out := make([]domain.CodeChallenge, len(r.challenges))
	copy(out, r.challenges)
	return out
}

var whitespace = regexp.MustCompile(`\s+`)

// Normalize trims every line, drops blank lines, and collapses whitespace runs to one space.
func Normalize(code string) string {
	lines := strings.Split(code, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return whitespace.ReplaceAllString(strings.Join(kept, "\n"), " ")
}

// Validate compares the normalized submission against the normalized solution.
func Validate(c domain.CodeChallenge, submitted string) bool {
	return Normalize(submitted) == Normalize(c.Solution)
}
