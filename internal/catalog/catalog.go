package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/SARVESHVARADKAR123/courtroom/internal/consequence"
	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
)

//go:embed stages.yaml
var defaultStages []byte

type fileTemplate struct {
	Text        string `yaml:"text"`
	From        string `yaml:"from"`
	Consequence string `yaml:"consequence"`
}

type fileStage struct {
	Name          string         `yaml:"name"`
	ReminderMinMs int64          `yaml:"reminder_min_ms"`
	ReminderMaxMs int64          `yaml:"reminder_max_ms"`
	Messages      []fileTemplate `yaml:"messages"`
}

type file struct {
	Stages []fileStage `yaml:"stages"`
}

// Catalog is the read-only, ordered set of stages.
type Catalog struct {
	stages []domain.Stage
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultStages)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded stages are invalid: %v", err))
	}
	return c
}

// Load reads a catalog from path, or returns the built-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stages file: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%w: parse stages: %v", domain.ErrValidation, err)
	}
	if len(f.Stages) == 0 {
		return nil, fmt.Errorf("%w: catalog has no stages", domain.ErrValidation)
	}

	stages := make([]domain.Stage, 0, len(f.Stages))
	for i, fs := range f.Stages {
		st, err := fs.toStage()
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		stages = append(stages, st)
	}
	return New(stages...), nil
}

// New builds a catalog from already validated stages.
func New(stages ...domain.Stage) *Catalog {
	return &Catalog{stages: stages}
}

func (fs fileStage) toStage() (domain.Stage, error) {
	if fs.Name == "" {
		return domain.Stage{}, fmt.Errorf("%w: stage name is required", domain.ErrValidation)
	}
	if len(fs.Messages) == 0 {
		return domain.Stage{}, fmt.Errorf("%w: stage %q has no messages", domain.ErrValidation, fs.Name)
	}
	if fs.ReminderMinMs <= 0 || fs.ReminderMaxMs < fs.ReminderMinMs {
		return domain.Stage{}, fmt.Errorf("%w: stage %q has invalid reminder range [%d, %d]",
			domain.ErrValidation, fs.Name, fs.ReminderMinMs, fs.ReminderMaxMs)
	}

	templates := make([]domain.Template, 0, len(fs.Messages))
	for _, m := range fs.Messages {
		if m.Text == "" {
			return domain.Stage{}, fmt.Errorf("%w: stage %q has a message without text", domain.ErrValidation, fs.Name)
		}
		kind := consequence.ParseKind(m.Consequence)
		if m.Consequence == "" {
			kind = consequence.KindForText(m.Text)
		}
		templates = append(templates, domain.Template{
			Text:        m.Text,
			Origin:      m.From,
			Consequence: kind,
		})
	}

	return domain.Stage{
		Name:        fs.Name,
		Templates:   templates,
		MinReminder: time.Duration(fs.ReminderMinMs) * time.Millisecond,
		MaxReminder: time.Duration(fs.ReminderMaxMs) * time.Millisecond,
	}, nil
}

// ListStages returns the stages in catalog order.
func (c *Catalog) ListStages() []domain.Stage {
	out := make([]domain.Stage, len(c.stages))
	copy(out, c.stages)
	return out
}

// GetStage returns the stage at index or ErrOutOfRange.
func (c *Catalog) GetStage(index int) (domain.Stage, error) {
	if index < 0 || index >= len(c.stages) {
		return domain.Stage{}, fmt.Errorf("%w: %d not in [0, %d)", domain.ErrOutOfRange, index, len(c.stages))
	}
	return c.stages[index], nil
}

func (c *Catalog) Len() int { return len(c.stages) }
