package injector

import "sort"

// History is the set of resolved message texts.
type History struct {
	texts map[string]struct{}
}

func NewHistory() *History {
	return &History{texts: make(map[string]struct{})}
}

func (h *History) Add(text string) {
	h.texts[text] = struct{}{}
}

func (h *History) Has(text string) bool {
	if h == nil {
		return false
	}
	_, ok := h.texts[text]
	return ok
}

func (h *History) Clear() {
	clear(h.texts)
}

func (h *History) Len() int { return len(h.texts) }

// List returns the texts in lexical order.
func (h *History) List() []string {
	out := make([]string, 0, len(h.texts))
	for t := range h.texts {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
