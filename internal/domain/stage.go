package domain

import "time"

// Template is one candidate message in a stage's pool.
type Template struct {
	Text        string          `json:"text" yaml:"text"`
	Origin      string          `json:"from" yaml:"from"`
	Consequence ConsequenceKind `json:"consequence" yaml:"consequence"`
}

// Stage bundles a named pool of templates with the reminder interval used for
// the first reminder of every message injected while the stage is active.
type Stage struct {
	Name        string        `json:"name"`
	Templates   []Template    `json:"messages"`
	MinReminder time.Duration `json:"min_reminder"`
	MaxReminder time.Duration `json:"max_reminder"`
}

// CodeChallenge is a remediation exercise matched to messages by keyword.
type CodeChallenge struct {
	Keyword     string `json:"keyword" yaml:"keyword"`
	Description string `json:"description" yaml:"description"`
	BrokenCode  string `json:"broken_code" yaml:"broken_code"`
	Solution    string `json:"-" yaml:"solution"`
	Hint        string `json:"hint" yaml:"hint"`
}
