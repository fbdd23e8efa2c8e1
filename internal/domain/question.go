package domain

import "time"

type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionNumber   QuestionType = "number"
	QuestionTextarea QuestionType = "textarea"
	QuestionSelect   QuestionType = "select"
	QuestionCheckbox QuestionType = "checkbox"
	QuestionDate     QuestionType = "date"
)

var QuestionTypes = []interface{}{
	string(QuestionText),
	string(QuestionNumber),
	string(QuestionTextarea),
	string(QuestionSelect),
	string(QuestionCheckbox),
	string(QuestionDate),
}

type Question struct {
	ID         uint         `json:"id"`
	QrID       uint         `json:"qr_id"`
	Label      string       `json:"label"`
	Type       QuestionType `json:"type"`
	IsRequired bool         `json:"is_required"`
	Options    []string     `json:"options"`
	SortOrder  int          `json:"sort_order"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// HasOptions reports whether answers are picked from Options.
func (t QuestionType) HasOptions() bool {
	return t == QuestionSelect || t == QuestionCheckbox
}

func (q Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o == value {
			return true
		}
	}

	return false
}

type QuestionFilter struct {
	Search string
	Type   string
}
