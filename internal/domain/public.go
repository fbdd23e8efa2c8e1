package domain

// PublicQr is the QR as shown to people who scanned it.
type PublicQr struct {
	ID     uint     `json:"id"`
	Token  string   `json:"token"`
	Name   string   `json:"name"`
	Status QrStatus `json:"status"`
}

type PublicQuestion struct {
	ID         uint         `json:"id"`
	Label      string       `json:"label"`
	Type       QuestionType `json:"type"`
	IsRequired bool         `json:"is_required"`
	Options    []string     `json:"options"`
	SortOrder  int          `json:"sort_order"`
}

type PublicForm struct {
	Qr        PublicQr         `json:"qr"`
	Questions []PublicQuestion `json:"questions"`
}

func NewPublicForm(qr Qr, questions []Question) PublicForm {
	form := PublicForm{
		Qr:        PublicQr{ID: qr.ID, Token: qr.Token, Name: qr.Name, Status: qr.Status},
		Questions: make([]PublicQuestion, 0, len(questions)),
	}
	for _, q := range questions {
		options := q.Options
		if options == nil {
			options = []string{}
		}
		form.Questions = append(form.Questions, PublicQuestion{
			ID:         q.ID,
			Label:      q.Label,
			Type:       q.Type,
			IsRequired: q.IsRequired,
			Options:    options,
			SortOrder:  q.SortOrder,
		})
	}

	return form
}

// SpinResult is the prize drawn for a pin.
type SpinResult struct {
	Item          WheelItem `json:"item"`
	TransactionID uint      `json:"transaction_id"`
}
