package domain

import "time"

type FormResponseStatus string

const (
	ResponseNew      FormResponseStatus = "new"
	ResponseReviewed FormResponseStatus = "reviewed"
	ResponseArchived FormResponseStatus = "archived"
)

var FormResponseStatuses = []interface{}{string(ResponseNew), string(ResponseReviewed), string(ResponseArchived)}

type FormResponse struct {
	ID             uint               `json:"id"`
	QrID           uint               `json:"qr_id"`
	UserIdentifier string             `json:"user_identifier"`
	Status         FormResponseStatus `json:"status"`
	SubmittedAt    time.Time          `json:"submitted_at"`
	Answers        []Answer           `json:"answers"`
	CreatedAt      time.Time          `json:"created_at"`
}

type Answer struct {
	ID             uint   `json:"id"`
	FormResponseID uint   `json:"form_response_id"`
	QuestionID     uint   `json:"question_id"`
	Value          string `json:"value"`
}

type FormResponseFilter struct {
	Search string
	Status string
}
