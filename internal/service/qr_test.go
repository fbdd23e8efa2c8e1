package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrdesk/qr-admin-api/internal/domain"
)

var qrTokenPattern = regexp.MustCompile(`^[A-Z0-9]{12}$`)

func TestQrService_CreateQr(t *testing.T) {
	qrs := newFakeQrs()
	svc := NewQrService(qrs, newFakeQuestions(), newFakeItems())

	qr, err := svc.CreateQr(context.Background(), domain.Qr{Name: "Summer fair"})
	require.NoError(t, err)

	assert.Equal(t, domain.QrActive, qr.Status)
	assert.Regexp(t, qrTokenPattern, qr.Token)
}

func TestQrService_RegenerateToken(t *testing.T) {
	qrs := newFakeQrs(domain.Qr{ID: 1, Token: "AAAAAAAAAAAA", Status: domain.QrActive})
	svc := NewQrService(qrs, newFakeQuestions(), newFakeItems())
	ctx := context.Background()

	qr, err := svc.RegenerateToken(ctx, 1)
	require.NoError(t, err)
	assert.NotEqual(t, "AAAAAAAAAAAA", qr.Token)
	assert.Regexp(t, qrTokenPattern, qr.Token)

	_, err = svc.RegenerateToken(ctx, 2)
	assert.ErrorIs(t, err, ErrQrNotFound)
}

func TestQrService_GetActiveQr(t *testing.T) {
	qrs := newFakeQrs(
		domain.Qr{ID: 1, Token: "LIVE", Status: domain.QrActive},
		domain.Qr{ID: 2, Token: "GONE", Status: domain.QrArchived},
	)
	svc := NewQrService(qrs, newFakeQuestions(), newFakeItems())
	ctx := context.Background()

	_, err := svc.GetActiveQr(ctx, "LIVE")
	assert.NoError(t, err)

	_, err = svc.GetActiveQr(ctx, "GONE")
	assert.ErrorIs(t, err, ErrQrNotFound)
}

func TestQrService_GetQrDetail(t *testing.T) {
	qrs := newFakeQrs(domain.Qr{ID: 1, Status: domain.QrActive})
	questions := newFakeQuestions(domain.Question{ID: 1, QrID: 1, Label: "Name", Type: domain.QuestionText})
	items := newFakeItems(domain.Item{ID: 1, QrID: 1, Name: "Teddy"}, domain.Item{ID: 2, QrID: 3, Name: "Other"})
	svc := NewQrService(qrs, questions, items)

	detail, err := svc.GetQrDetail(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, detail.Questions, 1)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "Teddy", detail.Items[0].Name)
}
