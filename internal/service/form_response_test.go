package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrdesk/qr-admin-api/internal/domain"
)

func newFormResponseFixture(t *testing.T) (*FormResponseService, *fakeResponses) {
	t.Helper()

	responses := &fakeResponses{}
	ctx := context.Background()
	for _, r := range []domain.FormResponse{
		{QrID: 1, UserIdentifier: "guest-1", Status: domain.ResponseNew},
		{QrID: 1, UserIdentifier: "guest-2", Status: domain.ResponseReviewed},
		{QrID: 2, UserIdentifier: "guest-3", Status: domain.ResponseNew},
	} {
		_, err := responses.Create(ctx, r)
		require.NoError(t, err)
	}

	qrs := newFakeQrs(domain.Qr{ID: 1, Status: domain.QrActive}, domain.Qr{ID: 2, Status: domain.QrActive})

	return NewFormResponseService(responses, qrs), responses
}

func TestFormResponseService_ListResponses(t *testing.T) {
	svc, _ := newFormResponseFixture(t)
	ctx := context.Background()

	page, err := svc.ListResponses(ctx, 1, domain.FormResponseFilter{}, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, responsesPerPage, page.PerPage)

	page, err = svc.ListResponses(ctx, 1, domain.FormResponseFilter{Status: string(domain.ResponseReviewed)}, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "guest-2", page.Items[0].UserIdentifier)

	_, err = svc.ListResponses(ctx, 9, domain.FormResponseFilter{}, 1)
	assert.ErrorIs(t, err, ErrQrNotFound)
}

func TestFormResponseService_ResponseOfAnotherQr(t *testing.T) {
	svc, responses := newFormResponseFixture(t)
	ctx := context.Background()

	_, err := svc.GetResponse(ctx, 1, 3)
	assert.ErrorIs(t, err, ErrFormResponseNotFound)

	_, err = svc.UpdateStatus(ctx, 1, 3, domain.ResponseArchived)
	assert.ErrorIs(t, err, ErrFormResponseNotFound)

	assert.ErrorIs(t, svc.DeleteResponse(ctx, 1, 3), ErrFormResponseNotFound)
	assert.Len(t, responses.created, 3)
}

func TestFormResponseService_UpdateStatusAndDelete(t *testing.T) {
	svc, responses := newFormResponseFixture(t)
	ctx := context.Background()

	updated, err := svc.UpdateStatus(ctx, 1, 1, domain.ResponseArchived)
	require.NoError(t, err)
	assert.Equal(t, domain.ResponseArchived, updated.Status)

	got, err := svc.GetResponse(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.ResponseArchived, got.Status)

	require.NoError(t, svc.DeleteResponse(ctx, 1, 1))
	_, err = svc.GetResponse(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrFormResponseNotFound)
	assert.Len(t, responses.created, 2)
}
