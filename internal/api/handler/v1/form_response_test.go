package v1

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/service"
)

type stubResponses struct {
	filter    domain.FormResponseFilter
	responses map[uint]domain.FormResponse
}

func (s *stubResponses) ListResponses(_ context.Context, qrID uint, filter domain.FormResponseFilter, page int) (domain.Page[domain.FormResponse], error) {
	s.filter = filter
	var out []domain.FormResponse
	for _, r := range s.responses {
		if r.QrID == qrID {
			out = append(out, r)
		}
	}

	return domain.NewPage(out, int64(len(out)), domain.NewPageRequest(page, 50)), nil
}

func (s *stubResponses) GetResponse(_ context.Context, qrID, id uint) (domain.FormResponse, error) {
	r, ok := s.responses[id]
	if !ok || r.QrID != qrID {
		return domain.FormResponse{}, service.ErrFormResponseNotFound
	}

	return r, nil
}

func (s *stubResponses) UpdateStatus(ctx context.Context, qrID, id uint, status domain.FormResponseStatus) (domain.FormResponse, error) {
	r, err := s.GetResponse(ctx, qrID, id)
	if err != nil {
		return domain.FormResponse{}, err
	}
	r.Status = status
	s.responses[id] = r

	return r, nil
}

func (s *stubResponses) DeleteResponse(ctx context.Context, qrID, id uint) error {
	if _, err := s.GetResponse(ctx, qrID, id); err != nil {
		return err
	}
	delete(s.responses, id)

	return nil
}

func newResponseRouter(svc *stubResponses) http.Handler {
	h := NewFormResponseHandler(svc)
	r := newTestRouter(&testAdmin)
	r.GET("/qrs/:qrID/responses", h.HandleListResponses)
	r.GET("/qrs/:qrID/responses/:responseID", h.HandleGetResponse)
	r.PATCH("/qrs/:qrID/responses/:responseID", h.HandleUpdateResponseStatus)
	r.DELETE("/qrs/:qrID/responses/:responseID", h.HandleDeleteResponse)

	return r
}

func newStubResponses() *stubResponses {
	return &stubResponses{responses: map[uint]domain.FormResponse{
		1: {ID: 1, QrID: 3, UserIdentifier: "guest-1", Status: domain.ResponseNew},
		2: {ID: 2, QrID: 4, UserIdentifier: "guest-2", Status: domain.ResponseNew},
	}}
}

func TestFormResponseHandler_List(t *testing.T) {
	svc := newStubResponses()
	r := newResponseRouter(svc)

	rec := doJSON(t, r, http.MethodGet, "/qrs/3/responses?status=new&search=guest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.FormResponseFilter{Search: "guest", Status: "new"}, svc.filter)

	body := decode(t, rec)
	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "guest-1", data[0].(map[string]interface{})["user_identifier"])
	assert.EqualValues(t, 1, body["meta"].(map[string]interface{})["total"])
}

func TestFormResponseHandler_GetUpdateDelete(t *testing.T) {
	svc := newStubResponses()
	r := newResponseRouter(svc)

	rec := doJSON(t, r, http.MethodGet, "/qrs/3/responses/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new", decode(t, rec)["status"])

	rec = doJSON(t, r, http.MethodPatch, "/qrs/3/responses/1", map[string]string{"status": "reviewed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reviewed", decode(t, rec)["status"])
	assert.Equal(t, domain.ResponseReviewed, svc.responses[1].Status)

	rec = doJSON(t, r, http.MethodDelete, "/qrs/3/responses/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Response deleted.", decode(t, rec)["message"])
	assert.NotContains(t, svc.responses, uint(1))
}

func TestFormResponseHandler_InvalidStatus(t *testing.T) {
	svc := newStubResponses()
	r := newResponseRouter(svc)

	rec := doJSON(t, r, http.MethodPatch, "/qrs/3/responses/1", map[string]string{"status": "spam"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec)["errors"], "status")
	assert.Equal(t, domain.ResponseNew, svc.responses[1].Status)
}

func TestFormResponseHandler_ResponseOfAnotherQr(t *testing.T) {
	svc := newStubResponses()
	r := newResponseRouter(svc)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := doJSON(t, r, method, "/qrs/3/responses/2", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
		assert.Equal(t, "response with id 2 not found", decode(t, rec)["error"], method)
	}

	rec := doJSON(t, r, http.MethodPatch, "/qrs/3/responses/2", map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, svc.responses, uint(2))
	assert.Equal(t, domain.ResponseNew, svc.responses[2].Status)
}
