package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/service"
)

type stubPlans struct {
	plans map[uint]domain.Plan
}

func (s *stubPlans) ListPlans(_ context.Context) ([]domain.Plan, error) {
	out := make([]domain.Plan, 0, len(s.plans))
	for id := uint(1); id <= uint(len(s.plans)); id++ {
		if p, ok := s.plans[id]; ok {
			out = append(out, p)
		}
	}

	return out, nil
}

func (s *stubPlans) CreatePlan(_ context.Context, plan domain.Plan) (domain.Plan, error) {
	plan.ID = uint(len(s.plans) + 1)
	s.plans[plan.ID] = plan

	return plan, nil
}

func (s *stubPlans) UpdatePlan(_ context.Context, plan domain.Plan) (domain.Plan, error) {
	if _, ok := s.plans[plan.ID]; !ok {
		return domain.Plan{}, service.ErrPlanNotFound
	}
	s.plans[plan.ID] = plan

	return plan, nil
}

func (s *stubPlans) DeletePlan(_ context.Context, id uint) error {
	if _, ok := s.plans[id]; !ok {
		return service.ErrPlanNotFound
	}
	delete(s.plans, id)

	return nil
}

func newPlanRouter(svc *stubPlans) http.Handler {
	h := NewPlanHandler(svc)
	r := newTestRouter(&testAdmin)
	r.GET("/plans", h.HandleListPlans)
	r.POST("/plans", h.HandleCreatePlan)
	r.PUT("/plans/:planID", h.HandleUpdatePlan)
	r.DELETE("/plans/:planID", h.HandleDeletePlan)

	return r
}

func TestPlanHandler_CRUD(t *testing.T) {
	svc := &stubPlans{plans: map[uint]domain.Plan{1: {ID: 1, Name: "free", DisplayName: "Free", Detail: "One QR"}}}
	r := newPlanRouter(svc)

	rec := doJSON(t, r, http.MethodPost, "/plans", map[string]string{"name": "pro", "display_name": "Pro", "detail": "Unlimited QRs"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 2, decode(t, rec)["id"])

	rec = doJSON(t, r, http.MethodGet, "/plans", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var plans []domain.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plans))
	require.Len(t, plans, 2)
	assert.Equal(t, "free", plans[0].Name)
	assert.Equal(t, "pro", plans[1].Name)

	rec = doJSON(t, r, http.MethodPut, "/plans/2", map[string]string{"name": "pro", "display_name": "Professional", "detail": "Unlimited QRs"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Professional", decode(t, rec)["display_name"])

	rec = doJSON(t, r, http.MethodDelete, "/plans/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Plan deleted.", decode(t, rec)["message"])
	assert.Len(t, svc.plans, 1)
}

func TestPlanHandler_Errors(t *testing.T) {
	r := newPlanRouter(&stubPlans{plans: map[uint]domain.Plan{}})

	rec := doJSON(t, r, http.MethodPost, "/plans", map[string]string{"name": "pro"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decode(t, rec)["errors"].(map[string]interface{})
	assert.Contains(t, errs, "display_name")
	assert.Contains(t, errs, "detail")

	rec = doJSON(t, r, http.MethodPut, "/plans/9", map[string]string{"name": "pro", "display_name": "Pro", "detail": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/plans/9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
