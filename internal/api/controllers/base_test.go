package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"faktura/internal/api/validator"
	"faktura/internal/models"
	"faktura/internal/rbac"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	callerBusiness = "11111111-1111-1111-1111-111111111111"
	otherBusiness  = "22222222-2222-2222-2222-222222222222"
)

// stubService serves a single fixed entity and records what the
// controller asked of it.
type stubService[T any] struct {
	entity  *T
	filters map[string]interface{}
	created *T
	updated bool
	deleted bool
}

func (s *stubService[T]) Create(ctx context.Context, entity *T, includes ...string) error {
	s.created = entity
	return nil
}

func (s *stubService[T]) Get(ctx context.Context, id string, includes ...string) (*T, error) {
	if s.entity == nil {
		return nil, errors.New("record not found")
	}
	return s.entity, nil
}

func (s *stubService[T]) List(ctx context.Context, page, limit int, filters map[string]interface{}, excludeFields map[string]bool, sortFields []string, order string, includes ...string) ([]T, int64, error) {
	s.filters = filters
	return nil, 0, nil
}

func (s *stubService[T]) Update(ctx context.Context, id string, entity *T, includes ...string) error {
	s.updated = true
	return nil
}

func (s *stubService[T]) Delete(ctx context.Context, id string) error {
	s.deleted = true
	return nil
}

func testContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = validator.NewValidator()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("identity", rbac.Identity{ID: "u1", Role: rbac.RoleManager, BusinessID: callerBusiness})
	return c, rec
}

func requireHTTPStatus(t *testing.T, err error, want int) {
	t.Helper()
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, want, httpErr.Code)
}

func TestGetCrossTenantLooksMissing(t *testing.T) {
	svc := &stubService[models.Client]{entity: &models.Client{BusinessID: otherBusiness, Name: "Acme"}}
	ctrl := NewBaseController[models.Client](svc)

	c, _ := testContext(http.MethodGet, "/clients/c1", "")
	c.SetParamNames("id")
	c.SetParamValues("c1")

	requireHTTPStatus(t, ctrl.Get(c), http.StatusNotFound)
}

func TestGetOwned(t *testing.T) {
	svc := &stubService[models.Client]{entity: &models.Client{BusinessID: callerBusiness, Name: "Acme"}}
	ctrl := NewBaseController[models.Client](svc)

	c, rec := testContext(http.MethodGet, "/clients/c1", "")
	c.SetParamNames("id")
	c.SetParamValues("c1")

	require.NoError(t, ctrl.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateCrossTenantLooksMissing(t *testing.T) {
	svc := &stubService[models.Client]{entity: &models.Client{BusinessID: otherBusiness, Name: "Acme"}}
	ctrl := NewBaseController[models.Client](svc)

	body := `{"businessId":"` + otherBusiness + `","name":"Acme"}`
	c, _ := testContext(http.MethodPut, "/clients/c1", body)
	c.SetParamNames("id")
	c.SetParamValues("c1")

	requireHTTPStatus(t, ctrl.Update(c), http.StatusNotFound)
	assert.False(t, svc.updated, "cross-tenant update must never reach the store")
}

func TestDeleteCrossTenantLooksMissing(t *testing.T) {
	svc := &stubService[models.Client]{entity: &models.Client{BusinessID: otherBusiness, Name: "Acme"}}
	ctrl := NewBaseController[models.Client](svc)

	c, _ := testContext(http.MethodDelete, "/clients/c1", "")
	c.SetParamNames("id")
	c.SetParamValues("c1")

	requireHTTPStatus(t, ctrl.Delete(c), http.StatusNotFound)
	assert.False(t, svc.deleted, "cross-tenant delete must never reach the store")
}

func TestDeleteOwned(t *testing.T) {
	svc := &stubService[models.Client]{entity: &models.Client{BusinessID: callerBusiness, Name: "Acme"}}
	ctrl := NewBaseController[models.Client](svc)

	c, rec := testContext(http.MethodDelete, "/clients/c1", "")
	c.SetParamNames("id")
	c.SetParamValues("c1")

	require.NoError(t, ctrl.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, svc.deleted)
}

func TestListFilterPinsBusiness(t *testing.T) {
	svc := &stubService[models.Client]{}
	ctrl := NewBaseController[models.Client](svc)

	// The caller's own business wins over whatever the query claims.
	c, rec := testContext(http.MethodGet, "/clients?business_id="+otherBusiness, "")
	require.NoError(t, ctrl.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, callerBusiness, svc.filters["business_id"])
}

func TestBusinessOwnership(t *testing.T) {
	ctrl := NewBaseController[models.Business](&stubService[models.Business]{})

	c, _ := testContext(http.MethodGet, "/businesses/x", "")
	foreign := &models.Business{Base: models.Base{ID: otherBusiness}, Name: "Other Co"}
	assert.False(t, ctrl.ownedByCaller(c, foreign), "a business is only owned by its own members")

	own := &models.Business{Base: models.Base{ID: callerBusiness}, Name: "Own Co"}
	assert.True(t, ctrl.ownedByCaller(c, own))
}

func TestBusinessGetCrossTenantLooksMissing(t *testing.T) {
	svc := &stubService[models.Business]{entity: &models.Business{Base: models.Base{ID: otherBusiness}, Name: "Other Co"}}
	ctrl := NewBaseController[models.Business](svc)

	c, _ := testContext(http.MethodGet, "/businesses/"+otherBusiness, "")
	c.SetParamNames("id")
	c.SetParamValues(otherBusiness)

	requireHTTPStatus(t, ctrl.Get(c), http.StatusNotFound)
}

func TestBusinessUpdateCrossTenantLooksMissing(t *testing.T) {
	svc := &stubService[models.Business]{entity: &models.Business{Base: models.Base{ID: otherBusiness}, Name: "Other Co"}}
	ctrl := NewBaseController[models.Business](svc)

	c, _ := testContext(http.MethodPut, "/businesses/"+otherBusiness, `{"name":"Hijacked"}`)
	c.SetParamNames("id")
	c.SetParamValues(otherBusiness)

	requireHTTPStatus(t, ctrl.Update(c), http.StatusNotFound)
	assert.False(t, svc.updated, "cross-tenant business update must never reach the store")
}

func TestBusinessListPinnedToCaller(t *testing.T) {
	svc := &stubService[models.Business]{}
	ctrl := NewBaseController[models.Business](svc)

	c, rec := testContext(http.MethodGet, "/businesses", "")
	require.NoError(t, ctrl.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, callerBusiness, svc.filters["id"], "a business listing only ever shows the caller's own record")
}

func TestOwnershipFailsClosedWithoutIdentity(t *testing.T) {
	ctrl := NewBaseController[models.Client](&stubService[models.Client]{})

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/clients/c1", nil), httptest.NewRecorder())

	assert.False(t, ctrl.ownedByCaller(c, &models.Client{BusinessID: callerBusiness}))
}

func TestStampBusinessOverridesPayload(t *testing.T) {
	ctrl := NewBaseController[models.Client](&stubService[models.Client]{})

	c, _ := testContext(http.MethodPost, "/clients", "")
	entity := &models.Client{BusinessID: otherBusiness, Name: "Acme"}
	ctrl.stampBusiness(c, entity)

	assert.Equal(t, callerBusiness, entity.BusinessID)
}
