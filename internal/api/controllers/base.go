package controllers

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"faktura/internal/api/middleware"
	"faktura/internal/models"
	"faktura/internal/rbac"
	"faktura/internal/services"

	"github.com/labstack/echo/v4"
)

// BaseController provides generic CRUD operations for any model
type BaseController[T any] struct {
	service services.BaseService[T]
}

// Guards carries the per-operation middleware a resource is registered
// with. A nil entry means the route is mounted without an extra guard.
type Guards struct {
	Create echo.MiddlewareFunc
	Read   echo.MiddlewareFunc
	Update echo.MiddlewareFunc
	Delete echo.MiddlewareFunc
}

// NewBaseController creates a new base controller
func NewBaseController[T any](service services.BaseService[T]) *BaseController[T] {
	return &BaseController[T]{
		service: service,
	}
}

// parseIncludes parses the include query parameter and returns a slice of relationships to preload
func parseIncludes(ctx echo.Context) []string {
	include := ctx.QueryParam("include")
	if include == "" {
		return nil
	}
	return strings.Split(include, ",")
}

// parseExcludes parses the exclude query parameter and returns a slice of fields to exclude
func parseExcludes(ctx echo.Context) []string {
	exclude := ctx.QueryParam("exclude")
	if exclude == "" {
		return nil
	}
	return strings.Split(exclude, ",")
}

// Create handles creation of new entities
func (c *BaseController[T]) Create(ctx echo.Context) error {
	var entity T
	if err := ctx.Bind(&entity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body "+err.Error())
	}

	if err := ctx.Validate(&entity); err != nil {
		return err
	}

	c.stampBusiness(ctx, &entity)

	includes := parseIncludes(ctx)
	if err := c.service.Create(ctx.Request().Context(), &entity, includes...); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(http.StatusCreated, entity)
}

// Get handles retrieval of a single entity
func (c *BaseController[T]) Get(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}
	includes := parseIncludes(ctx)
	entity, err := c.service.Get(ctx.Request().Context(), id, includes...)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "entity not found")
	}

	if !c.ownedByCaller(ctx, entity) {
		// Cross-tenant reads look like missing rows, not denials.
		return echo.NewHTTPError(http.StatusNotFound, "entity not found")
	}

	return ctx.JSON(http.StatusOK, entity)
}

// stampBusiness forces the caller's business onto entities that carry a
// BusinessID field, regardless of what the payload claimed.
func (c *BaseController[T]) stampBusiness(ctx echo.Context, entity *T) {
	businessID := middleware.GetBusinessID(ctx)
	if businessID == "" {
		return
	}
	v := reflect.ValueOf(entity).Elem()
	field := v.FieldByName("BusinessID")
	if field.IsValid() && field.CanSet() && field.Kind() == reflect.String {
		field.SetString(businessID)
	}
}

// ownedByCaller reports whether an entity belongs to the caller's
// business. Entities that resolve to no tenant fail the check.
func (c *BaseController[T]) ownedByCaller(ctx echo.Context, entity *T) bool {
	identity, ok := middleware.IdentityFrom(ctx)
	if !ok {
		return false
	}
	return rbac.CanAccessBusiness(identity, tenantID(entity))
}

// tenantID extracts the business an entity belongs to. Most models
// carry a BusinessID column; a Business row is the tenant itself, so
// its primary key marks the boundary. Anything else resolves to ""
// and fails ownership.
func tenantID(entity any) string {
	if business, ok := entity.(*models.Business); ok {
		return business.ID
	}
	v := reflect.ValueOf(entity).Elem()
	field := v.FieldByName("BusinessID")
	if field.IsValid() && field.Kind() == reflect.String {
		return field.String()
	}
	return ""
}

func (c *BaseController[T]) applyFilters(ctx echo.Context, filters map[string]interface{}) map[string]interface{} {
	// Tenant scoping is not caller-controlled: any business_id from the
	// query string is overwritten with the authenticated business. A
	// Business listing is pinned to the caller's own record.
	if businessID := middleware.GetBusinessID(ctx); businessID != "" {
		var entity T
		entityType := reflect.TypeOf(entity)
		if _, found := entityType.FieldByName("BusinessID"); found {
			filters["business_id"] = businessID
		} else if _, ok := any(&entity).(*models.Business); ok {
			filters["id"] = businessID
		}
	}
	if userID := middleware.GetUserID(ctx); userID != "" {
		// Check if entity supports user_id field using reflection
		var entity T
		entityType := reflect.TypeOf(entity)
		if _, found := entityType.FieldByName("UserID"); found {
			filters["user_id"] = userID
		}
	}

	return filters
}

// List handles retrieval of multiple entities with pagination and filtering
func (c *BaseController[T]) List(ctx echo.Context) error {
	// Parse pagination parameters
	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	exclude := parseExcludes(ctx)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	// Parse filters from query parameters
	filters := make(map[string]interface{})
	for key, values := range ctx.QueryParams() {
		if key != "page" && key != "limit" && key != "include" && key != "exclude" && key != "sort" && key != "order" && len(values) > 0 {
			filters[key] = values[0]
		}
	}

	filters = c.applyFilters(ctx, filters)

	includes := parseIncludes(ctx)

	excludeFields := make(map[string]bool)

	for _, field := range exclude {
		excludeFields[field] = true

	}
	// we also need to sort the fields based on the fields in the entity and the order of the sort query parameter
	sort := ctx.QueryParam("sort")
	order := ctx.QueryParam("order")
	var sortFields []string
	if sort != "" {
		var entity T
		entityType := reflect.TypeOf(entity)
		for _, field := range strings.Split(sort, ",") {
			if _, found := entityType.FieldByName(field); found {
				sortFields = append(sortFields, field)
			}
		}
	}

	entities, total, err := c.service.List(ctx.Request().Context(), page, limit, filters, excludeFields, sortFields, order, includes...)

	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"data":  entities,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Update handles updating an existing entity
func (c *BaseController[T]) Update(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	existing, err := c.service.Get(ctx.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "entity not found")
	}
	if !c.ownedByCaller(ctx, existing) {
		return echo.NewHTTPError(http.StatusNotFound, "entity not found")
	}

	var entity T
	if err := ctx.Bind(&entity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := ctx.Validate(&entity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	includes := parseIncludes(ctx)
	if err := c.service.Update(ctx.Request().Context(), id, &entity, includes...); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(http.StatusOK, entity)
}

// Delete handles deletion of an entity
func (c *BaseController[T]) Delete(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	existing, err := c.service.Get(ctx.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "entity not found")
	}
	if !c.ownedByCaller(ctx, existing) {
		return echo.NewHTTPError(http.StatusNotFound, "entity not found")
	}

	if err := c.service.Delete(ctx.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RegisterRoutes mounts CRUD routes under path with per-operation guards.
func (c *BaseController[T]) RegisterRoutes(g *echo.Group, path string, guards Guards) {
	g.POST(path, c.Create, optional(guards.Create)...)
	g.GET(path+"/:id", c.Get, optional(guards.Read)...)
	g.GET(path, c.List, optional(guards.Read)...)
	g.PUT(path+"/:id", c.Update, optional(guards.Update)...)
	g.DELETE(path+"/:id", c.Delete, optional(guards.Delete)...)
}

func optional(m echo.MiddlewareFunc) []echo.MiddlewareFunc {
	if m == nil {
		return nil
	}
	return []echo.MiddlewareFunc{m}
}
