package http

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Concesionario-api/internal/application/dto"
	"github.com/jhoicas/Concesionario-api/internal/application/resource"
	"github.com/jhoicas/Concesionario-api/internal/domain"
)

// ResourceHandler expone el motor genérico en /api/v1/{recurso}.
type ResourceHandler struct {
	svc          *resource.Service
	errs         errorWriter
	defaultLimit int
}

// NewResourceHandler construye el handler. exposeInternal incluye el detalle de
// los errores 500 en la respuesta (solo para desarrollo).
func NewResourceHandler(svc *resource.Service, log zerolog.Logger, defaultLimit int, exposeInternal bool) *ResourceHandler {
	return &ResourceHandler{
		svc:          svc,
		errs:         errorWriter{log: log, exposeInternal: exposeInternal},
		defaultLimit: defaultLimit,
	}
}

// Resources godoc
// @Summary      Recursos registrados
// @Tags         resources
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ResourcesResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/v1/_resources [get]
func (h *ResourceHandler) Resources(c *fiber.Ctx) error {
	names, err := h.svc.Resources(CurrentUser(c))
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(dto.ResourcesResponse{Success: true, Data: names})
}

// List godoc
// @Summary      Listar registros
// @Description  Parámetros distintos de page, limit, search y q se aplican como filtros de igualdad.
// @Tags         resources
// @Security     Bearer
// @Produce      json
// @Param        resource  path   string  true   "Recurso"
// @Param        page      query  int     false  "Página"  default(1)
// @Param        limit     query  int     false  "Límite"  default(50)
// @Param        search    query  string  false  "Búsqueda sobre los campos buscables"
// @Success      200  {object}  dto.ListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/{resource} [get]
func (h *ResourceHandler) List(c *fiber.Ctx) error {
	params := resource.ParseListParams(c.Queries(), h.defaultLimit)
	out, err := h.svc.List(c.UserContext(), CurrentUser(c), c.Params("resource"), params)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear registro
// @Tags         resources
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        resource  path  string  true  "Recurso"
// @Param        body      body  object  true  "Campos del registro"
// @Success      201  {object}  dto.RecordResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/{resource} [post]
func (h *ResourceHandler) Create(c *fiber.Ctx) error {
	body, err := decodeBody(c.Body())
	if err != nil {
		return h.errs.write(c, err)
	}
	rec, err := h.svc.Create(c.UserContext(), CurrentUser(c), c.Params("resource"), body)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RecordResponse{Success: true, Data: rec})
}

// Read godoc
// @Summary      Obtener registro por ID
// @Tags         resources
// @Security     Bearer
// @Produce      json
// @Param        resource  path  string  true  "Recurso"
// @Param        id        path  string  true  "ID del registro"
// @Success      200  {object}  dto.RecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/{resource}/{id} [get]
func (h *ResourceHandler) Read(c *fiber.Ctx) error {
	rec, err := h.svc.Read(c.UserContext(), CurrentUser(c), c.Params("resource"), c.Params("id"))
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(dto.RecordResponse{Success: true, Data: rec})
}

// Update godoc
// @Summary      Actualizar registro (parcial)
// @Tags         resources
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        resource  path  string  true  "Recurso"
// @Param        id        path  string  true  "ID del registro"
// @Param        body      body  object  true  "Campos a actualizar"
// @Success      200  {object}  dto.RecordResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/{resource}/{id} [put]
func (h *ResourceHandler) Update(c *fiber.Ctx) error {
	body, err := decodeBody(c.Body())
	if err != nil {
		return h.errs.write(c, err)
	}
	rec, err := h.svc.Update(c.UserContext(), CurrentUser(c), c.Params("resource"), c.Params("id"), body)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(dto.RecordResponse{Success: true, Data: rec})
}

// Delete godoc
// @Summary      Eliminar registro
// @Description  Si el registro está referenciado y el recurso define política de desactivación, se desactiva.
// @Tags         resources
// @Security     Bearer
// @Produce      json
// @Param        resource  path  string  true  "Recurso"
// @Param        id        path  string  true  "ID del registro"
// @Success      200  {object}  dto.DeleteResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/{resource}/{id} [delete]
func (h *ResourceHandler) Delete(c *fiber.Ctx) error {
	out, err := h.svc.Delete(c.UserContext(), CurrentUser(c), c.Params("resource"), c.Params("id"))
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// decodeBody lee un objeto JSON conservando la precisión de los números
// (enteros a int64, el resto a decimal). Cuerpo vacío equivale a {}.
func decodeBody(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: cuerpo JSON inválido", domain.ErrInvalidInput)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: se esperaba un único objeto JSON", domain.ErrInvalidInput)
	}
	if body == nil {
		body = map[string]any{}
	}
	for k, v := range body {
		body[k] = normalizeNumber(v)
	}
	return body, nil
}

func normalizeNumber(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d
		}
		return t.String()
	case map[string]any:
		for k, inner := range t {
			t[k] = normalizeNumber(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = normalizeNumber(inner)
		}
		return t
	default:
		return v
	}
}
