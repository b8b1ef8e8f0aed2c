package http

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Concesionario-api/internal/domain"
)

func TestErrorWriter_Classify(t *testing.T) {
	w := errorWriter{log: zerolog.Nop()}
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{&domain.ValidationError{Details: []domain.FieldError{{Field: "name", Message: "es requerido"}}}, fiber.StatusBadRequest, "VALIDATION"},
		{fmt.Errorf("%w: cuerpo JSON inválido", domain.ErrInvalidInput), fiber.StatusBadRequest, "INVALID_BODY"},
		{domain.ErrUnauthenticated, fiber.StatusUnauthorized, "UNAUTHENTICATED"},
		{&domain.ForbiddenError{Permission: "jobs:delete"}, fiber.StatusForbidden, "FORBIDDEN"},
		{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("orders.order_number: %w", domain.ErrDuplicate), fiber.StatusConflict, "DUPLICATE"},
		{fmt.Errorf("fk: %w", domain.ErrIntegrity), fiber.StatusConflict, "INTEGRITY"},
		{&domain.InternalError{Op: "listar", Err: errors.New("timeout")}, fiber.StatusInternalServerError, "INTERNAL"},
		{errors.New("inesperado"), fiber.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		status, body := w.classify(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, body.Code, tt.err.Error())
	}
}

func TestErrorWriter_DetalleInternoConfigurable(t *testing.T) {
	err := &domain.InternalError{Op: "listar jobs", Err: errors.New("relation \"jobs\" does not exist")}

	_, hidden := errorWriter{log: zerolog.Nop()}.classify(err)
	assert.Equal(t, "error interno", hidden.Error)

	_, exposed := errorWriter{log: zerolog.Nop(), exposeInternal: true}.classify(err)
	assert.Contains(t, exposed.Error, "does not exist")
}

func TestErrorWriter_ForbiddenNombraElPermiso(t *testing.T) {
	_, body := errorWriter{log: zerolog.Nop()}.classify(&domain.ForbiddenError{Permission: "jobs:delete"})
	assert.Contains(t, body.Error, "jobs:delete")
}

func TestDecodeBody(t *testing.T) {
	body, err := decodeBody([]byte(`{"quantity": 3, "price": 12.50, "tags": [1, 2.5], "meta": {"n": 7}}`))
	assert.NoError(t, err)
	assert.Equal(t, int64(3), body["quantity"])
	assert.Equal(t, "12.5", fmt.Sprint(body["price"]))
	assert.Equal(t, int64(1), body["tags"].([]any)[0])
	assert.Equal(t, int64(7), body["meta"].(map[string]any)["n"])

	empty, err := decodeBody([]byte("  "))
	assert.NoError(t, err)
	assert.Empty(t, empty)

	_, err = decodeBody([]byte(`{"a": 1} {"b": 2}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = decodeBody([]byte(`[1, 2]`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = decodeBody([]byte(`{"a": `))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
