package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound        = errors.New("recurso no encontrado o no autorizado")
	ErrUnauthenticated = errors.New("no autenticado")
	ErrForbidden       = errors.New("acceso denegado")
	ErrValidation      = errors.New("validación fallida")
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrDuplicate       = errors.New("recurso duplicado")
	// ErrIntegrity indica que el registro sigue referenciado por otra fila (llave foránea).
	ErrIntegrity = errors.New("el registro está referenciado por otros registros")
	ErrInternal  = errors.New("error interno")
)

// ForbiddenError acceso denegado indicando el permiso que faltó ("{recurso}:{operación}").
type ForbiddenError struct {
	Permission string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("acceso denegado: se requiere el permiso %q", e.Permission)
}

// Unwrap permite errors.Is(err, ErrForbidden).
func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// FieldError detalle de un campo inválido.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError agrupa todos los campos inválidos de un payload, no solo el primero.
type ValidationError struct {
	Details []FieldError
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		fields = append(fields, d.Field)
	}
	return "validación fallida: " + strings.Join(fields, ", ")
}

// Unwrap permite errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error { return ErrValidation }

// InternalError envuelve una falla inesperada de infraestructura conservando la causa.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Is hace que errors.Is(err, ErrInternal) sea verdadero.
func (e *InternalError) Is(target error) bool { return target == ErrInternal }

func (e *InternalError) Unwrap() error { return e.Err }

// Internal envuelve err como InternalError, salvo que ya sea un error de dominio conocido.
func Internal(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	return &InternalError{Op: op, Err: err}
}

// IsDomainError indica si err pertenece a la taxonomía del dominio.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrUnauthenticated, ErrForbidden, ErrValidation,
		ErrInvalidInput, ErrDuplicate, ErrIntegrity, ErrInternal,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
