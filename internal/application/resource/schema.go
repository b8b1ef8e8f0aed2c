package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jhoicas/Concesionario-api/internal/domain"
	"github.com/jhoicas/Concesionario-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Schema valida y normaliza el payload de un recurso.
type Schema interface {
	// Parse devuelve solo los campos conocidos por el esquema, ya tipados, o un
	// *domain.ValidationError con todos los campos inválidos.
	Parse(data map[string]any) (entity.Record, error)
	// Partial devuelve la variante con todos los campos opcionales (para updates).
	Partial() Schema
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Los errores reportan el nombre JSON del campo, no el de Go.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// decimal.Decimal se valida como número (gt, gte, min, max, required).
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

type schemaField struct {
	name  string
	index int
	typ   reflect.Type
}

// StructSchema esquema respaldado por un struct T con tags `json` y `validate`.
// El parámetro de tipo fija en compilación el par recurso/esquema.
type StructSchema[T any] struct {
	partial bool
	fields  []schemaField
}

// NewStructSchema construye el esquema. Entra en pánico si T no es un struct (error de despliegue).
func NewStructSchema[T any]() *StructSchema[T] {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("schema: %s no es un struct", t))
	}
	fields := make([]schemaField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fields = append(fields, schemaField{name: name, index: i, typ: f.Type})
	}
	return &StructSchema[T]{fields: fields}
}

// Partial todos los campos opcionales; los presentes se siguen validando.
func (s *StructSchema[T]) Partial() Schema {
	return &StructSchema[T]{partial: true, fields: s.fields}
}

// Parse decodifica campo por campo para poder reportar todos los errores de tipo,
// y luego aplica las reglas `validate`.
func (s *StructSchema[T]) Parse(data map[string]any) (entity.Record, error) {
	var target T
	rv := reflect.ValueOf(&target).Elem()
	out := make(entity.Record, len(s.fields))
	var details []domain.FieldError
	reported := make(map[string]struct{})

	for _, f := range s.fields {
		raw, present := data[f.name]
		if !present {
			continue
		}
		if raw == nil {
			out[f.name] = nil
			continue
		}
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("schema: codificar %s: %w", f.name, err)
		}
		ptr := reflect.New(f.typ)
		if err := json.Unmarshal(b, ptr.Interface()); err != nil {
			details = append(details, domain.FieldError{Field: f.name, Message: "tipo inválido"})
			reported[f.name] = struct{}{}
			continue
		}
		rv.Field(f.index).Set(ptr.Elem())
		out[f.name] = ptr.Elem().Interface()
	}

	if err := validate.Struct(&target); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("schema: validar: %w", err)
		}
		for _, fe := range verrs {
			name := fe.Field()
			if s.partial {
				if _, present := data[name]; !present {
					continue
				}
			}
			if _, dup := reported[name]; dup {
				continue
			}
			reported[name] = struct{}{}
			details = append(details, domain.FieldError{Field: name, Message: fieldMessage(fe)})
		}
	}
	if len(details) > 0 {
		return nil, &domain.ValidationError{Details: details}
	}
	return out, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es requerido"
	case "min":
		return "debe ser como mínimo " + fe.Param()
	case "max":
		return "debe ser como máximo " + fe.Param()
	case "gt":
		return "debe ser mayor que " + fe.Param()
	case "gte":
		return "debe ser mayor o igual que " + fe.Param()
	case "email":
		return "debe ser un email válido"
	case "uuid", "uuid4":
		return "debe ser un UUID válido"
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	default:
		return "no cumple la regla " + fe.Tag()
	}
}
