package entity

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Record es una fila de cualquier recurso registrado. Las llaves son nombres de columna.
type Record map[string]any

// Clone copia superficial del registro.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ID devuelve la columna "id" como texto ("" si no existe).
func (r Record) ID() string {
	return r.String("id")
}

// String devuelve la columna como texto; nil y ausente devuelven "".
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Decimal interpreta la columna como número exacto. Acepta decimal, enteros, float y texto.
func (r Record) Decimal(key string) (decimal.Decimal, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return decimal.Zero, nil
	}
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int32:
		return decimal.NewFromInt32(t), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case float32:
		return decimal.NewFromFloat32(t), nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("columna %s: %w", key, err)
		}
		return d, nil
	case string:
		d, err := decimal.NewFromString(t)
		if err != nil {
			return decimal.Zero, fmt.Errorf("columna %s: %w", key, err)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("columna %s: tipo numérico no soportado %T", key, v)
	}
}
