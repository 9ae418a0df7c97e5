package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Vector is a nullable embedding column. Postgres stores it as
// vector(dim); other databases store the same "[x,y,...]" literal as text.
type Vector struct {
	pgvector.Vector
	Valid bool
}

func NewVector(v []float32) Vector {
	if len(v) == 0 {
		return Vector{}
	}
	return Vector{Vector: pgvector.NewVector(v), Valid: true}
}

func (v Vector) Value() (driver.Value, error) {
	if !v.Valid {
		return nil, nil
	}
	return v.Vector.Value()
}

func (v *Vector) Scan(src any) error {
	if src == nil {
		*v = Vector{}
		return nil
	}
	if err := v.Vector.Scan(src); err != nil {
		return fmt.Errorf("scan vector failed: %w", err)
	}
	v.Valid = true
	return nil
}

// Slice returns the components, or nil for a null vector.
func (v Vector) Slice() []float32 {
	if !v.Valid {
		return nil
	}
	return v.Vector.Slice()
}

func (Vector) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		dim := 1536
		if raw, ok := field.TagSettings["DIM"]; ok {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				dim = n
			}
		}
		return fmt.Sprintf("vector(%d)", dim)
	}
	return "longtext"
}

// JSONMap is a free-form JSON object column.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal json map failed: %w", err)
	}
	return string(b), nil
}

func (m *JSONMap) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*m = JSONMap{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("scan json map: unsupported type %T", src)
	}
	out := JSONMap{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &out); err != nil {
			return fmt.Errorf("unmarshal json map failed: %w", err)
		}
	}
	*m = out
	return nil
}

func (JSONMap) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "json"
}
