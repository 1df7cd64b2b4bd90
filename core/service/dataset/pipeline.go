// Package dataset implements three template-method pipelines
// (load -> validate -> transform -> serialize) sharing one method
// surface, avoiding a class hierarchy deeper than one level per the
// tagged-variant design.
package dataset

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jpmarichal/ccmwf-go/core/domain"
)

// Pipeline is the shared capability set every dataset variant
// implements.
type Pipeline interface {
	DatasetID() string
	Load(ctx context.Context) ([]domain.MissionaryRecord, error)
	Validate(rows []domain.MissionaryRecord) error
	Transform(rows []domain.MissionaryRecord) (any, error)
}

// Run executes the template method and wraps the transformed value
// with the metadata tuple every pipeline produces.
func Run(ctx context.Context, p Pipeline, branchID string, gen domain.GenerationDate) (any, domain.DatasetMetadata, error) {
	rows, err := p.Load(ctx)
	if err != nil {
		return nil, domain.DatasetMetadata{}, err
	}
	if err := p.Validate(rows); err != nil {
		return nil, domain.DatasetMetadata{}, err
	}
	result, err := p.Transform(rows)
	if err != nil {
		return nil, domain.DatasetMetadata{}, err
	}

	meta := domain.DatasetMetadata{
		GenerationDate: gen,
		BuiltAt:        time.Now().UTC(),
		RowCount:       len(rows),
		CacheKey:       domain.CacheKey(p.DatasetID(), branchID, gen),
	}
	return result, meta, nil
}

// Serialize is the shared serialize step: plain JSON, matching how the
// cache layer stores opaque byte payloads.
func Serialize(v any) ([]byte, error) {
	return json.Marshal(v)
}
