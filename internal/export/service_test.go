package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/robostock/catalog-ingest/internal/entity"
)

type staticLister struct {
	recs []*entity.ProductRecord
}

func (s *staticLister) List(_ context.Context) ([]*entity.ProductRecord, error) {
	return s.recs, nil
}

func TestExportCatalogXLSX(t *testing.T) {
	price := 99.5
	lister := &staticLister{recs: []*entity.ProductRecord{{
		Name:        "Robo Arm",
		Brand:       "ABB",
		ProductType: "Arm",
		Price:       &price,
		SourceRefs: []entity.SourceRef{
			{FileName: "abb-2026.pdf"},
			{FileName: "arm.urdf"},
		},
		CreatedAt: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}}}

	raw, err := NewService(lister, nil).ExportCatalogXLSX(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Catalog")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Brand", rows[0][0])
	assert.Equal(t, "ABB", rows[1][0])
	assert.Equal(t, "Robo Arm", rows[1][1])
	assert.Equal(t, "abb-2026.pdf, arm.urdf", rows[1][5])
}

func TestExportCatalogXLSX_Empty(t *testing.T) {
	raw, err := NewService(&staticLister{}, nil).ExportCatalogXLSX(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}
