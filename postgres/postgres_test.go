package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xdbsoft/polystore/api"
	"github.com/xdbsoft/polystore/dialect"
)

func TestInsertRow(t *testing.T) {

	now := time.Date(2018, 8, 24, 5, 0, 0, 0, time.UTC)

	row := insertRow(api.Document{"name": "alice"}, now)

	assert.Equal(t, "alice", row["name"])
	assert.NotEmpty(t, row[dialect.NativeIDField])
	assert.NotContains(t, row, api.IDField)
	assert.Equal(t, now, row[dialect.CreatedAtField])
	assert.Equal(t, now, row[dialect.UpdatedAtField])
}

func TestInsertRow_CallerIdentifier(t *testing.T) {

	now := time.Date(2018, 8, 24, 5, 0, 0, 0, time.UTC)

	row := insertRow(api.Document{api.IDField: "doc1", "name": "alice"}, now)

	assert.Equal(t, "doc1", row[dialect.NativeIDField])
	assert.NotContains(t, row, api.IDField)
}

func TestInsertRow_DoesNotMutatePayload(t *testing.T) {

	doc := api.Document{"name": "alice"}
	insertRow(doc, time.Now())

	assert.Equal(t, api.Document{"name": "alice"}, doc)
}

func TestInsertRow_AssignedIdentifiersDiffer(t *testing.T) {

	now := time.Now()
	a := insertRow(api.Document{}, now)
	b := insertRow(api.Document{}, now)

	assert.NotEqual(t, a[dialect.NativeIDField], b[dialect.NativeIDField])
}

func TestAggregate_Unsupported(t *testing.T) {

	s := &store{}

	_, err := s.Aggregate(nil, "test", []api.Document{{"$match": map[string]interface{}{}}})
	assert.Error(t, err)

	u, ok := err.(interface{ IsUnsupported() bool })
	assert.True(t, ok && u.IsUnsupported())
}
