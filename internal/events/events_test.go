package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	owner := uuid.MustParse("6f1c2a8e-8a5e-4d7e-9a43-0d4b8f3e2c11")
	e := NewProductEvent(ProductDeleted, owner, uuid.New())

	assert.Equal(t, "shelf.product.deleted.6f1c2a8e-8a5e-4d7e-9a43-0d4b8f3e2c11", Subject("shelf", e))
}

func TestEventJSON(t *testing.T) {
	productID := uuid.New()
	e := NewProductEvent(ProductCreated, uuid.New(), productID)

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "product.created", decoded["type"])
	assert.Equal(t, productID.String(), decoded["product_id"])

	profile, err := json.Marshal(NewProfileEvent(uuid.New()))
	require.NoError(t, err)
	assert.NotContains(t, string(profile), "product_id")
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}

	assert.NoError(t, p.Publish(context.Background(), NewProfileEvent(uuid.New())))
	assert.NoError(t, p.Close())
}
