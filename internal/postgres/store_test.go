package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPgUUID(t *testing.T) {
	id := uuid.New()
	pg := pgUUID(id)
	assert.True(t, pg.Valid)
	assert.Equal(t, [16]byte(id), pg.Bytes)

	nilPg := pgUUID(uuid.Nil)
	assert.False(t, nilPg.Valid)
}
