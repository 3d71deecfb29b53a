package idgen_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/pkg/idgen"
)

func TestUUIDGenerator(t *testing.T) {
	id := idgen.NewUUID("sess").Generate()
	require.True(t, strings.HasPrefix(id, "sess_"))
	_, err := uuid.Parse(strings.TrimPrefix(id, "sess_"))
	assert.NoError(t, err)

	plain := idgen.NewUUID("").Generate()
	_, err = uuid.Parse(plain)
	assert.NoError(t, err)
	assert.NotEqual(t, plain, idgen.NewUUID("").Generate())
}

func TestSequentialGenerator(t *testing.T) {
	g := idgen.NewSequential("sess")
	assert.Equal(t, "sess_1", g.Generate())
	assert.Equal(t, "sess_2", g.Generate())
	assert.Equal(t, "1", idgen.NewSequential("").Generate())
}
