package idx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/bookly/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := idx.New()
	require.NotEmpty(t, id.String())

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestNewAtIsSortable(t *testing.T) {
	earlier := idx.NewAt(time.Unix(1700000000, 0).UTC())
	later := idx.NewAt(time.Unix(1700000060, 0).UTC())

	require.Less(t, earlier.String(), later.String())
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := idx.Parse("not-a-ulid")
	require.ErrorIs(t, err, idx.ErrInvalid)

	_, err = idx.Parse("")
	require.ErrorIs(t, err, idx.ErrInvalid)
}
