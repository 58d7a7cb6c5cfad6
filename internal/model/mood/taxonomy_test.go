package mood

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomyShape(t *testing.T) {
	require.Len(t, Mains(), 5)
	seen := map[Sub]bool{}
	for _, main := range Mains() {
		subs := Subs(main)
		require.Len(t, subs, SubsPerMain, "main %s", main)
		for _, sub := range subs {
			assert.False(t, seen[sub], "sub %s listed twice", sub)
			seen[sub] = true
		}
	}
	assert.Len(t, Pairs(), 25)
}

func TestValidate(t *testing.T) {
	pair, err := Validate("best", "proud")
	require.NoError(t, err)
	assert.Equal(t, Pair{Main: Best, Sub: Proud}, pair)

	_, err = Validate("best", "angry")
	assert.ErrorIs(t, err, ErrInvalidPair)

	_, err = Validate("great", "proud")
	assert.ErrorIs(t, err, ErrInvalidPair)

	_, err = Validate("", "")
	assert.ErrorIs(t, err, ErrInvalidPair)
}

func TestSubsUnknownMain(t *testing.T) {
	assert.Nil(t, Subs("great"))
	assert.False(t, IsMain("great"))
	assert.True(t, IsMain("neutral"))
}

func TestKeyValidate(t *testing.T) {
	assert.NoError(t, Key{Year: 2024, Month: 2, Day: 29}.Validate())
	assert.ErrorIs(t, Key{Year: 2025, Month: 2, Day: 29}.Validate(), ErrInvalidDate)
	assert.ErrorIs(t, Key{Year: 2025, Month: 0, Day: 1}.Validate(), ErrInvalidDate)
	assert.ErrorIs(t, Key{Year: 2025, Month: 4, Day: 31}.Validate(), ErrInvalidDate)
}
