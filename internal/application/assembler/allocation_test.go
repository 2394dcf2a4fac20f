package assembler

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-script-ai-api/internal/domain/entity"
)

func TestAllocate_SumEqualsTierTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tiers := []entity.LengthTier{entity.LengthTierShort, entity.LengthTierMedium, entity.LengthTierLong}

	for iter := 0; iter < 500; iter++ {
		n := 1 + rng.Intn(10)
		chars := make([]entity.CharacterSpec, n)
		for i := range chars {
			chars[i].Name = fmt.Sprintf("C%d", i)
			switch rng.Intn(3) {
			case 0:
				chars[i].Percentage = 0
			default:
				chars[i].Percentage = float64(rng.Intn(100))
			}
		}
		tier := tiers[rng.Intn(len(tiers))]

		alloc, err := Allocate(tier, chars, nil)
		require.NoError(t, err)

		sum := 0
		for _, v := range alloc.Lines {
			assert.GreaterOrEqual(t, v, 0)
			sum += v
		}
		assert.Equal(t, DefaultLengthTiers[string(tier)], sum, "chars=%v tier=%s", chars, tier)
		assert.Len(t, alloc.Order, n)
	}
}

func TestAllocate_EqualShares(t *testing.T) {
	chars := []entity.CharacterSpec{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	alloc, err := Allocate(entity.LengthTierShort, chars, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 7, "B": 7, "C": 6}, alloc.Lines)
	assert.Equal(t, []string{"A", "B", "C"}, alloc.Order)
}

func TestAllocate_Percentages(t *testing.T) {
	chars := []entity.CharacterSpec{{Name: "A", Percentage: 25}, {Name: "B", Percentage: 75}}
	alloc, err := Allocate(entity.LengthTierMedium, chars, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 10, "B": 30}, alloc.Lines)
	assert.Equal(t, []string{"B", "A"}, alloc.Order)
}

func TestAllocate_PartialPercentagesSplitRemainder(t *testing.T) {
	chars := []entity.CharacterSpec{{Name: "A", Percentage: 50}, {Name: "B"}, {Name: "C"}}
	alloc, err := Allocate(entity.LengthTierLong, chars, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 30, "B": 15, "C": 15}, alloc.Lines)
}

func TestAllocate_CustomTiersAndErrors(t *testing.T) {
	alloc, err := Allocate("short", []entity.CharacterSpec{{Name: "Solo"}}, map[string]int{"short": 8})
	require.NoError(t, err)
	assert.Equal(t, 8, alloc.Lines["Solo"])

	_, err = Allocate("epic", []entity.CharacterSpec{{Name: "A"}}, nil)
	assert.Error(t, err)

	_, err = Allocate(entity.LengthTierShort, nil, nil)
	assert.Error(t, err)
}

func TestResolveCharacters(t *testing.T) {
	got := ResolveCharacters(entity.GenerationCriteria{CharacterCount: 2})
	assert.Equal(t, []entity.CharacterSpec{{Name: "Character 1"}, {Name: "Character 2"}}, got)

	got = ResolveCharacters(entity.GenerationCriteria{CharacterCount: 1, Characters: []entity.CharacterSpec{{Name: " Mina ", Percentage: 100}}})
	assert.Equal(t, []entity.CharacterSpec{{Name: "Mina", Percentage: 100}}, got)
}
