package entity

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestGenerationCriteria_CheckCharacters(t *testing.T) {
	c := &GenerationCriteria{CharacterCount: 2, LengthTier: LengthTierShort}
	assert.NoError(t, c.CheckCharacters())

	c.Characters = []CharacterSpec{{Name: "A"}, {Name: "B"}}
	assert.NoError(t, c.CheckCharacters())

	c.Characters = []CharacterSpec{{Name: "A"}}
	assert.Error(t, c.CheckCharacters())

	c.Characters = []CharacterSpec{{Name: "A"}, {Name: " A "}}
	assert.ErrorContains(t, c.CheckCharacters(), "duplicate")

	c.Characters = []CharacterSpec{{Name: "Mina"}, {Name: "mina"}}
	assert.ErrorContains(t, c.CheckCharacters(), "duplicate")

	c.Characters = []CharacterSpec{{Name: "A"}, {Name: "  "}}
	assert.ErrorContains(t, c.CheckCharacters(), "empty")
}

func TestCharacterSpec_NameLengthMatchesLimit(t *testing.T) {
	v := validator.New()

	ok := CharacterSpec{Name: strings.Repeat("김", MaxCharacterNameLen)}
	assert.NoError(t, v.Struct(ok))

	tooLong := CharacterSpec{Name: strings.Repeat("김", MaxCharacterNameLen+1)}
	assert.Error(t, v.Struct(tooLong))
}
