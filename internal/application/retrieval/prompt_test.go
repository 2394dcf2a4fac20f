package retrieval

import (
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"z-script-ai-api/internal/domain/entity"
)

func TestBuildPromptContext(t *testing.T) {
	assert.Empty(t, BuildPromptContext(nil, 0))

	out := BuildPromptContext([]entity.ReferenceFragment{
		{ID: "1", Text: "A: 안녕\nB: 반가워", Genre: "로맨스", Emotion: "설렘", RhythmicPhrases: pq.StringArray{"그러니까", " ", "있잖아"}},
		{ID: "2", Text: "   "},
		{ID: "3", Text: strings.Repeat("가", 30)},
	}, 20)

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "[1] (로맨스 / 설렘) A: 안녕 B: 반가워", lines[0])
	assert.Equal(t, "    rhythm: 그러니까 | 있잖아", lines[1])
	assert.Equal(t, "[2] (Reference) "+strings.Repeat("가", 20)+"…", lines[2])
}
