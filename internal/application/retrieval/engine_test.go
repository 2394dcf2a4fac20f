package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-script-ai-api/internal/domain/entity"
)

type corpusStub struct {
	fragments []entity.ReferenceFragment
	err       error
	calls     int
}

func (c *corpusStub) ListAll(context.Context) ([]entity.ReferenceFragment, error) {
	c.calls++
	return c.fragments, c.err
}

func ids(fragments []entity.ReferenceFragment) []string {
	out := make([]string, 0, len(fragments))
	for _, f := range fragments {
		out = append(out, f.ID)
	}
	return out
}

func TestEngine_RetrieveGenreScenario(t *testing.T) {
	corpus := &corpusStub{fragments: []entity.ReferenceFragment{
		{ID: "r1", Genre: "로맨스", NarrativeContext: "카페에서의 평범한 대화"},
		{ID: "h1", Genre: "호러", NarrativeContext: "고백 데이트 첫사랑"},
		{ID: "r2", Genre: "romance", NarrativeContext: "첫사랑과의 재회, 고백", Emotion: "설렘"},
		{ID: "t1", Genre: "스릴러", NarrativeContext: "추격"},
		{ID: "r3", Genre: "멜로 로맨스", NarrativeContext: "데이트 도중 이별"},
	}}
	e := NewEngine(corpus)

	got, err := e.Retrieve(context.Background(), entity.GenerationCriteria{
		CharacterCount: 2,
		Genre:          "로맨스",
		LengthTier:     entity.LengthTierShort,
	}, 3)
	require.NoError(t, err)
	// r2: 关键词封顶 15，설렘/고백 +5；r3: 데이트+이별 = 10；r1: 0
	assert.Equal(t, []string{"r2", "r3", "r1"}, ids(got))
}

func TestEngine_RetrieveTiesKeepCorpusOrder(t *testing.T) {
	corpus := &corpusStub{fragments: []entity.ReferenceFragment{
		{ID: "a", Genre: "comedy"},
		{ID: "b", Genre: "comedy"},
		{ID: "c", Genre: "comedy", NarrativeContext: "큰 소동"},
		{ID: "d", Genre: "comedy"},
	}}
	got, err := NewEngine(corpus).Retrieve(context.Background(), entity.GenerationCriteria{Genre: "코미디"}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, ids(got))
}

func TestEngine_RetrieveSkipsEmptyGenreFilter(t *testing.T) {
	corpus := &corpusStub{fragments: []entity.ReferenceFragment{
		{ID: "x", Genre: "drama", AgeBracket: "20대"},
		{ID: "y", Genre: "drama", AgeBracket: "40대"},
	}}
	got, err := NewEngine(corpus).Retrieve(context.Background(), entity.GenerationCriteria{
		Genre:      "sf",
		AgeBracket: "young adult",
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, ids(got))
}

func TestEngine_RetrieveGenderWildcardAndFallback(t *testing.T) {
	corpus := &corpusStub{fragments: []entity.ReferenceFragment{
		{ID: "f", Genre: "drama", Gender: "female"},
		{ID: "m", Genre: "drama", Gender: "남성"},
		{ID: "any", Genre: "drama", Gender: "혼성"},
		{ID: "blank", Genre: "drama"},
	}}
	e := NewEngine(corpus)

	got, err := e.Retrieve(context.Background(), entity.GenerationCriteria{Gender: "male"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"m", "any", "blank"}, ids(got))

	// 年龄段过滤后为空时退回完整语料
	got, err = e.Retrieve(context.Background(), entity.GenerationCriteria{AgeBracket: "어린이"}, 10)
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = e.Retrieve(context.Background(), entity.GenerationCriteria{AgeBracket: "random"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"f", "m"}, ids(got))
}

func TestEngine_RetrieveGenderMultiTag(t *testing.T) {
	corpus := &corpusStub{fragments: []entity.ReferenceFragment{
		{ID: "a", Gender: "male, female"},
		{ID: "b", Gender: "남성"},
		{ID: "c", Gender: "female"},
		{ID: "d", Gender: "여성/남성"},
		{ID: "e", Gender: "female / 혼성"},
	}}
	e := NewEngine(corpus)

	got, err := e.Retrieve(context.Background(), entity.GenerationCriteria{Gender: "male"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "d", "e"}, ids(got))

	got, err = e.Retrieve(context.Background(), entity.GenerationCriteria{Gender: entity.GenderRandom}, 10)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestEngine_RetrieveCorpusError(t *testing.T) {
	_, err := NewEngine(&corpusStub{err: errors.New("boom")}).Retrieve(context.Background(), entity.GenerationCriteria{}, 3)
	require.Error(t, err)
}

func TestScore_Caps(t *testing.T) {
	f := entity.ReferenceFragment{
		NarrativeContext: "고백 데이트 첫사랑 이별 재회 kiss",
		Emotion:          "설렘",
	}
	assert.Equal(t, 20, Score(f, "romance"))

	f.Emotion = ""
	assert.Equal(t, 15, Score(f, "romance"))

	assert.Equal(t, 0, Score(f, ""))
}

func TestScore_Deterministic(t *testing.T) {
	f := entity.ReferenceFragment{NarrativeContext: "어둠 속 비명", Emotion: "두려움"}
	first := Score(f, "호러")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Score(f, "호러"))
	}
	assert.Equal(t, 15, first)
}
