package retrieval

// genreSynonyms 题材同义词表（韩/英），key 为规范名
var genreSynonyms = map[string][]string{
	"romance":  {"로맨스", "연애", "사랑", "멜로", "romantic", "love"},
	"comedy":   {"코미디", "개그", "유머", "시트콤", "humor", "funny"},
	"drama":    {"드라마", "가족", "일상", "휴먼", "family", "slice of life"},
	"thriller": {"스릴러", "서스펜스", "미스터리", "추리", "suspense", "mystery"},
	"horror":   {"호러", "공포", "괴담", "scary"},
	"fantasy":  {"판타지", "마법", "이세계", "magic"},
	"action":   {"액션", "무협", "격투", "fight"},
	"sf":       {"에스에프", "공상과학", "sci-fi", "science fiction"},
	"youth":    {"청춘", "학원", "성장", "school", "coming-of-age"},
}

// ageSynonyms 年龄段同义词表
var ageSynonyms = map[string][]string{
	"child":  {"어린이", "아동", "유아", "kid", "kids", "children"},
	"teen":   {"10대", "청소년", "학생", "teenager", "teens"},
	"20s":    {"20대", "청년", "young adult"},
	"30s":    {"30대", "thirties"},
	"40s":    {"40대", "중년", "middle-aged"},
	"senior": {"50대", "60대", "노년", "어르신", "elderly", "50s", "60s"},
}

// genderSynonyms 性别同义词表；性别按整词匹配，避免 male/female 互相包含
var genderSynonyms = map[string][]string{
	"male":   {"남", "남성", "남자", "man", "men", "m"},
	"female": {"여", "여성", "여자", "woman", "women", "f"},
	"mixed":  {"혼성", "혼합", "all", "any"},
}

// genderWildcards 片段性别为这些值（或为空）时匹配任意请求性别
var genderWildcards = map[string]struct{}{
	"":      {},
	"mixed": {},
	"혼성":    {},
}

// genreKeywords 叙事上下文中体现题材的关键词，每个不同关键词 +5 分
var genreKeywords = map[string][]string{
	"romance":  {"고백", "데이트", "첫사랑", "설렘", "이별", "재회", "confession", "date", "kiss", "heartbreak"},
	"comedy":   {"오해", "소동", "실수", "장난", "misunderstanding", "prank", "mishap"},
	"drama":    {"가족", "갈등", "화해", "눈물", "conflict", "reconciliation", "sacrifice"},
	"thriller": {"추격", "비밀", "범인", "단서", "chase", "secret", "clue", "suspect"},
	"horror":   {"귀신", "어둠", "비명", "저주", "ghost", "darkness", "scream", "curse"},
	"fantasy":  {"마법", "용", "왕국", "예언", "magic", "dragon", "kingdom", "prophecy"},
	"action":   {"결투", "폭발", "구출", "대결", "duel", "explosion", "rescue"},
	"sf":       {"우주", "로봇", "미래", "시간여행", "space", "robot", "future", "time travel"},
	"youth":    {"학교", "시험", "동아리", "졸업", "school", "exam", "club", "graduation"},
}

// emotionSituation 情绪与情境的固定搭配，命中任意一组 +5 分
type emotionSituation struct {
	emotion   string
	situation string
}

var emotionSituationPairs = []emotionSituation{
	{"설렘", "고백"},
	{"슬픔", "이별"},
	{"기쁨", "재회"},
	{"분노", "배신"},
	{"긴장", "추격"},
	{"두려움", "어둠"},
	{"excitement", "confession"},
	{"sadness", "farewell"},
	{"joy", "reunion"},
	{"anger", "betrayal"},
	{"tension", "chase"},
	{"fear", "darkness"},
}
