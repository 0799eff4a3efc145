package query

// stopWords never take part in a search.
var stopWords = map[string]struct{}{
	"и": {}, "в": {}, "на": {}, "с": {}, "по": {}, "из": {}, "к": {}, "от": {}, "для": {}, "о": {},
	"об": {}, "а": {}, "но": {}, "у": {}, "же": {}, "или": {}, "как": {}, "что": {}, "это": {}, "всё": {},
	"все": {}, "его": {}, "её": {}, "их": {}, "он": {}, "она": {}, "они": {}, "мы": {}, "вы": {}, "я": {},
	"не": {}, "ни": {}, "без": {}, "до": {}, "за": {}, "при": {}, "про": {}, "так": {}, "уже": {}, "еще": {},
	"тоже": {}, "только": {}, "можно": {}, "быть": {}, "есть": {}, "был": {}, "была": {},
}

type synonymEntry struct {
	key    string
	values []string
}

// synonyms is ordered: reverse lookups take the first entry that lists a word.
var synonyms = []synonymEntry{
	{"поэзия", []string{"стихи", "стих", "стихотворение"}},
	{"стихи", []string{"поэзия", "стих"}},
	{"стих", []string{"поэзия", "стихи"}},
	{"стихотворение", []string{"поэзия", "стихи"}},
	{"рассказ", []string{"история", "очерк"}},
	{"очерк", []string{"рассказ", "статья"}},
	{"статья", []string{"очерк", "материал"}},
	{"победа", []string{"победитель", "победный"}},
	{"школа", []string{"школьник", "школьный"}},
	{"дети", []string{"ребенок", "ребята"}},
	{"праздник", []string{"праздничный", "празднование"}},
	{"война", []string{"военный", "фронт"}},
	{"татарск", []string{"татарский"}},
}

// IsStopWord reports whether w (lowercase) is excluded from queries.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}
