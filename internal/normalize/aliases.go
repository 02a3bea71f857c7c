package normalize

import "github.com/sells-group/site-advisor/internal/model"

// aliasTable lists, per field, the keys the backend has been seen to use.
// The canonical key comes first.
type aliasTable struct {
	label  []string
	group  []string
	reason []string
	score  []string
}

var reasonAliases = []string{"reason", "사유", "description"}

var tables = map[model.Kind]aliasTable{
	model.KindArea: {
		label:  []string{"district", "행정동명", "label"},
		reason: reasonAliases,
		score:  []string{"score", "지역_추천점수"},
	},
	model.KindIndustry: {
		label:  []string{"category_small", "industry", "업종명"},
		group:  []string{"category_large", "업종_대분류"},
		reason: reasonAliases,
		score:  []string{"score", "업종_추천점수"},
	},
}

// Aliases returns the label, reason and score keys accepted for kind.
func Aliases(kind model.Kind) (label, reason, score []string) {
	t := tables[kind]
	return t.label, t.reason, t.score
}
