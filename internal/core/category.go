package core

// Category taxonomies are fixed per transaction type.
var (
	ExpenseCategories = []string{"식비", "카페", "교통", "주거", "생활", "쇼핑", "문화", "의료", "용돈", "카드값", "기타"}
	IncomeCategories  = []string{"급여", "부수입", "용돈", "기타"}
)

var categoryEmoji = map[string]string{
	"식비":  "🍚",
	"카페":  "☕",
	"교통":  "🚗",
	"주거":  "🏠",
	"생활":  "🛒",
	"쇼핑":  "🛍",
	"문화":  "🎬",
	"의료":  "💊",
	"용돈":  "💸",
	"카드값": "💳",
	"급여":  "💰",
	"부수입": "💵",
	"기타":  "📌",
}

// CategoryEmoji returns the display icon for a category, with a generic
// fallback for anything outside the taxonomy.
func CategoryEmoji(category string) string {
	if e, ok := categoryEmoji[category]; ok {
		return e
	}
	return "📌"
}

// KnownCategory reports whether the category belongs to the taxonomy for the
// given transaction type.
func KnownCategory(t TxType, category string) bool {
	var cats []string
	switch t {
	case Income:
		cats = IncomeCategories
	case Expense:
		cats = ExpenseCategories
	default:
		return false
	}
	for _, c := range cats {
		if c == category {
			return true
		}
	}
	return false
}
