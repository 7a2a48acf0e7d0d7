package transaction

var categories = map[Kind][]string{
	KindExpense: {
		"Food",
		"Housing",
		"Transport",
		"Health",
		"Education",
		"Leisure",
		"Clothing",
		"Communication",
		"Savings",
		"Other expense",
	},
	KindIncome: {
		"Salary",
		"Freelance",
		"Business",
		"Agriculture",
		"Transfer received",
		"Investment",
		"Aid",
		"Other income",
	},
}

// Categories returns the vocabulary offered when creating a transaction of
// the given kind. Stored records may carry any category string.
func Categories(kind Kind) []string {
	list := categories[kind]
	out := make([]string, len(list))
	copy(out, list)

	return out
}
