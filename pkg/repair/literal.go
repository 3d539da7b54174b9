package repair

// literalCompletions maps every non-empty prefix of the JSON literals and
// their Python-style capitalized forms to the full JSON word. A truncated
// "tru" becomes "true", a Python "None" (or its prefix "Non") becomes
// "null". Built once at init and read-only afterwards.
var literalCompletions = map[string]string{}

func init() {
	for word, full := range map[string]string{
		"true":  "true",
		"false": "false",
		"null":  "null",
		"True":  "true",
		"False": "false",
		"None":  "null",
	} {
		for i := 1; i <= len(word); i++ {
			literalCompletions[word[:i]] = full
		}
	}
}

// defaultWrappers is the built-in set of constructor-like call names whose
// argument is unwrapped into a plain value, covering the MongoDB extended
// JSON constructors that show up in copy-pasted shell output.
var defaultWrappers = []string{
	"BinData",
	"DBRef",
	"Date",
	"ISODate",
	"NumberDecimal",
	"NumberDouble",
	"NumberInt",
	"NumberLong",
	"ObjectId",
	"RegExp",
	"Timestamp",
	"UUID",
}
