package cnst

const (
	LangEN      = "en"
	LangZH      = "zh"
	LangDefault = LangEN
)
