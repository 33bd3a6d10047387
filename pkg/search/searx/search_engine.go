package searx

var searchEnginesOperators = map[string]string{
	"ddg": "duckduckgo",
	"bi":  "bing",
	"yh":  "yahoo",
	"qw":  "qwant",
}
