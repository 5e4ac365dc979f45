package signal

// Lexicons holds the two keyword lists a Scanner matches against.
type Lexicons struct {
	AI         []string `yaml:"ai"`
	Offshoring []string `yaml:"offshoring"`
}

var defaultAI = []string{
	"llm",
	"large language model",
	"generative ai",
	"genai",
	"automation",
	"automated",
	"machine learning",
	"artificial intelligence",
	"copilot",
	"agentic",
	"ai-assisted",
	"rpa",
}

var defaultOffshoring = []string{
	"offshore",
	"offshoring",
	"outsourcing",
	"outsource",
	"nearshore",
	"global delivery",
	"third-party",
	"vendor",
	"managed service provider",
	"msp",
	"shared services",
}

// DefaultLexicons returns fresh copies of the built-in AI/automation and
// offshoring lexicons.
func DefaultLexicons() Lexicons {
	return Lexicons{
		AI:         append([]string(nil), defaultAI...),
		Offshoring: append([]string(nil), defaultOffshoring...),
	}
}
