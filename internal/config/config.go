package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"pkdindustries/codi/internal/search"
)

const (
	DefaultModel  = "ft:gpt-3.5-turbo-0125:personal:di-txn-assist:9GCDhNRR"
	DefaultPrompt = "You are allowed to generate search_query text on Financial Industries such as Dividends, Earnings per share/EPS etc. and plug into functions.  Provide Answer with Reference link from function in the format: [Answer](URL)"
)

type Configuration struct {
	Web     *WebConfig
	IRC     *IRCConfig
	Bot     *BotConfig
	Model   *ModelConfig
	Session *SessionConfig
	API     *APIConfig
	Search  *SearchConfig
}

type WebConfig struct {
	Listen string
}

type IRCConfig struct {
	Nick        string
	Server      string
	Port        int
	Channel     string
	SSL         bool
	TLSInsecure bool
	SASLNick    string
	SASLPass    string
	Addressed   bool
	ChunkMax    int
}

type BotConfig struct {
	Verbose         bool
	Prompt          string
	Stream          bool
	ShowToolActions bool
}

type ModelConfig struct {
	Model       string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

type SessionConfig struct {
	TTL time.Duration
}

type APIConfig struct {
	Timeout   time.Duration
	OpenAIKey string
	OpenAIURL string
}

type SearchConfig struct {
	APIKey  string
	URL     string
	Engine  string
	Results int
	Timeout time.Duration
}

// YamlSource implements cli.ValueSource for a map loaded from YAML
type YamlSource struct {
	data map[string]any
	key  string
}

func (y *YamlSource) Lookup() (string, bool) {
	if v, ok := y.data[y.key]; ok {
		if slice, ok := v.([]any); ok {
			var strs []string
			for _, item := range slice {
				strs = append(strs, fmt.Sprintf("%v", item))
			}
			return strings.Join(strs, ","), true
		}
		return fmt.Sprintf("%v", v), true
	}
	return "", false
}

func (y *YamlSource) String() string   { return "yaml" }
func (y *YamlSource) GoString() string { return "yaml" }

// LoadYaml reads a flat key/value YAML config file
func LoadYaml(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var configData map[string]any
	if err := yaml.Unmarshal(data, &configData); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return configData, nil
}

func GetFlags() []cli.Flag {
	configPath := getConfigPath(os.Args)
	var configData map[string]any
	if configPath != "" {
		data, err := LoadYaml(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to read config file %s: %v\n", configPath, err)
		}
		configData = data
	}
	return Flags(configData)
}

// Flags builds the flag set; each value resolves EnvVar > YAML > Default.
func Flags(configData map[string]any) []cli.Flag {
	src := func(key string, env ...string) cli.ValueSourceChain {
		chain := cli.ValueSourceChain{}
		for _, e := range env {
			chain.Chain = append(chain.Chain, cli.EnvVar(e))
		}
		if configData != nil {
			chain.Chain = append(chain.Chain, &YamlSource{data: configData, key: key})
		}
		return chain
	}

	return []cli.Flag{
		// Config file
		&cli.StringFlag{Name: "config", Aliases: []string{"b"}, Usage: "use the named configuration file", Sources: cli.EnvVars("CODI_CONFIG")},

		// Web
		&cli.StringFlag{Name: "listen", Aliases: []string{"l"}, Value: ":8501", Usage: "address the chat page listens on", Sources: src("listen", "CODI_LISTEN")},

		// IRC
		&cli.StringFlag{Name: "nick", Aliases: []string{"n"}, Value: "codi", Usage: "bot's nickname on the irc server", Sources: src("nick", "CODI_NICK")},
		&cli.StringFlag{Name: "server", Aliases: []string{"s"}, Value: "localhost", Usage: "irc server address", Sources: src("server", "CODI_SERVER")},
		&cli.BoolFlag{Name: "tls", Aliases: []string{"e"}, Usage: "enable TLS for the IRC connection", Sources: src("tls", "CODI_TLS")},
		&cli.BoolFlag{Name: "tlsinsecure", Usage: "skip TLS certificate verification", Sources: src("tlsinsecure", "CODI_TLSINSECURE")},
		&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 6667, Usage: "irc server port", Sources: src("port", "CODI_PORT")},
		&cli.StringFlag{Name: "channel", Aliases: []string{"c"}, Usage: "irc channel to join", Sources: src("channel", "CODI_CHANNEL")},
		&cli.StringFlag{Name: "saslnick", Usage: "nick used for SASL", Sources: src("saslnick", "CODI_SASLNICK")},
		&cli.StringFlag{Name: "saslpass", Usage: "password for SASL plain", Sources: src("saslpass", "CODI_SASLPASS")},
		&cli.BoolFlag{Name: "addressed", Aliases: []string{"a"}, Value: true, Usage: "require bot be addressed by nick for response", Sources: src("addressed", "CODI_ADDRESSED")},
		&cli.IntFlag{Name: "chunkmax", Aliases: []string{"m"}, Value: 350, Usage: "maximum number of characters to send as a single irc message", Sources: src("chunkmax", "CODI_CHUNKMAX")},

		// Bot
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}, Usage: "enable verbose logging of sessions and configuration", Sources: src("verbose", "CODI_VERBOSE")},
		&cli.StringFlag{Name: "prompt", Value: DefaultPrompt, Usage: "initial system prompt", Sources: src("prompt", "CODI_PROMPT")},
		&cli.BoolFlag{Name: "stream", Value: true, Usage: "stream responses as they are generated", Sources: src("stream", "CODI_STREAM")},
		&cli.BoolFlag{Name: "showtoolactions", Value: true, Usage: "show a notice while the web search runs", Sources: src("showtoolactions", "CODI_SHOWTOOLACTIONS")},

		// Model API
		&cli.StringFlag{Name: "openaikey", Usage: "OpenAI API key", Sources: src("openaikey", "CODI_OPENAIKEY", "OPENAI_API_KEY", "API_KEY")},
		&cli.StringFlag{Name: "openaiurl", Usage: "OpenAI API URL (for custom endpoints)", Sources: src("openaiurl", "CODI_OPENAIURL", "BASE_URL")},
		&cli.StringFlag{Name: "model", Value: DefaultModel, Usage: "model to be used for responses", Sources: src("model", "CODI_MODEL")},
		&cli.IntFlag{Name: "maxtokens", Value: 1024, Usage: "maximum number of tokens to generate", Sources: src("maxtokens", "CODI_MAXTOKENS")},
		&cli.FloatFlag{Name: "temperature", Value: 0.7, Usage: "temperature for the completion", Sources: src("temperature", "CODI_TEMPERATURE")},
		&cli.FloatFlag{Name: "top_p", Value: 1.0, Usage: "top P value for the completion", Sources: src("top_p", "CODI_TOP_P")},
		&cli.DurationFlag{Name: "apitimeout", Aliases: []string{"t"}, Value: time.Minute * 2, Usage: "timeout for each completion request", Sources: src("apitimeout", "CODI_APITIMEOUT")},

		// Search API
		&cli.StringFlag{Name: "serpapikey", Usage: "SerpAPI key for web search", Sources: src("serpapikey", "CODI_SERPAPIKEY", "SERP_API_KEY")},
		&cli.StringFlag{Name: "serpapiurl", Value: "https://serpapi.com/search.json", Usage: "SerpAPI endpoint", Sources: src("serpapiurl", "CODI_SERPAPIURL")},
		&cli.StringFlag{Name: "searchengine", Value: "google", Usage: "search engine selected at the provider", Sources: src("searchengine", "CODI_SEARCHENGINE")},
		&cli.IntFlag{Name: "searchresults", Value: 3, Usage: "number of top results passed to the model (1-3)", Sources: src("searchresults", "CODI_SEARCHRESULTS")},
		&cli.DurationFlag{Name: "searchtimeout", Value: time.Second * 30, Usage: "timeout for each search request", Sources: src("searchtimeout", "CODI_SEARCHTIMEOUT")},

		// Sessions
		&cli.DurationFlag{Name: "sessionduration", Aliases: []string{"S"}, Value: time.Minute * 30, Usage: "conversation is discarded after it is unused for this duration", Sources: src("sessionduration", "CODI_SESSIONDURATION")},
	}
}

func getConfigPath(args []string) string {
	if v := os.Getenv("CODI_CONFIG"); v != "" {
		return v
	}
	for i, arg := range args {
		if arg == "--config" || arg == "-b" {
			if i+1 < len(args) {
				return args[i+1]
			}
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}

func mask(secret string) string {
	if len(secret) > 3 {
		return strings.Repeat("*", len(secret)-3) + secret[len(secret)-3:]
	}
	return secret
}

func (c *Configuration) PrintConfig() {
	fmt.Printf("listen: %s\n", c.Web.Listen)
	fmt.Printf("nick: %s\n", c.IRC.Nick)
	fmt.Printf("server: %s\n", c.IRC.Server)
	fmt.Printf("port: %d\n", c.IRC.Port)
	fmt.Printf("channel: %s\n", c.IRC.Channel)
	fmt.Printf("tls: %t\n", c.IRC.SSL)
	fmt.Printf("tlsinsecure: %t\n", c.IRC.TLSInsecure)
	fmt.Printf("saslnick: %s\n", c.IRC.SASLNick)
	fmt.Printf("saslpass: %s\n", mask(c.IRC.SASLPass))
	fmt.Printf("addressed: %t\n", c.IRC.Addressed)
	fmt.Printf("chunkmax: %d\n", c.IRC.ChunkMax)
	fmt.Printf("verbose: %t\n", c.Bot.Verbose)
	fmt.Printf("stream: %t\n", c.Bot.Stream)
	fmt.Printf("showtoolactions: %t\n", c.Bot.ShowToolActions)
	fmt.Printf("openaikey: %s\n", mask(c.API.OpenAIKey))
	fmt.Printf("openaiurl: %s\n", c.API.OpenAIURL)
	fmt.Printf("apitimeout: %s\n", c.API.Timeout)
	fmt.Printf("model: %s\n", c.Model.Model)
	fmt.Printf("maxtokens: %d\n", c.Model.MaxTokens)
	fmt.Printf("temperature: %f\n", c.Model.Temperature)
	fmt.Printf("topp: %f\n", c.Model.TopP)
	fmt.Printf("serpapikey: %s\n", mask(c.Search.APIKey))
	fmt.Printf("serpapiurl: %s\n", c.Search.URL)
	fmt.Printf("searchengine: %s\n", c.Search.Engine)
	fmt.Printf("searchresults: %d\n", c.Search.Results)
	fmt.Printf("sessionduration: %s\n", c.Session.TTL)
	fmt.Printf("prompt: %s\n", c.Bot.Prompt)
}

func NewConfiguration(c *cli.Command) *Configuration {
	if c.IsSet("config") {
		zap.S().Infow("Using config file", "path", c.String("config"))
	}

	return &Configuration{
		Web: &WebConfig{
			Listen: c.String("listen"),
		},
		IRC: &IRCConfig{
			Nick:        c.String("nick"),
			Server:      c.String("server"),
			Port:        c.Int("port"),
			Channel:     c.String("channel"),
			SSL:         c.Bool("tls"),
			TLSInsecure: c.Bool("tlsinsecure"),
			SASLNick:    c.String("saslnick"),
			SASLPass:    c.String("saslpass"),
			Addressed:   c.Bool("addressed"),
			ChunkMax:    c.Int("chunkmax"),
		},
		Bot: &BotConfig{
			Verbose:         c.Bool("verbose"),
			Prompt:          c.String("prompt"),
			Stream:          c.Bool("stream"),
			ShowToolActions: c.Bool("showtoolactions"),
		},
		Model: &ModelConfig{
			Model:       c.String("model"),
			MaxTokens:   c.Int("maxtokens"),
			Temperature: float32(c.Float("temperature")),
			TopP:        float32(c.Float("top_p")),
		},
		Session: &SessionConfig{
			TTL: c.Duration("sessionduration"),
		},
		API: &APIConfig{
			Timeout:   c.Duration("apitimeout"),
			OpenAIKey: c.String("openaikey"),
			OpenAIURL: c.String("openaiurl"),
		},
		Search: &SearchConfig{
			APIKey:  c.String("serpapikey"),
			URL:     c.String("serpapiurl"),
			Engine:  c.String("searchengine"),
			Results: c.Int("searchresults"),
			Timeout: c.Duration("searchtimeout"),
		},
	}
}

// Verify checks the secrets needed to talk to both hosted services.
func (c *Configuration) Verify() error {
	var errs []error
	if c.API.OpenAIKey == "" && c.API.OpenAIURL == "" {
		errs = append(errs, fmt.Errorf("missing required configuration key: %s", "openaikey"))
	}
	if c.Model.Model == "" {
		errs = append(errs, fmt.Errorf("missing required configuration key: %s", "model"))
	}
	if c.Search.APIKey == "" {
		errs = append(errs, fmt.Errorf("missing required configuration key: %s", "serpapikey"))
	}
	if c.Search.Results < 1 || c.Search.Results > search.MaxLimit {
		errs = append(errs, fmt.Errorf("searchresults must be between 1 and %d", search.MaxLimit))
	}
	return errors.Join(errs...)
}

// VerifyIRC checks the settings the irc front-end needs.
func (c *Configuration) VerifyIRC() error {
	if err := c.Verify(); err != nil {
		return err
	}
	if c.IRC.Channel == "" {
		return fmt.Errorf("missing required config: %s", "channel")
	}
	return nil
}
