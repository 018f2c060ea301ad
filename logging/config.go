package logging

import "time"

const (
	SinkConsole  = "console"
	SinkMessages = "messages"
	SinkJSON     = "json"
)

// DefaultPrefix tags every diagnostic line written by the mutation pipeline.
const DefaultPrefix = "[Laurus]"

type Config struct {
	EnabledSinks     []string       `yaml:"enabledSinks"`
	BufferSize       int            `yaml:"bufferSize"`
	MinimumSeverity  Severity       `yaml:"minimumSeverity"`
	Prefix           string         `yaml:"prefix"`
	Synchronous      bool           `yaml:"synchronous"`
	Fields           map[string]any `yaml:"fields"`
	JSON             JSONConfig     `yaml:"json"`
	DropWarnInterval time.Duration  `yaml:"dropWarnInterval"`
}

type JSONConfig struct {
	FilePath      string        `yaml:"filePath"`
	FlushInterval time.Duration `yaml:"flushInterval"`
}

// DefaultConfig mirrors the game host: every line goes to the player message
// log and the console, delivered inline with the dispatching event.
func DefaultConfig() Config {
	return Config{
		EnabledSinks:     []string{SinkMessages, SinkConsole},
		BufferSize:       512,
		MinimumSeverity:  SeverityDebug,
		Prefix:           DefaultPrefix,
		Synchronous:      true,
		DropWarnInterval: 5 * time.Second,
		JSON: JSONConfig{
			FlushInterval: 2 * time.Second,
		},
	}
}

func (c Config) HasSink(name string) bool {
	for _, s := range c.EnabledSinks {
		if s == name {
			return true
		}
	}
	return false
}

func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	cloned := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		cloned[k] = v
	}
	return cloned
}
