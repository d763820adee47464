// Package config loads the editor configuration from a TOML file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	automaton "github.com/geange/automaton-editor"
)

const (
	DefaultLogLevel = "info"
	DefaultListen   = "127.0.0.1:8787"
)

// LoadConfigFromFile Read a TOML formatted config file from disk. Environment variables are expanded
// before decoding, and unset keys keep their Default values.
func LoadConfigFromFile(filename string) (*Config, error) {
	confBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	c, err := LoadConfig(string(confBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return c, nil
}

// LoadConfig load a TOML formatted config from a string.
func LoadConfig(conf string) (*Config, error) {
	c := Default()
	md, err := toml.Decode(os.ExpandEnv(conf), c)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

type (
	// Config for the editor, made up of
	// 1) logging and the HTTP bridge address
	// 2) subset construction options
	// 3) diagram rendering through graphviz
	// 4) an optional automaton to start the session with
	Config struct {
		LogLevel   string          `toml:"log_level"`   // [debug,info,warn,error]
		Listen     string          `toml:"listen"`      // HTTP bridge address
		WorkLimit  int             `toml:"work_limit"`  // max subset expansions per conversion, 0 is unlimited
		TrapState  bool            `toml:"trap_state"`  // materialise the empty subset as a DFA state
		LoadSample bool            `toml:"load_sample"` // start from the sample NFA
		Diagram    DiagramConfig   `toml:"diagram"`
		Automaton  *AutomatonBlock `toml:"automaton"` // initial NFA, wins over load_sample
	}
	// DiagramConfig graphviz settings
	DiagramConfig struct {
		DotPath   string `toml:"dot_path"`   // dot executable
		Format    string `toml:"format"`     // dot -T format
		TimeoutMS int    `toml:"timeout_ms"` // per render
	}
	// AutomatonBlock an NFA spelled out in the config file
	AutomatonBlock struct {
		States      []string          `toml:"states"`
		Symbols     []string          `toml:"symbols"`
		Start       string            `toml:"start"`
		Finals      []string          `toml:"finals"`
		Transitions []TransitionBlock `toml:"transitions"`
	}
	// TransitionBlock one transition, use symbol = "ε" for an epsilon move
	TransitionBlock struct {
		From   string `toml:"from"`
		Symbol string `toml:"symbol"`
		To     string `toml:"to"`
	}
)

// Default returns the configuration used for keys a file does not set.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Listen:   DefaultListen,
		Diagram: DiagramConfig{
			DotPath:   "dot",
			Format:    "png",
			TimeoutMS: 10000,
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error, fatal", c.LogLevel)
	}
	if c.WorkLimit < 0 {
		return fmt.Errorf("work_limit must be >= 0, got %d", c.WorkLimit)
	}
	if c.Diagram.TimeoutMS < 0 {
		return fmt.Errorf("diagram.timeout_ms must be >= 0, got %d", c.Diagram.TimeoutMS)
	}
	return nil
}

// Timeout returns the render timeout.
func (d DiagramConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutMS) * time.Millisecond
}

// Definition converts the block into an automaton definition.
func (b *AutomatonBlock) Definition() *automaton.Definition {
	def := &automaton.Definition{
		States:      make([]automaton.State, 0, len(b.States)),
		Symbols:     make([]automaton.Symbol, 0, len(b.Symbols)),
		Start:       automaton.State(b.Start),
		Finals:      make([]automaton.State, 0, len(b.Finals)),
		Transitions: make([]automaton.Transition, 0, len(b.Transitions)),
	}
	for _, s := range b.States {
		def.States = append(def.States, automaton.State(s))
	}
	for _, s := range b.Symbols {
		def.Symbols = append(def.Symbols, automaton.Symbol(s))
	}
	for _, s := range b.Finals {
		def.Finals = append(def.Finals, automaton.State(s))
	}
	for _, t := range b.Transitions {
		def.Transitions = append(def.Transitions, automaton.Transition{
			Source: automaton.State(t.From),
			Symbol: automaton.Symbol(t.Symbol),
			Target: automaton.State(t.To),
		})
	}
	return def
}
