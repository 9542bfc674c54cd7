// Package flavor picks a commentary line for notable dice outcomes.
package flavor

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

//go:embed lines.yaml
var defaultLines []byte

// Lines holds the line sets for each outcome category. OnRoll is keyed by
// die size.
type Lines struct {
	Crits     []string
	CritFails []string
	Dumb      []string
	OnRoll    map[int][]string
}

type linesFile struct {
	Crits     []string            `mapstructure:"crits"`
	CritFails []string            `mapstructure:"crit_fails"`
	Dumb      []string            `mapstructure:"dumb"`
	OnRoll    map[string][]string `mapstructure:"on_roll"`
}

// Default returns the embedded line catalog.
func Default() Lines {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultLines)); err != nil {
		panic(fmt.Sprintf("read embedded flavor lines: %v", err))
	}
	lines, err := decode(v)
	if err != nil {
		panic(fmt.Sprintf("decode embedded flavor lines: %v", err))
	}
	return lines
}

// Load reads a line catalog from a YAML, JSON or TOML file. The keys may sit
// at the top level or under a "lines" section.
func Load(path string) (Lines, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Lines{}, fmt.Errorf("read flavor lines %s: %w", path, err)
	}
	if sub := v.Sub("lines"); sub != nil {
		v = sub
	}
	lines, err := decode(v)
	if err != nil {
		return Lines{}, fmt.Errorf("flavor lines %s: %w", path, err)
	}
	return lines, nil
}

// decode resolves die-size keys to integers once, at load time.
func decode(v *viper.Viper) (Lines, error) {
	var file linesFile
	if err := v.Unmarshal(&file); err != nil {
		return Lines{}, fmt.Errorf("decode: %w", err)
	}

	lines := Lines{
		Crits:     file.Crits,
		CritFails: file.CritFails,
		Dumb:      file.Dumb,
		OnRoll:    make(map[int][]string, len(file.OnRoll)),
	}
	for key, set := range file.OnRoll {
		sides, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || sides < 1 {
			return Lines{}, fmt.Errorf("on_roll key %q is not a die size", key)
		}
		if len(set) > 0 {
			lines.OnRoll[sides] = set
		}
	}
	return lines, nil
}
