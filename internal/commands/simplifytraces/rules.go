package simplifytraces

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk form of a replacements file
type ruleFile struct {
	BasicReplace map[string]string `yaml:"BasicReplace" toml:"BasicReplace"`
	RegexReplace [][]string        `yaml:"RegexReplace" toml:"RegexReplace"`
}

type basicRule struct {
	from, to string
}

type regexRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rules rewrite the chare and entry method names of a trace. Plain
// substitutions apply first, longest match first, then regular expressions
// in file order.
type Rules struct {
	basic []basicRule
	regex []regexRule
}

// ParseRules decodes a replacements file. Files ending in .toml are read as
// TOML; anything else as YAML, which includes JSON.
func ParseRules(name string, data []byte) (*Rules, error) {
	var raw ruleFile
	var err error
	if strings.EqualFold(filepath.Ext(name), ".toml") {
		err = toml.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing replacements %s: %w", name, err)
	}
	return compile(raw)
}

func compile(raw ruleFile) (*Rules, error) {
	r := &Rules{}
	for from, to := range raw.BasicReplace {
		if from == "" {
			return nil, fmt.Errorf("empty BasicReplace key")
		}
		r.basic = append(r.basic, basicRule{from: from, to: to})
	}
	sort.Slice(r.basic, func(i, j int) bool {
		if len(r.basic[i].from) != len(r.basic[j].from) {
			return len(r.basic[i].from) > len(r.basic[j].from)
		}
		return r.basic[i].from < r.basic[j].from
	})

	for i, pair := range raw.RegexReplace {
		if len(pair) != 2 {
			return nil, fmt.Errorf("RegexReplace entry %d: want [pattern, replacement], got %d values", i, len(pair))
		}
		pattern, err := regexp.Compile(pair[0])
		if err != nil {
			return nil, fmt.Errorf("RegexReplace entry %d: %w", i, err)
		}
		r.regex = append(r.regex, regexRule{pattern: pattern, replacement: pair[1]})
	}
	return r, nil
}

// Apply rewrites a single name
func (r *Rules) Apply(s string) string {
	for _, rule := range r.basic {
		s = strings.ReplaceAll(s, rule.from, rule.to)
	}
	for _, rule := range r.regex {
		s = rule.pattern.ReplaceAllString(s, rule.replacement)
	}
	return s
}

// Len returns the number of rules
func (r *Rules) Len() int {
	return len(r.basic) + len(r.regex)
}
