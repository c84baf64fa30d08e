// Package content loads help tables from YAML while preserving definition order.
package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/socialsphere/guide/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed socialsphere.yaml
var defaultContent []byte

// Default returns the built-in SocialSphere help table.
// It panics if the embedded file is broken, which is a build defect.
func Default() domain.Table {
	table, err := Parse(defaultContent)
	if err != nil {
		panic(fmt.Sprintf("embedded content is invalid: %v", err))
	}
	return table
}

// DefaultSource returns the raw embedded YAML.
func DefaultSource() []byte {
	return bytes.Clone(defaultContent)
}

// LoadFile reads and validates a table from a YAML file.
func LoadFile(path string) (domain.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to read content file: %w", err)
	}
	return Parse(data)
}

// Load reads and validates a table from r.
func Load(r io.Reader) (domain.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to read content: %w", err)
	}
	return Parse(data)
}

type domainFields struct {
	Title      string    `yaml:"title"`
	Intro      string    `yaml:"intro"`
	Clarifying string    `yaml:"clarifying"`
	Answers    yaml.Node `yaml:"answers"`
}

// Parse decodes a table. Go maps are unordered, so the mappings are walked as
// yaml.Node pairs to keep the order in which domains and answers are written.
func Parse(data []byte) (domain.Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.Table{}, fmt.Errorf("failed to parse content: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return domain.Table{}, fmt.Errorf("%w: empty document", domain.ErrInvalidTable)
	}

	domainsNode, err := lookup(doc.Content[0], "domains")
	if err != nil {
		return domain.Table{}, err
	}

	var table domain.Table
	err = eachPair(domainsNode, func(key string, value *yaml.Node) error {
		var fields domainFields
		if err := value.Decode(&fields); err != nil {
			return fmt.Errorf("domain %q: %w", key, err)
		}

		d := domain.Domain{
			Key:        key,
			Title:      fields.Title,
			Intro:      fields.Intro,
			Clarifying: fields.Clarifying,
		}
		if fields.Answers.Kind != 0 {
			err := eachPair(&fields.Answers, func(answerKey string, answer *yaml.Node) error {
				if answer.Kind != yaml.ScalarNode {
					return fmt.Errorf("domain %q: answer %q must be a string", key, answerKey)
				}
				d.Answers = append(d.Answers, domain.Answer{Key: answerKey, Text: answer.Value})
				return nil
			})
			if err != nil {
				return err
			}
		}
		table.Domains = append(table.Domains, d)
		return nil
	})
	if err != nil {
		return domain.Table{}, err
	}

	if err := table.Validate(); err != nil {
		return domain.Table{}, err
	}
	return table, nil
}

func lookup(mapping *yaml.Node, key string) (*yaml.Node, error) {
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected a mapping at line %d", domain.ErrInvalidTable, mapping.Line)
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1], nil
		}
	}
	return nil, fmt.Errorf("%w: missing %q section", domain.ErrInvalidTable, key)
}

func eachPair(mapping *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if mapping.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: expected a mapping at line %d", domain.ErrInvalidTable, mapping.Line)
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if err := fn(mapping.Content[i].Value, mapping.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}
