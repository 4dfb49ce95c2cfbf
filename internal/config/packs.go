package config

import (
	"fmt"
	"os"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

var shortcodePattern = regexp.MustCompile(`^[a-zA-Z0-9_+-]+$`)

// EmojiPack lists workspace emoji that have no unicode form.
//
//	custom:
//	  - bitcoin
//	  - partyparrot
type EmojiPack struct {
	Custom []string `yaml:"custom"`
}

// Validate validates the emoji pack.
func (p *EmojiPack) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Custom, validation.Each(validation.Required, validation.Match(shortcodePattern))),
	)
}

// Members maps member IDs to display names.
//
//	members:
//	  94dqka6e...: Nick
type Members struct {
	Members map[string]string `yaml:"members"`
}

// Validate validates the member directory.
func (m *Members) Validate() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.Members, validation.Each(validation.Required)),
	)
}

// LoadEmojiPack reads a YAML emoji pack. An empty path yields an empty pack.
func LoadEmojiPack(path string) (EmojiPack, error) {
	var p EmojiPack
	if err := loadYAML(path, &p); err != nil {
		return EmojiPack{}, err
	}
	if err := p.Validate(); err != nil {
		return EmojiPack{}, fmt.Errorf("invalid emoji pack %s: %w", path, err)
	}
	return p, nil
}

// LoadMembers reads a YAML member directory. An empty path yields an empty
// directory.
func LoadMembers(path string) (Members, error) {
	var m Members
	if err := loadYAML(path, &m); err != nil {
		return Members{}, err
	}
	if err := m.Validate(); err != nil {
		return Members{}, fmt.Errorf("invalid members file %s: %w", path, err)
	}
	if m.Members == nil {
		m.Members = map[string]string{}
	}
	return m, nil
}

func loadYAML(path string, target any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), target); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
