package config

import (
	"github.com/knadh/koanf/v2"
	"github.com/pelletier/go-toml/v2"
)

// tomlParser implements koanf.Parser on top of go-toml/v2.
type tomlParser struct{}

// TOMLParser returns a koanf parser for TOML documents.
func TOMLParser() koanf.Parser {
	return &tomlParser{}
}

func (p *tomlParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if err := toml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *tomlParser) Marshal(o map[string]interface{}) ([]byte, error) {
	return toml.Marshal(o)
}
