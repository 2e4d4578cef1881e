package registry

import (
	"io"

	yaml "gopkg.in/yaml.v2"
)

type RelationConfig struct {
	Name        string `yaml:"name"`
	Href        string `yaml:"href"`
	Cardinality string `yaml:"cardinality"`
}

type ResourceTypeConfig struct {
	Type      string           `yaml:"type"`
	SelfHref  string           `yaml:"selfHref"`
	Relations []RelationConfig `yaml:"relations"`
}

type Config struct {
	Resources []ResourceTypeConfig `yaml:"resources"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, &cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
