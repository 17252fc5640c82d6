package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// storagesFile is the YAML layout of a storage definitions file:
//
//	storages:
//	  storage0: file:///srv/storage0
//	  releases: s3://artifacts?region=eu-west-1
type storagesFile struct {
	Storages map[string]string `yaml:"storages"`
}

// LoadStoragesFile reads storage definitions from a YAML file.
func LoadStoragesFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read storages file: %w", err)
	}
	return ParseStoragesYAML(data)
}

// ParseStoragesYAML parses storage definitions from YAML.
func ParseStoragesYAML(data []byte) (map[string]string, error) {
	var file storagesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse storages file: %w", err)
	}

	storages := make(map[string]string, len(file.Storages))
	for id, bucketURL := range file.Storages {
		if id == "" || bucketURL == "" {
			return nil, fmt.Errorf("parse storages file: storage %q has no url", id)
		}
		storages[id] = bucketURL
	}
	return storages, nil
}
