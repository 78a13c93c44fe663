package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"newsdigest/internal/domain/entity"
)

// feedsFile is the on-disk shape of the feed descriptor list: a flat array
// under a single top-level key, not a nested schema, since the only thing
// that varies between deployments is which feeds are configured.
type feedsFile struct {
	Feeds []feedDescriptor `yaml:"feeds"`
}

type feedDescriptor struct {
	Name    string `yaml:"name"`
	FeedURL string `yaml:"feed_url"`
	Tier    string `yaml:"tier"`
	Active  bool   `yaml:"active"`
}

// LoadFeeds reads the static feed descriptor list from a YAML file at path
// and validates every entry. A malformed descriptor fails the whole load:
// an unvalidated source would poll garbage every cycle rather than simply
// being absent.
func LoadFeeds(path string) ([]entity.Source, error) {
	// #nosec G304 -- path is provided by trusted deployment configuration, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feeds file: %w", err)
	}

	var file feedsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse feeds file: %w", err)
	}

	sources := make([]entity.Source, 0, len(file.Feeds))
	for _, d := range file.Feeds {
		src := entity.Source{
			Name:    d.Name,
			FeedURL: d.FeedURL,
			Tier:    entity.CredibilityTier(d.Tier),
			Active:  d.Active,
		}
		if err := src.Validate(); err != nil {
			return nil, fmt.Errorf("feed %q: %w", d.Name, err)
		}
		sources = append(sources, src)
	}
	return sources, nil
}
