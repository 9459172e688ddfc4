package config

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/prayag001/NewsNexus/pkg/domain"
)

//go:embed default_sites.json
var defaultSitesFS embed.FS

// LoadSites reads the site configuration list from path. If path does not
// exist, it falls back to a small embedded default list so the engine can
// still serve requests for a handful of well-known publishers without any
// external configuration. Both JSON and YAML site lists are accepted, the
// format chosen by path's extension (.yaml/.yml selects YAML, everything
// else JSON), since operators frequently prefer hand-editing YAML for this
// kind of config file even though the wire format elsewhere is JSON.
func LoadSites(path string) ([]domain.Site, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is an operator-supplied config file, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return defaultSites()
		}
		return nil, fmt.Errorf("read site config %q: %w", path, err)
	}

	var sites []domain.Site
	if isYAMLPath(path) {
		if err := yaml.Unmarshal(data, &sites); err != nil {
			return nil, fmt.Errorf("parse site config %q: %w", path, err)
		}
	} else if err := json.Unmarshal(data, &sites); err != nil {
		return nil, fmt.Errorf("parse site config %q: %w", path, err)
	}
	if len(sites) == 0 {
		return nil, fmt.Errorf("site config %q contains no sites", path)
	}
	return sites, nil
}

func isYAMLPath(path string) bool {
	ext := strings.ToLower(path)
	return strings.HasSuffix(ext, ".yaml") || strings.HasSuffix(ext, ".yml")
}

func defaultSites() ([]domain.Site, error) {
	data, err := defaultSitesFS.ReadFile("default_sites.json")
	if err != nil {
		return nil, fmt.Errorf("read embedded default sites: %w", err)
	}
	var sites []domain.Site
	if err := json.Unmarshal(data, &sites); err != nil {
		return nil, fmt.Errorf("parse embedded default sites: %w", err)
	}
	return sites, nil
}
