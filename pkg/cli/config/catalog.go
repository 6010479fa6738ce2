package config

import (
	_ "embed"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

//go:embed catalog/default.toml
var defaultCatalog []byte

// Catalog holds CLI flags for the shared threat catalog
type Catalog struct {
	path string
}

// Flags returns CLI flags for catalog configuration
func (c *Catalog) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "catalog",
			Usage:       "Path to a threat catalog TOML file. The built-in catalog is used when omitted",
			Category:    "Catalog",
			Sources:     cli.EnvVars("THEMIS_CATALOG"),
			Destination: &c.path,
		},
	}
}

// LogValue implements slog.LogValuer
func (c Catalog) LogValue() slog.Value {
	if c.path == "" {
		return slog.StringValue("(built-in)")
	}
	return slog.StringValue(c.path)
}

// Load reads and validates the configured catalog
func (c *Catalog) Load() ([]*model.Threat, error) {
	if c.path == "" {
		threats, err := ParseCatalog(defaultCatalog)
		if err != nil {
			return nil, goerr.Wrap(err, "built-in threat catalog is invalid")
		}
		return threats, nil
	}
	return LoadCatalog(c.path)
}

// ThreatEntry is a threat as written in a catalog file
type ThreatEntry struct {
	ID                  string   `toml:"id"`
	Name                string   `toml:"name"`
	Description         string   `toml:"description"`
	Category            string   `toml:"category"`
	NIS2Type            string   `toml:"nis2_type"`
	BaselineProbability int      `toml:"baseline_probability"`
	BaselineImpact      int      `toml:"baseline_impact"`
	RecommendedControls []string `toml:"recommended_controls"`
	Sectors             []string `toml:"sectors"`
}

type catalogFile struct {
	Threats []ThreatEntry `toml:"threat"`
}

// ToModel converts the entry to a shared catalog threat
func (e *ThreatEntry) ToModel() *model.Threat {
	return &model.Threat{
		ID:                  types.ThreatID(strings.TrimSpace(e.ID)),
		Name:                strings.TrimSpace(e.Name),
		Description:         strings.TrimSpace(e.Description),
		Category:            types.ThreatCategory(e.Category),
		NIS2Type:            types.NIS2IncidentType(e.NIS2Type),
		BaselineProbability: types.Rating(e.BaselineProbability),
		BaselineImpact:      types.Rating(e.BaselineImpact),
		RecommendedControls: e.RecommendedControls,
		Sectors:             e.Sectors,
	}
}

// LoadCatalog loads a threat catalog from a TOML file
func LoadCatalog(path string) ([]*model.Threat, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrCatalogNotFound, "catalog file does not exist", goerr.V(CatalogPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read catalog file", goerr.V(CatalogPathKey, path))
	}

	threats, err := ParseCatalog(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load catalog", goerr.V(CatalogPathKey, path))
	}
	return threats, nil
}

// ParseCatalog decodes and validates catalog TOML
func ParseCatalog(data []byte) ([]*model.Threat, error) {
	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(ErrInvalidCatalog, "failed to parse TOML", goerr.V("reason", err.Error()))
	}
	if len(file.Threats) == 0 {
		return nil, goerr.Wrap(ErrEmptyCatalog, "no [[threat]] entries")
	}

	seen := make(map[types.ThreatID]int, len(file.Threats))
	threats := make([]*model.Threat, 0, len(file.Threats))
	for i, entry := range file.Threats {
		threat := entry.ToModel()
		if err := threat.Validate(); err != nil {
			return nil, goerr.Wrap(ErrInvalidCatalog, err.Error(),
				goerr.V(ThreatIndexKey, i), goerr.V(ThreatIDKey, threat.ID))
		}
		if strings.HasPrefix(threat.ID.String(), model.CustomThreatIDPrefix+"-") {
			return nil, goerr.Wrap(ErrReservedThreatID, "catalog entries cannot use the custom prefix",
				goerr.V(ThreatIndexKey, i), goerr.V(ThreatIDKey, threat.ID))
		}
		if prev, dup := seen[threat.ID]; dup {
			return nil, goerr.Wrap(ErrDuplicateThreatID, "threat ID defined twice",
				goerr.V(ThreatIDKey, threat.ID), goerr.V(ThreatIndexKey, i), goerr.V("previous_index", prev))
		}
		seen[threat.ID] = i
		threats = append(threats, threat)
	}

	return threats, nil
}
