package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/cli/config"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

func TestParseCatalog(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantErr   error
		wantCount int
	}{
		{
			name: "valid catalog",
			content: `
[[threat]]
id = "T-CYB-001"
name = "Ransomware"
description = "Malware encrypting business data"
category = "CYBER_TECHNICAL"
nis2_type = "AVAILABILITY"
baseline_probability = 4
baseline_impact = 5
recommended_controls = ["A.8.7", "A.8.13"]

[[threat]]
id = "T-NAT-001"
name = "Flood"
description = "Water ingress damaging premises"
category = "NATURAL_ENVIRONMENTAL"
sectors = ["Energy"]
`,
			wantCount: 2,
		},
		{
			name:    "empty catalog",
			content: "# nothing here\n",
			wantErr: config.ErrEmptyCatalog,
		},
		{
			name:    "malformed TOML",
			content: "[[threat]\nid = ",
			wantErr: config.ErrInvalidCatalog,
		},
		{
			name: "duplicate threat ID",
			content: `
[[threat]]
id = "T-CYB-001"
name = "Ransomware"
description = "Malware"
category = "CYBER_TECHNICAL"

[[threat]]
id = "T-CYB-001"
name = "Ransomware again"
description = "Malware"
category = "CYBER_TECHNICAL"
`,
			wantErr: config.ErrDuplicateThreatID,
		},
		{
			name: "custom prefix is reserved",
			content: `
[[threat]]
id = "CUSTOM-abcd1234"
name = "Shadow IT"
description = "Unmanaged services"
category = "ORGANIZATIONAL"
`,
			wantErr: config.ErrReservedThreatID,
		},
		{
			name: "unknown category",
			content: `
[[threat]]
id = "T-XXX-001"
name = "Aliens"
description = "Visitors from elsewhere"
category = "EXTRATERRESTRIAL"
`,
			wantErr: config.ErrInvalidCatalog,
		},
		{
			name: "baseline out of range",
			content: `
[[threat]]
id = "T-CYB-009"
name = "Botnet"
description = "Compromised hosts"
category = "CYBER_TECHNICAL"
baseline_probability = 7
`,
			wantErr: config.ErrInvalidCatalog,
		},
		{
			name: "missing description",
			content: `
[[threat]]
id = "T-CYB-009"
name = "Botnet"
category = "CYBER_TECHNICAL"
`,
			wantErr: config.ErrInvalidCatalog,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			threats, err := config.ParseCatalog([]byte(tt.content))
			if tt.wantErr != nil {
				gt.Error(t, err).Is(tt.wantErr)
				return
			}
			gt.NoError(t, err).Required()
			gt.A(t, threats).Length(tt.wantCount)
		})
	}
}

func TestParseCatalog_Fields(t *testing.T) {
	threats, err := config.ParseCatalog([]byte(`
[[threat]]
id = " T-PHY-001 "
name = " Theft of equipment "
description = "Theft of laptops"
category = "PHYSICAL"
nis2_type = "CONFIDENTIALITY"
baseline_probability = 3
baseline_impact = 2
recommended_controls = ["A.7.9", "A.8.1"]
sectors = ["Health"]
`))
	gt.NoError(t, err).Required()
	gt.A(t, threats).Length(1).Required()

	threat := threats[0]
	gt.Value(t, threat.ID).Equal(types.ThreatID("T-PHY-001"))
	gt.String(t, threat.Name).Equal("Theft of equipment")
	gt.Value(t, threat.Category).Equal(types.ThreatCategoryPhysical)
	gt.Value(t, threat.NIS2Type).Equal(types.NIS2Confidentiality)
	gt.Value(t, threat.BaselineProbability).Equal(types.Rating(3))
	gt.Value(t, threat.BaselineImpact).Equal(types.Rating(2))
	gt.A(t, threat.RecommendedControls).Length(2)
	gt.B(t, threat.IsShared()).True()
	gt.B(t, threat.AppliesToSector("health")).True()
	gt.B(t, threat.AppliesToSector("Banking")).False()
}

func TestLoadCatalog(t *testing.T) {
	t.Run("file not found", func(t *testing.T) {
		_, err := config.LoadCatalog(filepath.Join(t.TempDir(), "missing.toml"))
		gt.Error(t, err).Is(config.ErrCatalogNotFound)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.toml")
		gt.NoError(t, os.WriteFile(path, []byte(`
[[threat]]
id = "T-HUM-001"
name = "Human error"
description = "Accidental deletion"
category = "HUMAN"
`), 0600)).Required()

		threats, err := config.LoadCatalog(path)
		gt.NoError(t, err).Required()
		gt.A(t, threats).Length(1)
	})
}

func TestCatalog_Load(t *testing.T) {
	t.Run("built-in catalog is valid", func(t *testing.T) {
		threats, err := config.NewCatalogForTest("").Load()
		gt.NoError(t, err).Required()
		gt.N(t, len(threats)).Greater(20)

		categories := map[types.ThreatCategory]bool{}
		for _, threat := range threats {
			categories[threat.Category] = true
		}
		for _, c := range types.AllThreatCategories() {
			gt.B(t, categories[c]).True()
		}
	})

	t.Run("configured path", func(t *testing.T) {
		_, err := config.NewCatalogForTest(filepath.Join(t.TempDir(), "none.toml")).Load()
		gt.Error(t, err).Is(config.ErrCatalogNotFound)
	})
}
