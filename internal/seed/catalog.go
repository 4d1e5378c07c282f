// Package seed loads reference data and builds demo data for development.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"spottr/internal/cache"
	"spottr/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed catalog.yaml
var catalogYAML []byte

// ExerciseSeed is one catalog exercise. Type defaults to strength.
type ExerciseSeed struct {
	Name     string                  `yaml:"name"`
	Category models.ExerciseCategory `yaml:"category"`
	Type     models.ExerciseType     `yaml:"type"`
}

type AchievementSeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Requirement struct {
		Type  string `yaml:"type"`
		Value int    `yaml:"value"`
	} `yaml:"requirement"`
}

type GymSeed struct {
	Name        string `yaml:"name"`
	Address     string `yaml:"address"`
	MaxCapacity int    `yaml:"max_capacity"`
}

// CatalogData is the parsed reference data set.
type CatalogData struct {
	Exercises    []ExerciseSeed    `yaml:"exercises"`
	Achievements []AchievementSeed `yaml:"achievements"`
	Gyms         []GymSeed         `yaml:"gyms"`
}

// LoadCatalog parses the embedded catalog.
func LoadCatalog() (*CatalogData, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog parses and validates a catalog document.
func ParseCatalog(raw []byte) (*CatalogData, error) {
	var data CatalogData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[string]bool, len(data.Exercises))
	for i := range data.Exercises {
		ex := &data.Exercises[i]
		if ex.Name == "" || ex.Category == "" {
			return nil, fmt.Errorf("exercise %d: name and category are required", i)
		}
		if seen[ex.Name] {
			return nil, fmt.Errorf("exercise %q listed twice", ex.Name)
		}
		seen[ex.Name] = true
		if ex.Type == "" {
			ex.Type = models.ExerciseTypeStrength
		}
	}
	for _, a := range data.Achievements {
		if a.Name == "" || a.Requirement.Type == "" || a.Requirement.Value <= 0 {
			return nil, fmt.Errorf("achievement %q: requirement type and positive value are required", a.Name)
		}
	}
	return &data, nil
}

// Catalog writes the embedded exercises, achievements and gyms. Running it
// again updates existing rows in place and creates nothing new.
func Catalog(ctx context.Context, db *gorm.DB) error {
	data, err := LoadCatalog()
	if err != nil {
		return err
	}
	return ApplyCatalog(ctx, db, data)
}

func ApplyCatalog(ctx context.Context, db *gorm.DB, data *CatalogData) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ex := range data.Exercises {
			row := models.ExerciseDefinition{Name: ex.Name, Category: ex.Category, ExerciseType: ex.Type}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"category", "exercise_type"}),
			}).Create(&row).Error; err != nil {
				return fmt.Errorf("exercise %q: %w", ex.Name, err)
			}
		}

		for _, a := range data.Achievements {
			row := models.Achievement{
				Name:             a.Name,
				Description:      a.Description,
				Icon:             a.Icon,
				RequirementType:  a.Requirement.Type,
				RequirementValue: a.Requirement.Value,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"description", "icon", "requirement_type", "requirement_value"}),
			}).Create(&row).Error; err != nil {
				return fmt.Errorf("achievement %q: %w", a.Name, err)
			}
		}

		// Gym names are not unique, so match on name and address.
		for _, g := range data.Gyms {
			var gym models.Gym
			if err := tx.Where(models.Gym{Name: g.Name, Address: g.Address}).
				Attrs(models.Gym{MaxCapacity: g.MaxCapacity, BusyLevel: models.BusyLow}).
				FirstOrCreate(&gym).Error; err != nil {
				return fmt.Errorf("gym %q: %w", g.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateCatalog(ctx)
	return nil
}
