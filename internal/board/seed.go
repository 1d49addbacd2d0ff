package board

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/nhle/teamboard/internal/model"
)

//go:embed seed.yaml
var seedYAML []byte

type seedFile struct {
	Projects  []model.Project  `yaml:"projects"`
	Employees []model.Employee `yaml:"employees"`
}

// loadSeed decodes the embedded seed. Each call returns fresh slices.
func loadSeed() (seedFile, error) {
	var sf seedFile
	if err := yaml.Unmarshal(seedYAML, &sf); err != nil {
		return seedFile{}, fmt.Errorf("decoding seed: %w", err)
	}
	normalize(sf.Projects)
	recomputeAll(sf.Projects)
	return sf, nil
}

// SeedProjects returns the initial two-project board.
func SeedProjects() ([]model.Project, error) {
	sf, err := loadSeed()
	if err != nil {
		return nil, err
	}
	return sf.Projects, nil
}

// Roster returns the static employee roster.
func Roster() ([]model.Employee, error) {
	sf, err := loadSeed()
	if err != nil {
		return nil, err
	}
	return sf.Employees, nil
}

// normalize replaces nil task and subtask slices so the collection
// always serializes them as arrays.
func normalize(projects []model.Project) {
	for i := range projects {
		if projects[i].Tasks == nil {
			projects[i].Tasks = []model.Task{}
		}
		for j := range projects[i].Tasks {
			if projects[i].Tasks[j].Subtasks == nil {
				projects[i].Tasks[j].Subtasks = []model.Subtask{}
			}
		}
	}
}

// maxID returns the largest id of any entity in the collection.
func maxID(projects []model.Project) int64 {
	var m int64
	bump := func(id int64) {
		if id > m {
			m = id
		}
	}
	for _, p := range projects {
		bump(p.ID)
		for _, t := range p.Tasks {
			bump(t.ID)
			for _, s := range t.Subtasks {
				bump(s.ID)
			}
		}
		for _, c := range p.Chat {
			bump(c.ID)
		}
	}
	return m
}
