package catalog

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed_activities.yaml
var starterCatalog []byte

type seedFile struct {
	Activities []seedActivity `yaml:"activities"`
}

type seedActivity struct {
	Title         string     `yaml:"title"`
	Description   string     `yaml:"description"`
	Category      Category   `yaml:"category"`
	Difficulty    Difficulty `yaml:"difficulty"`
	EstimatedTime int        `yaml:"estimated_time"`
	Tags          []string   `yaml:"tags"`
	Materials     []string   `yaml:"materials"`
	Benefits      []string   `yaml:"benefits"`
	Steps         []seedStep `yaml:"steps"`
}

type seedStep struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Tips        []string `yaml:"tips"`
	VideoURL    string   `yaml:"video_url"`
	Duration    int      `yaml:"duration"`
}

// StarterCatalog parses the embedded starter activities.
func StarterCatalog() ([]CreateRequest, error) {
	return ParseSeed(starterCatalog)
}

// ParseSeed decodes a YAML catalog document into creation requests.
func ParseSeed(data []byte) ([]CreateRequest, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse seed catalog: %w", err)
	}

	reqs := make([]CreateRequest, 0, len(file.Activities))
	for _, act := range file.Activities {
		steps := make([]Step, 0, len(act.Steps))
		for _, step := range act.Steps {
			s := Step{
				Title:             step.Title,
				Description:       step.Description,
				Tips:              step.Tips,
				EstimatedDuration: step.Duration,
			}
			if step.VideoURL != "" {
				url := step.VideoURL
				s.VideoURL = &url
			}
			steps = append(steps, s)
		}
		instructions := make([]string, 0, len(steps))
		for _, step := range steps {
			instructions = append(instructions, step.Title)
		}
		reqs = append(reqs, CreateRequest{
			Title:         act.Title,
			Description:   act.Description,
			Category:      act.Category,
			Difficulty:    act.Difficulty,
			EstimatedTime: act.EstimatedTime,
			Steps:         steps,
			Tags:          act.Tags,
			Instructions:  instructions,
			Materials:     act.Materials,
			Benefits:      act.Benefits,
		})
	}
	return reqs, nil
}

// Seed creates every activity whose title is not already in the catalog and
// returns how many were created.
func (s *Service) Seed(ctx context.Context, reqs []CreateRequest) (int, error) {
	created := 0
	for _, req := range reqs {
		exists, err := s.repo.ExistsByTitle(ctx, req.Title)
		if err != nil {
			return created, fmt.Errorf("checking seed activity %q: %w", req.Title, err)
		}
		if exists {
			continue
		}
		if _, err := s.create(ctx, req); err != nil {
			return created, fmt.Errorf("seeding %q: %w", req.Title, err)
		}
		created++
	}
	s.logger.Info("catalog seeded", "created", created, "total", len(reqs))
	return created, nil
}
