package catalog

import "time"

// Category is one of the fixed skill areas an activity trains.
type Category string

const (
	CategoryCreativity    Category = "Creativity"
	CategoryMindfulness   Category = "Mindfulness"
	CategoryProductivity  Category = "Productivity"
	CategoryCommunication Category = "Communication"
	CategoryFitness       Category = "Fitness"
	CategoryLearning      Category = "Learning"
	CategorySocial        Category = "Social"
	CategorySelfCare      Category = "Self-Care"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryCreativity,
	CategoryMindfulness,
	CategoryProductivity,
	CategoryCommunication,
	CategoryFitness,
	CategoryLearning,
	CategorySocial,
	CategorySelfCare,
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Difficulty grades how demanding an activity is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// DefaultStepDuration is used when a step does not specify its duration.
const DefaultStepDuration = 5

// Step is one ordered sub-task of an activity.
type Step struct {
	StepNumber        int      `json:"stepNumber"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Tips              []string `json:"tips"`
	VideoURL          *string  `json:"videoUrl,omitempty"`
	EstimatedDuration int      `json:"estimatedDuration"`
}

// Activity is a catalog entry users can add to their list.
type Activity struct {
	ID            string     `json:"id"`
	Title         string     `json:"title" validate:"required,max=100"`
	Description   string     `json:"description" validate:"required,max=500"`
	Category      Category   `json:"category" validate:"required,category"`
	Difficulty    Difficulty `json:"difficulty" validate:"required,difficulty"`
	EstimatedTime int        `json:"estimatedTime" validate:"min=5,max=300"`
	Steps         []Step     `json:"steps"`
	Tags          []string   `json:"tags"`
	Instructions  []string   `json:"instructions"`
	Materials     []string   `json:"materials"`
	Benefits      []string   `json:"benefits"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// StepCount returns the number of steps defined for the activity.
func (a *Activity) StepCount() int {
	return len(a.Steps)
}

// HasStep reports whether stepNumber names one of the activity's steps.
func (a *Activity) HasStep(stepNumber int) bool {
	for _, step := range a.Steps {
		if step.StepNumber == stepNumber {
			return true
		}
	}
	return false
}
