package types

import (
	"context"

	"skillscan/internal/models"
)

// Core interfaces

type TextExtractor interface {
	Extract(ctx context.Context, doc models.Document) (string, error)
}

type SkillExtractor interface {
	ExtractSkills(ctx context.Context, resumeText string) ([]string, error)
}

type JobSearcher interface {
	Search(ctx context.Context, skills []string) ([]models.JobRecord, error)
}

// Step identifies one of the three pipeline stages, in execution order.
type Step int

const (
	StepParseDocument Step = iota + 1
	StepExtractSkills
	StepSearchJobs
)

func (s Step) String() string {
	switch s {
	case StepParseDocument:
		return "Parsing resume"
	case StepExtractSkills:
		return "Extracting skills"
	case StepSearchJobs:
		return "Searching jobs"
	default:
		return "Unknown step"
	}
}

// State is the pipeline state machine. Transitions only move forward, except
// StateFailed which is reachable from any in-progress state.
type State int

const (
	StateIdle State = iota
	StateParsingDocument
	StateExtractingSkills
	StateSearchingJobs
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateParsingDocument:
		return "parsing_document"
	case StateExtractingSkills:
		return "extracting_skills"
	case StateSearchingJobs:
		return "searching_jobs"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
