package pipeline

import (
	"context"
	"fmt"
	"unicode/utf8"

	"skillscan/internal/models"
	"skillscan/internal/types"
)

// User-facing failure messages, matching what the UI renders.
const (
	msgBadFileType      = "Please select a PDF or DOCX file only."
	msgFileTooLarge     = "File size must be less than 5MB. Please choose a smaller file."
	msgInsufficientText = "Unable to extract sufficient text from the resume. Please ensure the file contains readable text."
	msgNoSkills         = "No technical skills could be identified in the resume. Please ensure your resume contains technical skills and try again."
)

type PipelineConfig struct {
	// MinTextLength is the shortest extracted text still worth sending to the
	// skill extractor.
	MinTextLength int
}

// Pipeline sequences extraction, skill identification and job search for one
// document. All run state is request-scoped; a Pipeline is safe to share
// across concurrent analyses.
type Pipeline struct {
	config    PipelineConfig
	extractor types.TextExtractor
	skills    types.SkillExtractor
	search    types.JobSearcher
}

func NewWithConfig(config PipelineConfig, extractor types.TextExtractor, skills types.SkillExtractor, search types.JobSearcher) *Pipeline {
	if config.MinTextLength == 0 {
		config.MinTextLength = 50
	}

	return &Pipeline{
		config:    config,
		extractor: extractor,
		skills:    skills,
		search:    search,
	}
}

// run carries the state of one analysis from validation through completion.
type run struct {
	state      types.State
	onProgress func(types.Step)
}

func (r *run) enter(state types.State, step types.Step) {
	r.state = state
	if r.onProgress != nil {
		r.onProgress(step)
	}
}

func (r *run) fail(err error) error {
	r.state = types.StateFailed
	return err
}

// Analyze runs the full pipeline for doc. onProgress, when non-nil, is called
// on entry to each of the three steps. A retry is simply another Analyze call
// with the same document; every run starts at step one.
//
// A search that matches nothing is a success with an empty job list, not a
// failure.
func (p *Pipeline) Analyze(ctx context.Context, doc models.Document, onProgress func(types.Step)) (*models.Analysis, error) {
	r := &run{state: types.StateIdle, onProgress: onProgress}

	// Local validation happens before any network call.
	if err := ValidateDocument(doc); err != nil {
		return nil, r.fail(err)
	}

	r.enter(types.StateParsingDocument, types.StepParseDocument)
	text, err := p.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, r.fail(err)
	}
	if utf8.RuneCountInString(text) < p.config.MinTextLength {
		return nil, r.fail(types.NewError(types.KindBusinessRule, msgInsufficientText, nil))
	}

	if err := ctx.Err(); err != nil {
		return nil, r.fail(err)
	}

	r.enter(types.StateExtractingSkills, types.StepExtractSkills)
	skills, err := p.skills.ExtractSkills(ctx, text)
	if err != nil {
		return nil, r.fail(err)
	}
	if len(skills) == 0 {
		return nil, r.fail(types.NewError(types.KindBusinessRule, msgNoSkills, nil))
	}

	if err := ctx.Err(); err != nil {
		return nil, r.fail(err)
	}

	r.enter(types.StateSearchingJobs, types.StepSearchJobs)
	jobs, err := p.search.Search(ctx, skills)
	if err != nil {
		return nil, r.fail(err)
	}

	r.state = types.StateSucceeded
	return &models.Analysis{Skills: skills, Jobs: jobs}, nil
}

// ValidateDocument checks the local acceptance rules: media type and size.
// Violations never trigger network activity.
func ValidateDocument(doc models.Document) error {
	if doc.MediaType != models.MediaTypePDF && doc.MediaType != models.MediaTypeDOCX {
		return types.NewError(types.KindValidation, msgBadFileType, nil)
	}
	if doc.Size() > models.MaxDocumentSize {
		return types.NewError(types.KindValidation, msgFileTooLarge, nil)
	}
	return nil
}

// FailureMessage frames err for presentation. Validation errors render next
// to the file input and keep their bare message; everything else gets the
// consolidated analysis-failure framing.
func FailureMessage(err error) string {
	if kind, ok := types.KindOf(err); ok && kind == types.KindValidation {
		return err.Error()
	}
	return fmt.Sprintf("Analysis failed: %v", err)
}
