// Package pipeline orchestrates a morph run: trait extraction for both input
// images, prompt composition, candidate generation, storage, and the final
// gallery document, reported as an ordered message stream.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"morph-server/internal/i18n"
	"morph-server/internal/infra"
	"morph-server/internal/journal"
	"morph-server/internal/prompt"
	"morph-server/internal/providers/imagegen"
	"morph-server/internal/storage"
	"morph-server/internal/traits"
)

// VisionDescriber is the trait extraction collaborator.
type VisionDescriber interface {
	DescribeImage(ctx context.Context, imageB64 string) (string, error)
}

// Generator is the image generation collaborator.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*imagegen.Result, error)
	Model() string
	Size() string
}

// Options wires the runner's collaborators. Vision, Gen, and Store are
// required; Journal and Logger are optional.
type Options struct {
	Vision  VisionDescriber
	Gen     Generator
	Store   storage.Store
	Journal *journal.Journal
	Logger  *infra.Logger
	Now     func() time.Time
}

// Runner executes morph runs. Safe for concurrent use.
type Runner struct {
	vision  VisionDescriber
	gen     Generator
	store   storage.Store
	journal *journal.Journal
	logger  infra.Logger
	now     func() time.Time
}

func NewRunner(opts Options) (*Runner, error) {
	if opts.Vision == nil {
		return nil, fmt.Errorf("pipeline: vision client is required")
	}
	if opts.Gen == nil {
		return nil, fmt.Errorf("pipeline: generation client is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("pipeline: store is required")
	}
	logger := infra.Logger(zerolog.New(io.Discard))
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		vision:  opts.Vision,
		gen:     opts.Gen,
		store:   opts.Store,
		journal: opts.Journal,
		logger:  logger,
		now:     now,
	}, nil
}

// Run executes one morph run and returns its message stream. The channel is
// closed after the terminal message; exactly one terminal message is emitted
// per run. Collaborator panics surface as an internal error message, never as
// a crashed goroutine.
func (r *Runner) Run(ctx context.Context, req Request, locale string) <-chan Message {
	out := make(chan Message, 8)
	go func() {
		defer close(out)
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error().Interface("panic", rec).Msg("pipeline: run panicked")
				out <- Message{
					Kind: KindInternalError,
					Text: fmt.Sprintf(i18n.T(locale, i18n.PipelineError), fmt.Sprint(rec)),
				}
			}
		}()
		r.run(ctx, req, locale, out)
	}()
	return out
}

func (r *Runner) run(ctx context.Context, req Request, locale string, out chan<- Message) {
	if len(req.Images) < 2 {
		out <- Message{Kind: KindInsufficientInput, Text: i18n.T(locale, i18n.NeedTwoImages)}
		return
	}
	images := req.Images
	if len(images) > 2 {
		r.logger.Debug().Int("received", len(images)).Msg("pipeline: using first two images")
		images = images[:2]
	}

	runID := uuid.NewString()
	startedAt := r.now()

	lines := make([]string, len(images))
	for i, img := range images {
		out <- Progress(fmt.Sprintf("STAGED: Analyzing image %d...", i+1))
		reply, err := r.vision.DescribeImage(ctx, ImagePayload(img))
		if err != nil {
			r.logger.Error().Err(err).Str("run_id", runID).Int("image", i+1).Msg("pipeline: vision call failed")
			out <- Message{
				Kind: KindCollaboratorFailure,
				Text: fmt.Sprintf(i18n.T(locale, i18n.PipelineError), err),
			}
			return
		}
		lines[i] = traits.Compact(traits.Normalize(reply))
	}

	subjectType := traits.ClassifySubject(req.Instruction)
	morphPrompt := prompt.Compose(lines[0], lines[1], req.Instruction)
	r.logger.Debug().
		Str("run_id", runID).
		Str("subject_type", subjectType).
		Int("prompt_bytes", len(morphPrompt)).
		Msg("pipeline: composed prompt")

	out <- Progress("STAGED: Generating candidates...")
	result, err := r.gen.Generate(ctx, morphPrompt)
	if err != nil {
		r.logger.Error().Err(err).Str("run_id", runID).Msg("pipeline: generation call failed")
		out <- Message{
			Kind: KindCollaboratorFailure,
			Text: fmt.Sprintf(i18n.T(locale, i18n.PipelineError), err),
		}
		return
	}
	if result.Received == 0 {
		out <- Message{
			Kind: KindNoCandidates,
			Text: fmt.Sprintf(i18n.T(locale, i18n.NoImagesReturned), result.RawBody),
		}
		return
	}

	out <- Progress("STAGED: Saving results...")
	stamp := r.now()
	urls := make([]string, 0, len(result.Candidates))
	for idx, cand := range result.Candidates {
		if url, ok := cand.URL(); ok {
			urls = append(urls, url)
			continue
		}
		data, _ := cand.Bytes()
		filename := storage.Filename(stamp, idx+1)
		url, err := r.store.Save(ctx, filename, data)
		if err != nil {
			r.logger.Error().Err(err).Str("run_id", runID).Str("filename", filename).Msg("pipeline: storing candidate failed")
			continue
		}
		urls = append(urls, url)
	}
	if len(urls) == 0 {
		out <- Message{Kind: KindStorageFailure, Text: i18n.T(locale, i18n.StorageFailed)}
		return
	}

	r.recordRun(ctx, runID, req, subjectType, morphPrompt, result, urls, startedAt)

	out <- Message{Kind: KindFinal, Text: renderGallery(r.gen.Model(), r.gen.Size(), morphPrompt, urls)}
}

// recordRun journals the finished run. Journal failures are logged and
// swallowed: the user already has their result.
func (r *Runner) recordRun(ctx context.Context, runID string, req Request, subjectType, morphPrompt string, result *imagegen.Result, urls []string, startedAt time.Time) {
	if !r.journal.Enabled() {
		return
	}
	run := journal.Run{
		ID:                 runID,
		Instruction:        req.Instruction,
		SubjectType:        subjectType,
		Prompt:             morphPrompt,
		GenModel:           result.Model,
		GenSize:            result.Size,
		CandidatesReceived: result.Received,
		CandidatesStored:   len(urls),
		StartedAt:          startedAt,
		FinishedAt:         r.now(),
	}
	for i, url := range urls {
		run.Assets = append(run.Assets, journal.Asset{Position: i + 1, URL: url})
	}
	if err := r.journal.Record(ctx, run); err != nil {
		r.logger.Error().Err(err).Str("run_id", runID).Msg("pipeline: journaling run failed")
	}
}
