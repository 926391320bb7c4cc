package transcode

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mahirjain10/image-resolution-worker/internal/naming"
	"github.com/mahirjain10/image-resolution-worker/internal/routing"
	"github.com/mahirjain10/image-resolution-worker/internal/types"
)

const (
	ContentType              = "image/*"
	MetadataOriginalFileName = "originalFileName"
)

var ErrFetch = errors.New("failed to get image from storage")

// Storage is the object store the orchestrator reads originals from and
// writes derivatives to.
type Storage interface {
	GetObject(ctx context.Context, bucket string, key string) ([]byte, error)
	PutObject(ctx context.Context, bucket string, key string, body []byte, contentType string, metadata map[string]string) error
}

type Resizer interface {
	Resize(buffer []byte, res types.Resolution) ([]byte, error)
}

// Outcome records what happened to one resolution of a run. Err is nil when
// the derivative was written to Key.
type Outcome struct {
	Resolution types.Resolution
	Key        string
	Err        error
}

// Report is the detailed result of one run. Err holds the run-fatal cause
// behind StatusError; per-resolution failures live in Outcomes only.
type Report struct {
	Status           string
	Bucket           string
	Key              string
	RunID            string
	OriginalFileName string
	Outcomes         []Outcome
	Err              error
}

func (r Report) Result() types.Result {
	return types.Result{Status: r.Status}
}

func (r Report) Written() []string {
	var keys []string
	for _, o := range r.Outcomes {
		if o.Err == nil {
			keys = append(keys, o.Key)
		}
	}
	return keys
}

func (r Report) Failed() []string {
	var failed []string
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o.Resolution.String())
		}
	}
	return failed
}

type Option func(*Orchestrator)

// WithMaxParallel bounds how many resolutions are resized at once.
// Values below 1 mean one goroutine per resolution.
func WithMaxParallel(n int) Option {
	return func(o *Orchestrator) {
		o.maxParallel = n
	}
}

type Orchestrator struct {
	storage     Storage
	resizer     Resizer
	router      *routing.Router
	namer       naming.Namer
	resolutions []types.Resolution
	maxParallel int
	logger      zerolog.Logger
}

func New(storage Storage, resizer Resizer, router *routing.Router, namer naming.Namer, resolutions []types.Resolution, logger zerolog.Logger, opts ...Option) (*Orchestrator, error) {
	if storage == nil || resizer == nil || router == nil || namer == nil {
		return nil, errors.New("transcode: storage, resizer, router and namer are required")
	}
	if len(resolutions) == 0 {
		return nil, errors.New("transcode: at least one resolution is required")
	}
	o := &Orchestrator{
		storage:     storage,
		resizer:     resizer,
		router:      router,
		namer:       namer,
		resolutions: append([]types.Resolution(nil), resolutions...),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxParallel < 1 || o.maxParallel > len(o.resolutions) {
		o.maxParallel = len(o.resolutions)
	}
	return o, nil
}

// Run handles one trigger event and reports the coarse outcome. The only
// error returned is types.ErrEventShape; everything else is folded into
// the status.
func (o *Orchestrator) Run(ctx context.Context, event types.S3Event) (types.Result, error) {
	report, err := o.Process(ctx, event)
	if err != nil {
		return types.Result{}, err
	}
	return report.Result(), nil
}

// Process is Run with the per-resolution outcomes kept.
func (o *Orchestrator) Process(ctx context.Context, event types.S3Event) (Report, error) {
	rec, err := event.Source()
	if err != nil {
		return Report{}, err
	}
	if len(event.Records) > 1 {
		o.logger.Warn().Int("records", len(event.Records)).Msg("event carries several records, only the first is processed")
	}

	bucket := rec.S3.Bucket.Name
	report := Report{Bucket: bucket, Key: rec.S3.Object.Key}

	key, err := routing.DecodeKey(rec.S3.Object.Key)
	if err != nil {
		o.logger.Error().Err(err).Str("bucket", bucket).Msg("Error processing image")
		report.Status = types.StatusError
		report.Err = err
		return report, nil
	}
	report.Key = key
	log := o.logger.With().Str("bucket", bucket).Str("key", key).Logger()

	if !o.router.IsInScope(key) {
		log.Info().Str("prefix", o.router.IncomingPrefix()).Msg("skipping file outside the original folder")
		report.Status = types.StatusSkipped
		return report, nil
	}

	source, err := o.storage.GetObject(ctx, bucket, key)
	if err != nil {
		report.Err = fmt.Errorf("%w: %w", ErrFetch, err)
		log.Error().Err(report.Err).Msg("Error processing image")
		report.Status = types.StatusError
		return report, nil
	}

	report.RunID = o.namer.NewRunID()
	report.OriginalFileName = routing.OriginalFileName(key)
	log = log.With().Str("runId", report.RunID).Logger()

	report.Outcomes = o.fanOut(ctx, bucket, report.RunID, report.OriginalFileName, source, log)

	written := len(report.Written())
	log.Info().
		Int("written", written).
		Int("failed", len(report.Outcomes)-written).
		Msg("image processing completed")
	report.Status = types.StatusProcessed
	return report, nil
}

// fanOut runs every resolution to completion. Branches never return an
// error to the group, so one failure cannot cancel or hide the others.
func (o *Orchestrator) fanOut(ctx context.Context, bucket, runID, originalFileName string, source []byte, log zerolog.Logger) []Outcome {
	outcomes := make([]Outcome, len(o.resolutions))

	var g errgroup.Group
	g.SetLimit(o.maxParallel)
	for i, res := range o.resolutions {
		g.Go(func() error {
			outcomes[i] = o.transcodeOne(ctx, bucket, runID, originalFileName, source, res, log)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (o *Orchestrator) transcodeOne(ctx context.Context, bucket, runID, originalFileName string, source []byte, res types.Resolution, log zerolog.Logger) (out Outcome) {
	out = Outcome{Resolution: res, Key: routing.DestinationKey(res, runID)}
	log = log.With().Str("resolution", res.String()).Logger()

	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("panic while processing resolution %s: %v", res, r)
			log.Error().Err(out.Err).Msg("failed to process and save image for resolution")
		}
	}()

	buf, err := o.resizer.Resize(source, res)
	if err != nil {
		out.Err = err
		log.Error().Err(err).Msg("failed to process and save image for resolution")
		return out
	}

	metadata := map[string]string{MetadataOriginalFileName: originalFileName}
	if err := o.storage.PutObject(ctx, bucket, out.Key, buf, ContentType, metadata); err != nil {
		out.Err = err
		log.Error().Err(err).Msg("failed to process and save image for resolution")
		return out
	}

	log.Info().Str("destination", out.Key).Msg("successfully saved resized image")
	return out
}
