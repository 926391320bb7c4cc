package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mahirjain10/image-resolution-worker/config"
	"github.com/mahirjain10/image-resolution-worker/internal/aws"
	"github.com/mahirjain10/image-resolution-worker/internal/naming"
	"github.com/mahirjain10/image-resolution-worker/internal/routing"
	"github.com/mahirjain10/image-resolution-worker/internal/transcode"
	"github.com/mahirjain10/image-resolution-worker/internal/transformation"
)

// NewOrchestrator builds the transcode pipeline both hosts share: S3
// storage, the JPEG resizer, the key router and UUID run ids.
func NewOrchestrator(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*transcode.Orchestrator, error) {
	if err := config.ValidateResolutions(cfg.Resolutions); err != nil {
		return nil, err
	}

	awsConfig, err := config.InitializeAws(ctx, cfg.AwsRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AWS config: %w", err)
	}
	s3Service := aws.NewS3Service(aws.NewS3Client(awsConfig, cfg.S3Endpoint))

	orchestrator, err := transcode.New(
		s3Service,
		transformation.NewResizer(cfg.JPEGQuality),
		routing.NewRouter(cfg.IncomingPrefix),
		naming.UUIDNamer{},
		cfg.Resolutions,
		logger,
		transcode.WithMaxParallel(cfg.MaxParallel),
	)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("incomingPrefix", cfg.IncomingPrefix).
		Int("resolutions", len(cfg.Resolutions)).
		Msg("transcode orchestrator initialized")
	return orchestrator, nil
}
