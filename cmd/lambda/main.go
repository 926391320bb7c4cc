package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/mahirjain10/image-resolution-worker/config"
	"github.com/mahirjain10/image-resolution-worker/internal/app"
	"github.com/mahirjain10/image-resolution-worker/internal/logger"
	"github.com/mahirjain10/image-resolution-worker/internal/types"
	"github.com/mahirjain10/image-resolution-worker/internal/utils"
)

type runner interface {
	Run(ctx context.Context, event types.S3Event) (types.Result, error)
}

// newHandler adapts the orchestrator to a Lambda S3 trigger. The raw payload
// is decoded here so a malformed event surfaces as types.ErrEventShape.
func newHandler(r runner) func(ctx context.Context, payload json.RawMessage) (types.Result, error) {
	return func(ctx context.Context, payload json.RawMessage) (types.Result, error) {
		var event types.S3Event
		if err := utils.ParseJSON(payload, &event); err != nil {
			return types.Result{}, fmt.Errorf("%w: %w", types.ErrEventShape, err)
		}
		return r.Run(ctx, event)
	}
}

func main() {
	ctx := context.Background()

	// Configuration comes from the function environment, not .env files.
	cfg, err := config.FromEnv(os.Getenv)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	appEnv := cfg.AppEnv
	if appEnv == "" {
		appEnv = "lambda"
	}

	orchestrator, err := app.NewOrchestrator(ctx, cfg, logger.NewLogger(appEnv, cfg.LogLevel))
	if err != nil {
		log.Fatalf("failed to initialize orchestrator: %v", err)
	}

	lambda.Start(newHandler(orchestrator))
}
