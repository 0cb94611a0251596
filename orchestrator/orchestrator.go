package orchestrator

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"imageflow/blobstore"
	"imageflow/core"
	"imageflow/imagegen"
	"imageflow/logging"
	"imageflow/metrics"
	"imageflow/validator"
	"imageflow/visionclient"
)

// blobUploader is the subset of *blobstore.Store the orchestrator needs.
type blobUploader interface {
	Upload(ctx context.Context, data []byte, mime, prefix, ext string) (blobstore.Asset, error)
}

// vision is the subset of *visionclient.Client the orchestrator needs.
type vision interface {
	ReconstructPrompt(ctx context.Context, imageBytes []byte, mime string) (visionclient.Outcome, error)
	ApplyInstructions(ctx context.Context, basePrompt, instructions string, references []visionclient.ReferenceImage) (visionclient.Outcome, error)
}

// synthesizer is the subset of *imagegen.Client the orchestrator needs.
type synthesizer interface {
	Generate(ctx context.Context, prompt string, aspectRatio imagegen.AspectRatio) ([]byte, bool, error)
}

// Orchestrator is the Pipeline Orchestrator: it wires the Validator,
// Blob Store Adapter, Vision / Text Model Client, and Image Synthesis
// Client together in the strict sequence described in §4.6.
type Orchestrator struct {
	blobs        blobUploader
	vision       vision
	synth        synthesizer
	outputFormat string
	metrics      metrics.MetricsCollector
	logger       *logging.Logger
}

// New wires an Orchestrator from its collaborators.
func New(blobs blobUploader, visionClient vision, synth synthesizer, outputFormat string, metricsCollector metrics.MetricsCollector, logger *logging.Logger) *Orchestrator {
	return &Orchestrator{
		blobs:        blobs,
		vision:       visionClient,
		synth:        synth,
		outputFormat: outputFormat,
		metrics:      metricsCollector,
		logger:       logger.Named("orchestrator"),
	}
}

// Run executes the full state-machine view of a request from §4.6 and
// returns the Pipeline Response alongside the HTTP status it should be
// served with.
func (o *Orchestrator) Run(ctx context.Context, req *validator.Request) (*Response, int) {
	correlationID := core.NewCorrelationID()
	log := o.logger.With(zap.String("correlation_id", correlationID))
	started := time.Now()

	resp := &Response{}

	baseAsset, refAssets, err := o.uploadInputs(ctx, req)
	if err != nil {
		log.Error("upload inputs failed", zap.Error(err))
		o.recordStage(correlationID, metrics.StageUploadInput, started, err)
		resp.Error = "failed to upload input images: " + err.Error()
		return resp, http.StatusInternalServerError
	}
	resp.BaseImageURL = baseAsset.PublicURL
	resp.BaseImageKey = baseAsset.Key
	resp.ReferenceImageURLs = assetURLs(refAssets)
	resp.ReferenceImageKeys = assetKeys(refAssets)

	stage1Started := time.Now()
	outcome1, err := o.vision.ReconstructPrompt(ctx, req.BaseImage.Bytes, req.BaseImage.MIME)
	o.recordStage(correlationID, metrics.StageReconstruct, stage1Started, err)
	if err != nil {
		log.Error("stage 1 transport error", zap.Error(err))
		resp.Error = "prompt reconstruction failed: " + err.Error()
		return resp, http.StatusBadGateway
	}

	trimmed1 := strings.TrimSpace(outcome1.Prompt)
	resp.Prompt1 = &trimmed1
	if !outcome1.Generated {
		resp.Error = "vision model declined to describe the base image"
		return resp, http.StatusBadGateway
	}
	if len(trimmed1) < 3 {
		resp.Error = "vision model returned an invalid (empty or too-short) prompt"
		return resp, http.StatusBadGateway
	}

	prompt2 := trimmed1
	if req.UserInstructions == "" {
		resp.Prompt2 = &prompt2
		resp.Step2Executed = false
	} else {
		resp.Step2Executed = true

		references := make([]visionclient.ReferenceImage, len(req.ReferenceImages))
		for i, r := range req.ReferenceImages {
			references[i] = visionclient.ReferenceImage{Bytes: r.Bytes, MIME: r.MIME}
		}

		stage2Started := time.Now()
		outcome2, err := o.vision.ApplyInstructions(ctx, trimmed1, req.UserInstructions, references)
		o.recordStage(correlationID, metrics.StageApplyInstructions, stage2Started, err)
		if err != nil {
			log.Error("stage 2 transport error", zap.Error(err))
			resp.Error = "instruction application failed: " + err.Error()
			return resp, http.StatusBadGateway
		}

		trimmed2 := strings.TrimSpace(outcome2.Prompt)
		resp.Prompt2 = &trimmed2
		if !outcome2.Generated {
			resp.Error = "vision model declined to apply the requested instructions"
			return resp, http.StatusBadGateway
		}
		if len(trimmed2) < 3 {
			resp.Error = "vision model returned an invalid (empty or too-short) edited prompt"
			return resp, http.StatusBadGateway
		}

		prompt2 = trimmed2
	}

	stage3Started := time.Now()
	imageBytes, usedFallback, err := o.synth.Generate(ctx, prompt2, imagegen.AspectRatio(req.AspectRatio))
	synthStage := metrics.StageSynthesizePrimary
	if usedFallback {
		synthStage = metrics.StageSynthesizeFallback
	}
	o.recordStage(correlationID, synthStage, stage3Started, err)
	if err != nil {
		log.Error("image synthesis failed", zap.Error(err))
		resp.Error = "image synthesis failed: " + err.Error()
		return resp, http.StatusBadGateway
	}

	stage4Started := time.Now()
	outAsset, err := o.blobs.Upload(ctx, imageBytes, "image/"+o.outputFormat, blobstore.PrefixOutputs, o.outputFormat)
	o.recordStage(correlationID, metrics.StageUploadOutput, stage4Started, err)
	if err != nil {
		log.Error("upload output failed", zap.Error(err))
		resp.Error = "failed to upload generated image: " + err.Error()
		return resp, http.StatusInternalServerError
	}

	resp.OutputImageURL = &outAsset.PublicURL
	resp.OutputImageKey = &outAsset.Key
	resp.PromptGenerated = true

	log.Info("pipeline run complete", zap.Duration("total_duration", time.Since(started)))
	return resp, http.StatusOK
}

func (o *Orchestrator) recordStage(correlationID, stage string, started time.Time, err error) {
	if o.metrics == nil {
		return
	}

	status := metrics.RunStatusSuccess
	errMsg := ""
	if err != nil {
		status = metrics.RunStatusError
		errMsg = err.Error()
	}

	o.metrics.RecordRun(metrics.RunRecord{
		ID:        correlationID,
		Stage:     stage,
		Status:    status,
		StartTime: started,
		EndTime:   time.Now(),
		Duration:  time.Since(started),
		ErrorMsg:  errMsg,
	})
}
