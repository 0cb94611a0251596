package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"imageflow/blobstore"
	"imageflow/imagegen"
	"imageflow/logging"
	"imageflow/metrics"
	"imageflow/validator"
	"imageflow/visionclient"
)

type fakeBlobUploader struct {
	uploadCount int
	err         error
}

func (f *fakeBlobUploader) Upload(ctx context.Context, data []byte, mime, prefix, ext string) (blobstore.Asset, error) {
	f.uploadCount++
	if f.err != nil {
		return blobstore.Asset{}, f.err
	}
	return blobstore.Asset{
		Key:       prefix + "/fake-" + mime,
		PublicURL: "https://cdn.example.com/" + prefix + "/fake-" + mime,
	}, nil
}

type fakeVision struct {
	reconstruct visionclient.Outcome
	reconErr    error
	apply       visionclient.Outcome
	applyErr    error
}

func (f *fakeVision) ReconstructPrompt(ctx context.Context, imageBytes []byte, mime string) (visionclient.Outcome, error) {
	return f.reconstruct, f.reconErr
}

func (f *fakeVision) ApplyInstructions(ctx context.Context, basePrompt, instructions string, references []visionclient.ReferenceImage) (visionclient.Outcome, error) {
	return f.apply, f.applyErr
}

type fakeSynth struct {
	bytes        []byte
	err          error
	usedFallback bool
}

func (f *fakeSynth) Generate(ctx context.Context, prompt string, aspectRatio imagegen.AspectRatio) ([]byte, bool, error) {
	return f.bytes, f.usedFallback, f.err
}

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	l, err := logging.NewLogger(false, t.TempDir()+"/test.log")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	return l
}

func baseRequest() *validator.Request {
	return &validator.Request{
		BaseImage:   validator.ImageFile{Bytes: []byte("base"), MIME: "image/png"},
		AspectRatio: "1:1",
	}
}

// S1 — happy path without instructions.
func TestRun_HappyPathWithoutInstructions(t *testing.T) {
	blobs := &fakeBlobUploader{}
	vis := &fakeVision{reconstruct: visionclient.Outcome{Prompt: "a red bicycle", Generated: true}}
	synth := &fakeSynth{bytes: []byte("image-bytes")}
	store := metrics.NewMetricsStore(metrics.DefaultStoreConfig(), time.Now())

	orch := New(blobs, vis, synth, "png", store, testLogger(t))

	resp, status := orch.Run(context.Background(), baseRequest())

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if resp.Step2Executed {
		t.Error("Step2Executed = true, want false")
	}
	if resp.Prompt1 == nil || resp.Prompt2 == nil || *resp.Prompt1 != *resp.Prompt2 {
		t.Errorf("Prompt1/Prompt2 = %v/%v, want equal", resp.Prompt1, resp.Prompt2)
	}
	if resp.OutputImageURL == nil {
		t.Error("OutputImageURL = nil, want present")
	}
	if !resp.PromptGenerated {
		t.Error("PromptGenerated = false, want true")
	}
}

// S2 — happy path with instructions.
func TestRun_HappyPathWithInstructions(t *testing.T) {
	blobs := &fakeBlobUploader{}
	vis := &fakeVision{
		reconstruct: visionclient.Outcome{Prompt: "a woman holding a cup", Generated: true},
		apply:       visionclient.Outcome{Prompt: "a woman holding a cup in her right hand", Generated: true},
	}
	synth := &fakeSynth{bytes: []byte("image-bytes")}

	orch := New(blobs, vis, synth, "png", nil, testLogger(t))

	req := baseRequest()
	req.UserInstructions = "move the cup to her right hand"

	resp, status := orch.Run(context.Background(), req)

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if !resp.Step2Executed {
		t.Error("Step2Executed = false, want true")
	}
	if resp.Prompt1 == nil || resp.Prompt2 == nil || *resp.Prompt1 == *resp.Prompt2 {
		t.Errorf("Prompt1/Prompt2 should differ, got %v/%v", resp.Prompt1, resp.Prompt2)
	}
	if resp.OutputImageURL == nil {
		t.Error("OutputImageURL = nil, want present")
	}
}

// S3 — Stage-1 refusal.
func TestRun_Stage1Refusal(t *testing.T) {
	blobs := &fakeBlobUploader{}
	vis := &fakeVision{reconstruct: visionclient.Outcome{Prompt: "I'm sorry, I can't help with that.", Generated: false}}
	synth := &fakeSynth{}

	orch := New(blobs, vis, synth, "png", nil, testLogger(t))

	resp, status := orch.Run(context.Background(), baseRequest())

	if status != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", status)
	}
	if resp.Prompt1 == nil || *resp.Prompt1 != "I'm sorry, I can't help with that." {
		t.Errorf("Prompt1 = %v, want refusal text", resp.Prompt1)
	}
	if resp.Prompt2 != nil {
		t.Errorf("Prompt2 = %v, want nil", resp.Prompt2)
	}
	if resp.OutputImageURL != nil {
		t.Errorf("OutputImageURL = %v, want nil", resp.OutputImageURL)
	}
	if resp.Error == "" {
		t.Error("Error = empty, want non-empty")
	}
	if resp.PromptGenerated {
		t.Error("PromptGenerated = true, want false")
	}
}

// S4 — Stage-2 refusal.
func TestRun_Stage2Refusal(t *testing.T) {
	blobs := &fakeBlobUploader{}
	vis := &fakeVision{
		reconstruct: visionclient.Outcome{Prompt: "a landscape painting", Generated: true},
		apply:       visionclient.Outcome{Prompt: "I cannot make that change.", Generated: false},
	}
	synth := &fakeSynth{}

	orch := New(blobs, vis, synth, "png", nil, testLogger(t))

	req := baseRequest()
	req.UserInstructions = "add a dragon"

	resp, status := orch.Run(context.Background(), req)

	if status != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", status)
	}
	if resp.Prompt1 == nil {
		t.Error("Prompt1 = nil, want present")
	}
	if resp.Prompt2 == nil || *resp.Prompt2 != "I cannot make that change." {
		t.Errorf("Prompt2 = %v, want refusal text", resp.Prompt2)
	}
	if resp.OutputImageURL != nil {
		t.Errorf("OutputImageURL = %v, want nil", resp.OutputImageURL)
	}
	if !resp.Step2Executed {
		t.Error("Step2Executed = false, want true (attempt was made)")
	}
}

func TestRun_Stage1TooShortPromptTreatedAsFailure(t *testing.T) {
	blobs := &fakeBlobUploader{}
	vis := &fakeVision{reconstruct: visionclient.Outcome{Prompt: "ok", Generated: true}}
	synth := &fakeSynth{}

	orch := New(blobs, vis, synth, "png", nil, testLogger(t))

	resp, status := orch.Run(context.Background(), baseRequest())

	if status != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", status)
	}
	if resp.OutputImageURL != nil {
		t.Error("OutputImageURL should be nil on short-prompt failure")
	}
}

func TestRun_UploadInputFailureAborts502(t *testing.T) {
	blobs := &fakeBlobUploader{err: errors.New("s3 unreachable")}
	vis := &fakeVision{}
	synth := &fakeSynth{}

	orch := New(blobs, vis, synth, "png", nil, testLogger(t))

	resp, status := orch.Run(context.Background(), baseRequest())

	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
	if resp.Error == "" {
		t.Error("Error = empty, want non-empty")
	}
}

func TestRun_FallbackSynthesisRecordsFallbackStage(t *testing.T) {
	blobs := &fakeBlobUploader{}
	vis := &fakeVision{reconstruct: visionclient.Outcome{Prompt: "a mountain at sunrise", Generated: true}}
	synth := &fakeSynth{bytes: []byte("image-bytes"), usedFallback: true}
	store := metrics.NewMetricsStore(metrics.DefaultStoreConfig(), time.Now())

	orch := New(blobs, vis, synth, "png", store, testLogger(t))

	resp, status := orch.Run(context.Background(), baseRequest())

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if resp.OutputImageURL == nil {
		t.Fatal("OutputImageURL = nil, want present")
	}

	runs := store.GetRecentRuns(100)
	found := false
	for _, r := range runs {
		if r.Stage == metrics.StageSynthesizeFallback {
			found = true
		}
		if r.Stage == metrics.StageSynthesizePrimary {
			t.Error("recorded StageSynthesizePrimary when fallback was used")
		}
	}
	if !found {
		t.Error("no run recorded under StageSynthesizeFallback")
	}
}

func TestRun_SynthesisFailureAfterSuccessfulPrompting(t *testing.T) {
	blobs := &fakeBlobUploader{}
	vis := &fakeVision{reconstruct: visionclient.Outcome{Prompt: "a mountain at sunrise", Generated: true}}
	synth := &fakeSynth{err: errors.New("both providers failed")}

	orch := New(blobs, vis, synth, "png", nil, testLogger(t))

	resp, status := orch.Run(context.Background(), baseRequest())

	if status != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", status)
	}
	if resp.OutputImageURL != nil {
		t.Error("OutputImageURL should be nil when synthesis fails")
	}
	if resp.Prompt1 == nil {
		t.Error("Prompt1 should still be populated (partial state)")
	}
}
