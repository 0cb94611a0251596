// Package startup prints a colored pre-flight checklist before the server
// begins accepting requests, in the same register as the validation suite
// it was adapted from.
package startup

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"imageflow/core"
)

// StepStatus is the outcome of a single checklist step.
type StepStatus int

const (
	StepPassed StepStatus = iota
	StepFailed
	StepWarning
)

// Step is one pre-flight checklist entry.
type Step struct {
	Name    string
	Status  StepStatus
	Message string
}

// RunChecks prints the startup checklist to stdout and returns the process
// exit code to use: core.ExitCodeSuccess if every required credential is
// present and well-formed, core.ExitCodeError otherwise. It does not itself
// call core.LoadConfig — it only inspects the raw environment, so it can run
// before configuration loading and report actionable errors up front.
func RunChecks(logger *zap.Logger, isDevelopment bool) int {
	steps := []Step{
		checkRequired("OPENAI_API_KEY", "vision / prompt-editor model"),
		checkRequired("S3_ACCESS_KEY", "blob storage credentials"),
		checkRequired("S3_SECRET_KEY", "blob storage credentials"),
		checkRequired("S3_BUCKET_NAME", "blob storage bucket"),
		checkPublicURL(),
		checkRequired("GOOGLE_VERTEX_PROJECT_ID", "primary image provider"),
		checkCredentialsFile(),
		checkFallback(),
	}

	printHeader("image-flow pre-flight checklist")

	passed, failed := 0, 0
	for _, step := range steps {
		printStep(step)
		switch step.Status {
		case StepPassed:
			passed++
		case StepFailed:
			failed++
		}
	}

	printSummary(passed, failed, len(steps))

	if failed > 0 {
		logger.Error("startup checklist failed", zap.Int("failed_steps", failed))
		return core.ExitCodeError
	}
	return core.ExitCodeSuccess
}

func checkRequired(envVar, purpose string) Step {
	if v := os.Getenv(envVar); strings.TrimSpace(v) != "" {
		return Step{Name: envVar, Status: StepPassed, Message: purpose}
	}
	return Step{Name: envVar, Status: StepFailed, Message: purpose + " — not set"}
}

func checkPublicURL() Step {
	raw := os.Getenv("S3_PUBLIC_LINK")
	if strings.TrimSpace(raw) == "" {
		return Step{Name: "S3_PUBLIC_LINK", Status: StepFailed, Message: "public asset base URL — not set"}
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return Step{Name: "S3_PUBLIC_LINK", Status: StepFailed, Message: "not a valid URL: " + err.Error()}
	}
	return Step{Name: "S3_PUBLIC_LINK", Status: StepPassed, Message: "public asset base URL"}
}

func checkCredentialsFile() Step {
	path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if strings.TrimSpace(path) == "" {
		return Step{Name: "GOOGLE_APPLICATION_CREDENTIALS", Status: StepFailed, Message: "service-account key — not set"}
	}
	if _, err := os.Stat(path); err != nil {
		return Step{Name: "GOOGLE_APPLICATION_CREDENTIALS", Status: StepFailed, Message: "cannot read file: " + err.Error()}
	}
	return Step{Name: "GOOGLE_APPLICATION_CREDENTIALS", Status: StepPassed, Message: "service-account key readable"}
}

func checkFallback() Step {
	if os.Getenv("FAL_API_KEY") == "" {
		return Step{Name: "FAL_API_KEY", Status: StepWarning, Message: "fallback image provider disabled — primary-only"}
	}
	return Step{Name: "FAL_API_KEY", Status: StepPassed, Message: "fallback image provider enabled"}
}

func printHeader(title string) {
	fmt.Println()
	headerColor := color.New(color.FgCyan, color.Bold)
	headerColor.Printf("━━━ %s ━━━\n", title)
	fmt.Println()
}

func printStep(step Step) {
	var icon string
	var clr *color.Color

	switch step.Status {
	case StepPassed:
		icon = "✓"
		clr = color.New(color.FgGreen)
	case StepFailed:
		icon = "✗"
		clr = color.New(color.FgRed)
	case StepWarning:
		icon = "!"
		clr = color.New(color.FgYellow)
	}

	clr.Printf("  %s %s", icon, step.Name)
	if step.Message != "" {
		color.New(color.FgHiBlack).Printf(" - %s", step.Message)
	}
	fmt.Println()
}

func printSummary(passed, failed, total int) {
	fmt.Println()
	if failed == 0 {
		successColor := color.New(color.FgGreen, color.Bold)
		successColor.Printf("━━━ Checklist Passed ")
		color.New(color.FgHiBlack).Printf("(%d/%d checks passed)", passed, total)
		successColor.Println(" ━━━")
	} else {
		failColor := color.New(color.FgRed, color.Bold)
		failColor.Printf("━━━ Checklist Failed ")
		color.New(color.FgHiBlack).Printf("(%d passed, %d failed)", passed, failed)
		failColor.Println(" ━━━")
	}
	fmt.Println()
}
