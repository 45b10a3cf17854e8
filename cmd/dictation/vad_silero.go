//go:build silero

package main

import (
	"fmt"

	"github.com/open-dictation/dictd/internal/vad"
)

// buildVADEngine resolves the --vad selector for the silero build,
// which links against onnxruntime and can construct the neural engine.
func buildVADEngine(name string, threshold float64, modelPath, libPath string) (vad.Engine, error) {
	switch name {
	case "rms", "":
		return vad.NewRMSEngine(threshold), nil
	case "silero":
		if modelPath == "" || libPath == "" {
			return nil, fmt.Errorf("vad: silero engine requires -vad-model and -vad-lib")
		}
		return vad.NewSilero(modelPath, libPath, threshold)
	default:
		return nil, fmt.Errorf("vad: unknown engine %q", name)
	}
}
