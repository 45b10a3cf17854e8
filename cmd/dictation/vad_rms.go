//go:build !silero

package main

import (
	"fmt"

	"github.com/open-dictation/dictd/internal/vad"
)

// buildVADEngine resolves the --vad selector for the default build,
// which carries no onnxruntime dependency; -vad silero is only
// available in binaries built with -tags silero.
func buildVADEngine(name string, threshold float64, modelPath, libPath string) (vad.Engine, error) {
	switch name {
	case "rms", "":
		return vad.NewRMSEngine(threshold), nil
	case "silero":
		return nil, fmt.Errorf("vad: silero engine requires building with -tags silero")
	default:
		return nil, fmt.Errorf("vad: unknown engine %q", name)
	}
}
