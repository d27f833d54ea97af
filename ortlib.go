package main

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

// resolveSharedLibPath locates the ONNX Runtime shared library. The
// ONNXRUNTIME_LIB environment variable wins; otherwise the platform name is
// looked up under lib/ next to the working directory.
func resolveSharedLibPath() (string, error) {
	if p := os.Getenv("ONNXRUNTIME_LIB"); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", errors.Wrap(err, "ONNXRUNTIME_LIB")
		}
		return p, nil
	}

	libName := "libonnxruntime.so"
	switch runtime.GOOS {
	case "darwin":
		libName = "libonnxruntime.dylib"
	case "windows":
		libName = "onnxruntime.dll"
	}

	p := filepath.Join("lib", libName)
	if _, err := os.Stat(p); err != nil {
		return "", errors.Wrapf(err, "onnxruntime library not found (set ONNXRUNTIME_LIB or place %s)", p)
	}
	return p, nil
}
