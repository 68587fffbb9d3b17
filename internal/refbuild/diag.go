package refbuild

import (
	"fmt"
	"log/slog"
)

// Diagnostic is one structured message produced during a build. The core
// never logs directly; the command layer replays diagnostics through its
// own logger.
type Diagnostic struct {
	Level    slog.Level
	SampleID string
	Message  string
}

func infof(sampleID, format string, args ...any) Diagnostic {
	return Diagnostic{Level: slog.LevelInfo, SampleID: sampleID, Message: fmt.Sprintf(format, args...)}
}

func warnf(sampleID, format string, args ...any) Diagnostic {
	return Diagnostic{Level: slog.LevelWarn, SampleID: sampleID, Message: fmt.Sprintf(format, args...)}
}

func errorf(sampleID, format string, args ...any) Diagnostic {
	return Diagnostic{Level: slog.LevelError, SampleID: sampleID, Message: fmt.Sprintf(format, args...)}
}
