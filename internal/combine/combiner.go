package combine

import "context"

// Combiner concatenates an ordered list of local video files into one output
// file. The runner treats it as a black box: it either produces outputPath or
// fails with a human-readable reason.
type Combiner interface {
	Combine(ctx context.Context, inputs []string, outputPath string) error
}
