// Package combine wraps the external concatenation operation. The concrete
// implementation shells out to ffmpeg; the interface keeps the runner
// ignorant of how the output gets made.
package combine
