// Package report turns extracted samples into host payloads.
package report

import "github.com/ericogr/adc-sampler/pkg/sampler"

// Policy names accepted in configuration.
const (
	PolicyText   = "text"
	PolicyBinary = "binary"
)

// Policy builds the payload for one frame's samples. A nil result means
// there is nothing to report.
type Policy interface {
	Build(samples []sampler.Sample) []byte
	// Periodic reports whether payloads are sent on the transport's report
	// cadence rather than as they are built.
	Periodic() bool
}
