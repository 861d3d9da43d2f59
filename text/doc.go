// Package text converts between compilation-hint payloads and their
// human-readable directive syntax.
//
// Directives use WAT custom-annotation form, one per hint family:
//
//	(@metadata.code.compilation_order (priority 1) (hotness 100))
//	(@metadata.code.instr_freq 0.5)
//	(@metadata.code.instr_freq never)
//	(@metadata.code.call_targets (target 1 0.73) (target $helper 0.21))
//
// ParsePayload builds the binary-ready payload for a directive;
// PrintPayload is its inverse. Frequency ratios pass through the log2
// bucketing law, so printing is lossy within one bucket; the "never"
// and "always" sentinels and all integer fields round-trip exactly.
package text
