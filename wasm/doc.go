// Package wasm scans WebAssembly binaries for the pieces hint tooling
// needs: custom sections, function body sizes, and the positions of
// control-transfer instructions. It also splices custom sections in
// and out of a module without touching the rest of the binary.
//
// Scanning is deliberately shallow. Section framing is checked, code
// bodies are walked instruction by instruction, but types are not
// resolved and no validation beyond that is attempted. A module that
// a full runtime would reject can still be scanned, which is the
// right trade-off for tooling that reads hints out of modules it did
// not produce.
package wasm
