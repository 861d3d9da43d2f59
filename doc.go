// Package wasmhints implements the WebAssembly compilation hints
// custom sections (the "metadata.code.*" family).
//
// Compilation hints let a toolchain pass profile knowledge to an
// engine inside ordinary custom sections: which functions to compile
// first, how often an instruction executes relative to its function,
// and where indirect calls tend to land. An engine that does not know
// the sections skips them; one that does can use them to order and
// tier its compilation.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	wasmhints/           Root package (documentation only)
//	├── hints/           Binary codec, semantic validation, frequency math
//	├── text/            Directive text form: parse and print
//	├── wasm/            Module scanning and custom section splicing
//	├── errors/          Structured error types for debugging
//	└── cmd/hints/       CLI to inspect, validate, and browse hints
//
// # Quick Start
//
// Read the hints out of a module:
//
//	info, err := wasm.Scan(moduleBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, cs := range info.HintSections() {
//	    sec, err := hints.DecodeSection(cs.Name, cs.Data)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for _, d := range hints.ValidateIn(sec, info) {
//	        fmt.Println(d)
//	    }
//	    fmt.Print(text.PrintSection(sec))
//	}
//
// Encoding is the exact inverse of decoding: for any section that
// decodes cleanly, sec.Encode() reproduces the input bytes.
package wasmhints
