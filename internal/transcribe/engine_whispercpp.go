//go:build whisper_cpp

package transcribe

/*
#cgo LDFLAGS: -lwhisper -lm -lstdc++
#include <stdlib.h>
#include <whisper.h>
*/
import "C"

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"
)

// cgoEngine runs whisper.cpp inference in-process on the CPU. Built only
// with the whisper_cpp tag against an installed libwhisper.
type cgoEngine struct {
	mu       sync.Mutex
	ctx      *C.struct_whisper_context
	language *C.char
}

// NewEngine loads the ggml model at modelPath into a whisper context.
func NewEngine(modelPath, language string) (Engine, error) {
	cPath := C.CString(modelPath)
	defer C.free(unsafe.Pointer(cPath))

	params := C.whisper_context_default_params()
	params.use_gpu = C.bool(false)

	ctx := C.whisper_init_from_file_with_params(cPath, params)
	if ctx == nil {
		return nil, fmt.Errorf("load model %s", modelPath)
	}

	eng := &cgoEngine{ctx: ctx}
	if language != "" && language != "auto" {
		eng.language = C.CString(language)
	}
	return eng, nil
}

func (e *cgoEngine) Process(samples []float32) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx == nil {
		return "", fmt.Errorf("engine closed")
	}

	params := C.whisper_full_default_params(C.WHISPER_SAMPLING_GREEDY)
	params.print_progress = C.bool(false)
	params.print_realtime = C.bool(false)
	params.print_timestamps = C.bool(false)
	params.no_timestamps = C.bool(true)
	if e.language != nil {
		params.language = e.language
	}

	rc := C.whisper_full(e.ctx, params, (*C.float)(unsafe.Pointer(&samples[0])), C.int(len(samples)))
	if rc != 0 {
		return "", fmt.Errorf("whisper_full: rc=%d", int(rc))
	}

	var sb strings.Builder
	n := int(C.whisper_full_n_segments(e.ctx))
	for i := 0; i < n; i++ {
		sb.WriteString(C.GoString(C.whisper_full_get_segment_text(e.ctx, C.int(i))))
	}
	return strings.TrimSpace(sb.String()), nil
}

func (e *cgoEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx != nil {
		C.whisper_free(e.ctx)
		e.ctx = nil
	}
	if e.language != nil {
		C.free(unsafe.Pointer(e.language))
		e.language = nil
	}
	return nil
}
