package request

import (
	"github.com/kbukum/reqkit/errors"
)

// Transformer stages.
const (
	stageRequest  = "request"
	stageResponse = "response"
	stageData     = "data"
	stageHeader   = "header"
)

// TransformData applies fns to data in order. Each transformer receives the
// data produced by the previous one and the shared headers. An empty list
// returns data unchanged. The first failing transformer stops the pipeline
// with a TRANSFORM_FAILED error.
func TransformData(data any, headers Header, fns []Transformer) (any, error) {
	return transformData(stageData, data, headers, fns)
}

func transformData(stage string, data any, headers Header, fns []Transformer) (any, error) {
	for i, fn := range fns {
		if fn == nil {
			continue
		}
		next, err := fn(data, headers)
		if err != nil {
			return nil, errors.TransformFailed(stage, i, err)
		}
		data = next
	}
	return data, nil
}

// runHeaderHooks applies hooks to headers in order, stopping at the first
// failure with a TRANSFORM_FAILED error.
func runHeaderHooks(headers Header, hooks []HeaderHook) error {
	for i, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook(headers); err != nil {
			return errors.TransformFailed(stageHeader, i, err)
		}
	}
	return nil
}
