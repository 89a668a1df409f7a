package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxPredictBody caps the size of a predict request body.
const maxPredictBody = 64 << 10

// PredictHandler scores simulator submissions.
type PredictHandler struct {
	deps      PredictDependencies
	validator *formValidator
}

// NewPredictHandler creates a new predict handler validating bodies against
// the simulator form of deps.
func NewPredictHandler(deps PredictDependencies) (*PredictHandler, error) {
	v, err := newFormValidator(deps.FormOptions())
	if err != nil {
		return nil, err
	}
	return &PredictHandler{deps: deps, validator: v}, nil
}

// HandlePostPredict handles POST /api/v1/predict requests. The body is a
// flat object of attribute values.
func (h *PredictHandler) HandlePostPredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_predict"
	if !allowMethod(w, r, op, http.MethodPost) {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPredictBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("body exceeds %d bytes", tooLarge.Limit)
		}
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.validator.validate(body); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	var values map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&values); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	prediction, err := h.deps.Predict(r.Context(), values)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}
