// Package ml provides handles to trained prediction models.
package ml

import (
	"errors"
	"fmt"
)

var (
	// ErrModelUnavailable indicates no usable model is registered for a target
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrShapeMismatch indicates the feature row does not match the model's feature order
	ErrShapeMismatch = errors.New("feature shape mismatch")

	// ErrNonFinitePrediction indicates the model answered NaN or Inf
	ErrNonFinitePrediction = errors.New("non-finite prediction")

	// ErrCapabilityMissing indicates the model cannot answer the requested kind of prediction
	ErrCapabilityMissing = errors.New("model capability missing")

	// ErrConnectionFailed indicates a remote model could not be reached
	ErrConnectionFailed = errors.New("model connection failed")

	// ErrInvalidResponse indicates a remote model answered with an unusable payload
	ErrInvalidResponse = errors.New("invalid response from model")

	// ErrInvalidArtifact indicates a model artifact or feature sidecar could not be used
	ErrInvalidArtifact = errors.New("invalid model artifact")
)

// ErrCircuitOpen indicates calls to a failing model are suspended
var ErrCircuitOpen = fmt.Errorf("%w: circuit open", ErrModelUnavailable)
