// Package ml provides a gRPC client for remotely served models.
package ml

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Full method names of the model service. Requests and responses are
// google.protobuf.Struct messages so no generated stubs are needed.
const (
	ModelServiceName   = "scoresight.v1.ModelService"
	predictMethod      = "/" + ModelServiceName + "/Predict"
	predictProbaMethod = "/" + ModelServiceName + "/PredictProba"
)

// GRPCModelConfig holds configuration for gRPC model clients
type GRPCModelConfig struct {
	Address string
	Timeout time.Duration
}

// GRPCModel calls a model server over gRPC
type GRPCModel struct {
	conn    *grpc.ClientConn
	spec    FeatureSpec
	timeout time.Duration
	logger  *logrus.Entry
}

// NewGRPCModel creates a client for the model service at cfg.Address.
// The connection is established lazily on the first call.
func NewGRPCModel(cfg GRPCModelConfig, spec FeatureSpec, logger *logrus.Logger, opts ...grpc.DialOption) (*GRPCModel, error) {
	connectParams := grpc.ConnectParams{
		Backoff: backoff.Config{
			BaseDelay:  1 * time.Second,
			Multiplier: 1.6,
			Jitter:     0.2,
			MaxDelay:   5 * time.Second,
		},
		MinConnectTimeout: 5 * time.Second,
	}

	keepAlive := keepalive.ClientParameters{
		Time:                30 * time.Second,
		Timeout:             10 * time.Second,
		PermitWithoutStream: true,
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithConnectParams(connectParams),
		grpc.WithKeepaliveParams(keepAlive),
	}, opts...)

	conn, err := grpc.NewClient(cfg.Address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	return &GRPCModel{
		conn:    conn,
		spec:    spec,
		timeout: cfg.Timeout,
		logger:  logrus.NewEntry(logger).WithFields(logrus.Fields{"model_kind": "grpc", "address": cfg.Address}),
	}, nil
}

// Predict calls ModelService/Predict and reads the "prediction" field
func (m *GRPCModel) Predict(ctx context.Context, row []float64) (float64, error) {
	resp, err := m.invoke(ctx, predictMethod, row)
	if err != nil {
		return 0, err
	}

	v, ok := resp.GetFields()["prediction"]
	if !ok {
		ModelErrorsTotal.WithLabelValues("grpc", "Predict", "invalid_response").Inc()
		return 0, fmt.Errorf("%w: missing prediction", ErrInvalidResponse)
	}
	if _, isNumber := v.GetKind().(*structpb.Value_NumberValue); !isNumber {
		ModelErrorsTotal.WithLabelValues("grpc", "Predict", "invalid_response").Inc()
		return 0, fmt.Errorf("%w: prediction is not a number", ErrInvalidResponse)
	}
	return v.GetNumberValue(), nil
}

// PredictProba calls ModelService/PredictProba and reads the "probabilities" list
func (m *GRPCModel) PredictProba(ctx context.Context, row []float64) ([]float64, error) {
	resp, err := m.invoke(ctx, predictProbaMethod, row)
	if err != nil {
		return nil, err
	}

	values := resp.GetFields()["probabilities"].GetListValue().GetValues()
	if len(values) == 0 {
		ModelErrorsTotal.WithLabelValues("grpc", "PredictProba", "invalid_response").Inc()
		return nil, fmt.Errorf("%w: missing probabilities", ErrInvalidResponse)
	}

	proba := make([]float64, len(values))
	for i, v := range values {
		if _, isNumber := v.GetKind().(*structpb.Value_NumberValue); !isNumber {
			return nil, fmt.Errorf("%w: probability %d is not a number", ErrInvalidResponse, i)
		}
		proba[i] = v.GetNumberValue()
	}
	return proba, nil
}

func (m *GRPCModel) invoke(ctx context.Context, method string, row []float64) (*structpb.Struct, error) {
	start := time.Now()
	defer func() {
		ModelLatency.WithLabelValues("grpc").Observe(time.Since(start).Seconds())
	}()

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	req, err := m.request(row)
	if err != nil {
		return nil, err
	}

	resp := &structpb.Struct{}
	if err := m.conn.Invoke(ctx, method, req, resp); err != nil {
		code := status.Code(err)
		ModelErrorsTotal.WithLabelValues("grpc", method, code.String()).Inc()
		m.logger.WithError(err).WithField("method", method).Debug("Model call failed")

		switch code {
		case codes.Unimplemented:
			return nil, fmt.Errorf("%w: %v", ErrCapabilityMissing, err)
		case codes.Unavailable, codes.DeadlineExceeded:
			return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	ModelRequestsTotal.WithLabelValues("grpc", "false").Inc()
	return resp, nil
}

func (m *GRPCModel) request(row []float64) (*structpb.Struct, error) {
	featureValues := make([]interface{}, len(row))
	for i, v := range row {
		featureValues[i] = v
	}
	names := make([]interface{}, len(m.spec.FeatureOrder))
	for i, name := range m.spec.FeatureOrder {
		names[i] = name
	}

	req, err := structpb.NewStruct(map[string]interface{}{
		"features":      featureValues,
		"feature_names": names,
		"model_version": m.spec.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return req, nil
}

// Close closes the gRPC connection
func (m *GRPCModel) Close() error {
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}
