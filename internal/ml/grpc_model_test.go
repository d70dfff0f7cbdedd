package ml

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type structHandler func(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

// fakeModelServer answers the model service methods with canned handlers
type fakeModelServer struct {
	predict      structHandler
	predictProba structHandler
}

func unaryHandler(pick func(*fakeModelServer) structHandler) func(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
		in := &structpb.Struct{}
		if err := dec(in); err != nil {
			return nil, err
		}
		h := pick(srv.(*fakeModelServer))
		if h == nil {
			return nil, status.Error(codes.Unimplemented, "method not implemented")
		}
		return h(ctx, in)
	}
}

var fakeModelServiceDesc = grpc.ServiceDesc{
	ServiceName: ModelServiceName,
	HandlerType: (*interface{})(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Predict", Handler: unaryHandler(func(s *fakeModelServer) structHandler { return s.predict })},
		{MethodName: "PredictProba", Handler: unaryHandler(func(s *fakeModelServer) structHandler { return s.predictProba })},
	},
}

func startFakeModelServer(t *testing.T, fake *fakeModelServer, spec FeatureSpec) *GRPCModel {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	server := grpc.NewServer()
	server.RegisterService(&fakeModelServiceDesc, fake)
	go func() {
		_ = server.Serve(lis)
	}()
	t.Cleanup(server.Stop)

	model, err := NewGRPCModel(GRPCModelConfig{Address: "passthrough:///bufnet", Timeout: 2 * time.Second}, spec, quietLogger(),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = model.Close() })
	return model
}

func TestGRPCModelPredict(t *testing.T) {
	spec := FeatureSpec{Version: "v5", FeatureOrder: []string{"xG_per_90", "start_ratio"}}

	model := startFakeModelServer(t, &fakeModelServer{
		predict: func(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			feats := in.GetFields()["features"].GetListValue().GetValues()
			names := in.GetFields()["feature_names"].GetListValue().GetValues()
			if len(feats) != 2 || len(names) != 2 || names[0].GetStringValue() != "xG_per_90" {
				return nil, status.Error(codes.InvalidArgument, "bad row")
			}
			if in.GetFields()["model_version"].GetStringValue() != "v5" {
				return nil, status.Error(codes.InvalidArgument, "bad version")
			}
			return structpb.NewStruct(map[string]interface{}{
				"prediction": feats[0].GetNumberValue()*20 + feats[1].GetNumberValue(),
			})
		},
	}, spec)

	value, err := model.Predict(context.Background(), []float64{0.5, 0.8})
	require.NoError(t, err)
	assert.InDelta(t, 10.8, value, 1e-9)
}

func TestGRPCModelPredictProba(t *testing.T) {
	model := startFakeModelServer(t, &fakeModelServer{
		predictProba: func(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return structpb.NewStruct(map[string]interface{}{
				"probabilities": []interface{}{0.6, 0.25, 0.15},
			})
		},
	}, FeatureSpec{FeatureOrder: []string{"x"}})

	proba, err := model.PredictProba(context.Background(), []float64{1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.6, 0.25, 0.15}, proba)
}

func TestGRPCModelErrors(t *testing.T) {
	tests := []struct {
		name    string
		fake    *fakeModelServer
		wantErr error
	}{
		{
			name:    "unimplemented",
			fake:    &fakeModelServer{},
			wantErr: ErrCapabilityMissing,
		},
		{
			name: "internal error",
			fake: &fakeModelServer{predict: func(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return nil, status.Error(codes.Internal, "model crashed")
			}},
			wantErr: ErrInvalidResponse,
		},
		{
			name: "unavailable",
			fake: &fakeModelServer{predict: func(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return nil, status.Error(codes.Unavailable, "warming up")
			}},
			wantErr: ErrConnectionFailed,
		},
		{
			name: "missing prediction",
			fake: &fakeModelServer{predict: func(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return structpb.NewStruct(map[string]interface{}{"value": 1.0})
			}},
			wantErr: ErrInvalidResponse,
		},
		{
			name: "prediction not a number",
			fake: &fakeModelServer{predict: func(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return structpb.NewStruct(map[string]interface{}{"prediction": "high"})
			}},
			wantErr: ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := startFakeModelServer(t, tt.fake, FeatureSpec{FeatureOrder: []string{"x"}})
			_, err := model.Predict(context.Background(), []float64{1})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
