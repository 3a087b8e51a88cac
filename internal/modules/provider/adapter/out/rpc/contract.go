package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey            = "tutor"
	serviceName             = "tutor.provider.v1.TutorProvider"
	jsonCodecName           = "json"
	methodGetMetadata       = "/" + serviceName + "/GetMetadata"
	methodScoreRelevance    = "/" + serviceName + "/ScoreRelevance"
	methodGenerateQuestions = "/" + serviceName + "/GenerateQuestions"
	methodGradeAnswers      = "/" + serviceName + "/GradeAnswers"
	methodExplain           = "/" + serviceName + "/Explain"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "TUTOR_PROVIDER",
	MagicCookieValue: "tutor",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Roles   []string `json:"roles"`
}

type ContentItem struct {
	Origin string `json:"origin"`
	Text   string `json:"text"`
}

type ScoreRequest struct {
	Topic      string        `json:"topic"`
	Objectives []string      `json:"objectives"`
	Items      []ContentItem `json:"items"`
}

type ScoreResponse struct {
	Scores []float64 `json:"scores"`
}

type Question struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	ObjectiveRef string `json:"objective_ref"`
	Difficulty   string `json:"difficulty"`
}

type GenerateRequest struct {
	Topic        string   `json:"topic"`
	Objectives   []string `json:"objectives"`
	Difficulty   string   `json:"difficulty"`
	ContextText  []string `json:"context_text"`
	MinQuestions int32    `json:"min_questions"`
	MaxQuestions int32    `json:"max_questions"`
}

type GenerateResponse struct {
	Questions []Question `json:"questions"`
}

type Answer struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
}

type GradeRequest struct {
	Topic       string     `json:"topic"`
	Objectives  []string   `json:"objectives"`
	ContextText []string   `json:"context_text"`
	Questions   []Question `json:"questions"`
	Answers     []Answer   `json:"answers"`
}

type GradeResponse struct {
	PerQuestion    map[string]float64 `json:"per_question"`
	OverallScore   float64            `json:"overall_score"`
	WeakObjectives []string           `json:"weak_objectives"`
}

type ExplainRequest struct {
	Topic          string   `json:"topic"`
	ContextText    []string `json:"context_text"`
	WeakObjectives []string `json:"weak_objectives"`
	Attempt        int32    `json:"attempt"`
}

type ExplainResponse struct {
	Explanations map[string]string `json:"explanations"`
}

type TutorProviderServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	ScoreRelevance(ctx context.Context, in *ScoreRequest) (*ScoreResponse, error)
	GenerateQuestions(ctx context.Context, in *GenerateRequest) (*GenerateResponse, error)
	GradeAnswers(ctx context.Context, in *GradeRequest) (*GradeResponse, error)
	Explain(ctx context.Context, in *ExplainRequest) (*ExplainResponse, error)
}

type TutorProviderClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	ScoreRelevance(ctx context.Context, in *ScoreRequest) (*ScoreResponse, error)
	GenerateQuestions(ctx context.Context, in *GenerateRequest) (*GenerateResponse, error)
	GradeAnswers(ctx context.Context, in *GradeRequest) (*GradeResponse, error)
	Explain(ctx context.Context, in *ExplainRequest) (*ExplainResponse, error)
}

type tutorProviderClient struct {
	conn *grpc.ClientConn
}

func NewTutorProviderClient(conn *grpc.ClientConn) TutorProviderClient {
	return &tutorProviderClient{conn: conn}
}

func (c *tutorProviderClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tutorProviderClient) ScoreRelevance(ctx context.Context, in *ScoreRequest) (*ScoreResponse, error) {
	out := &ScoreResponse{}
	if err := c.conn.Invoke(ctx, methodScoreRelevance, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tutorProviderClient) GenerateQuestions(ctx context.Context, in *GenerateRequest) (*GenerateResponse, error) {
	out := &GenerateResponse{}
	if err := c.conn.Invoke(ctx, methodGenerateQuestions, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tutorProviderClient) GradeAnswers(ctx context.Context, in *GradeRequest) (*GradeResponse, error) {
	out := &GradeResponse{}
	if err := c.conn.Invoke(ctx, methodGradeAnswers, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tutorProviderClient) Explain(ctx context.Context, in *ExplainRequest) (*ExplainResponse, error) {
	out := &ExplainResponse{}
	if err := c.conn.Invoke(ctx, methodExplain, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterTutorProviderServer(server grpc.ServiceRegistrar, impl TutorProviderServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*TutorProviderServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetMetadata(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetMetadata}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetMetadata(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "ScoreRelevance",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &ScoreRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.ScoreRelevance(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodScoreRelevance}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*ScoreRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.ScoreRelevance(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "GenerateQuestions",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &GenerateRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GenerateQuestions(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGenerateQuestions}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*GenerateRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GenerateQuestions(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "GradeAnswers",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &GradeRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GradeAnswers(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGradeAnswers}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*GradeRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GradeAnswers(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "Explain",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &ExplainRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Explain(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodExplain}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*ExplainRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Explain(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/provider-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl TutorProviderServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterTutorProviderServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewTutorProviderClient(conn), nil
}

func PluginMap(impl TutorProviderServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
