package feast

import (
	"context"
	"fmt"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"
)

// Client 是在线特征服务的领域接口。
// 冷启动先验从这里来：新用户没有交互日志时，用离线算好的
// 人群级特征给空模型一个合理的起点。
type Client interface {
	// GetOnlineFeatures 按实体行批量获取在线特征
	GetOnlineFeatures(ctx context.Context, req *OnlineFeaturesRequest) (*OnlineFeaturesResponse, error)
	Close() error
}

// OnlineFeaturesRequest 在线特征请求。
type OnlineFeaturesRequest struct {
	// Features 特征引用列表（如 "user_priors:top_category"）
	Features []string
	// EntityRows 实体行（如 {"user_id": "u1"}）
	EntityRows []map[string]any
	// Project 项目名称（空则用客户端默认）
	Project string
}

// OnlineFeaturesResponse 在线特征响应，一行对应一个实体行。
type OnlineFeaturesResponse struct {
	Rows []map[string]any
}

// GrpcClient 是基于官方 Feast Go SDK 的 Client 实现。
type GrpcClient struct {
	client  *feastsdk.GrpcClient
	project string
}

func NewGrpcClient(host string, port int, project string) (*GrpcClient, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("connect feature server: %w", err)
	}
	return &GrpcClient{client: client, project: project}, nil
}

func (c *GrpcClient) GetOnlineFeatures(ctx context.Context, req *OnlineFeaturesRequest) (*OnlineFeaturesResponse, error) {
	if len(req.Features) == 0 || len(req.EntityRows) == 0 {
		return nil, fmt.Errorf("features and entity rows are required")
	}
	project := req.Project
	if project == "" {
		project = c.project
	}

	entities := make([]feastsdk.Row, len(req.EntityRows))
	for i, row := range req.EntityRows {
		entity := make(feastsdk.Row, len(row))
		for k, v := range row {
			switch val := v.(type) {
			case string:
				entity[k] = feastsdk.StrVal(val)
			case int:
				entity[k] = feastsdk.Int64Val(int64(val))
			case int64:
				entity[k] = feastsdk.Int64Val(val)
			case float64:
				entity[k] = feastsdk.DoubleVal(val)
			default:
				entity[k] = feastsdk.StrVal(fmt.Sprintf("%v", val))
			}
		}
		entities[i] = entity
	}

	resp, err := c.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: req.Features,
		Entities: entities,
		Project:  project,
	})
	if err != nil {
		return nil, fmt.Errorf("get online features: %w", err)
	}

	rows := resp.Rows()
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		values := make(map[string]any, len(req.Features))
		for _, name := range req.Features {
			if val, ok := row[name]; ok {
				values[name] = decodeValue(val)
			}
		}
		out[i] = values
	}
	return &OnlineFeaturesResponse{Rows: out}, nil
}

// decodeValue 把 SDK 的 protobuf Value 解包为原生类型。
func decodeValue(v *feasttypes.Value) any {
	if v == nil {
		return nil
	}
	switch val := v.GetVal().(type) {
	case *feasttypes.Value_StringVal:
		return val.StringVal
	case *feasttypes.Value_Int64Val:
		return float64(val.Int64Val)
	case *feasttypes.Value_Int32Val:
		return float64(val.Int32Val)
	case *feasttypes.Value_DoubleVal:
		return val.DoubleVal
	case *feasttypes.Value_FloatVal:
		return float64(val.FloatVal)
	case *feasttypes.Value_BoolVal:
		return val.BoolVal
	case *feasttypes.Value_BytesVal:
		return string(val.BytesVal)
	default:
		return nil
	}
}

func (c *GrpcClient) Close() error {
	c.client = nil
	return nil
}

var _ Client = (*GrpcClient)(nil)
