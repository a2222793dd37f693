package elasticsearch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

type Client struct {
	es     *elasticsearch.Client
	logger *zap.Logger
}

type Config struct {
	Addresses []string
	Username  string
	Password  string
	Indexs    map[string]map[string]interface{} // indexName -> mapping
}

// BulkOperation 批量操作的结构
type BulkOperation struct {
	Action   string                 `json:"action"`   // index, create, update, delete
	Index    string                 `json:"index"`    // 索引名
	ID       string                 `json:"id"`       // 文档ID
	Document map[string]interface{} `json:"document"` // 文档内容
}

// NewClient 创建客户端并确保 Indexs 中的索引存在，建索引失败只记日志
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	client := &Client{
		es:     es,
		logger: log,
	}

	for indexName, mapping := range cfg.Indexs {
		if err := client.CreateIndex(context.Background(), indexName, mapping); err != nil {
			log.Error("Failed to initialize ES index", zap.String("index", indexName), zap.Error(err))
		}
	}

	return client, nil
}

// BulkWrite 批量写入。update 以 doc_as_upsert 方式写入；HTTP 200 但有单条失败时也返回错误
func (c *Client) BulkWrite(ctx context.Context, operations []BulkOperation) error {
	if len(operations) == 0 {
		return nil
	}

	body, err := encodeBulk(operations)
	if err != nil {
		return err
	}

	res, err := esapi.BulkRequest{Body: bytes.NewReader(body)}.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("bulk operation failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk operation error: %s", res.String())
	}

	var resp bulkResponse
	if err := decode(res.Body, &resp); err == nil && resp.Errors {
		return fmt.Errorf("bulk operation partially failed: %s", resp.firstError())
	}

	c.logger.Debug("Bulk write operation completed", zap.Int("operations", len(operations)))
	return nil
}

// encodeBulk NDJSON：每个操作一行元数据，index/create/update 再跟一行文档
func encodeBulk(operations []BulkOperation) ([]byte, error) {
	var buf bytes.Buffer
	for _, op := range operations {
		meta := map[string]interface{}{
			op.Action: map[string]interface{}{"_index": op.Index, "_id": op.ID},
		}
		if err := writeLine(&buf, meta); err != nil {
			return nil, err
		}

		switch {
		case op.Document == nil || op.Action == "delete":
		case op.Action == "update":
			if err := writeLine(&buf, map[string]interface{}{"doc": op.Document, "doc_as_upsert": true}); err != nil {
				return nil, err
			}
		default:
			if err := writeLine(&buf, op.Document); err != nil {
				return nil, err
			}
		}
	}
	return buf.Bytes(), nil
}

func writeLine(buf *bytes.Buffer, v interface{}) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal bulk line: %w", err)
	}
	buf.Write(data)
	buf.WriteByte('\n')
	return nil
}

type bulkResponse struct {
	Errors bool                                `json:"errors"`
	Items  []map[string]bulkResponseItemResult `json:"items"`
}

type bulkResponseItemResult struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

func (b bulkResponse) firstError() string {
	for _, item := range b.Items {
		for action, r := range item {
			if r.Error != nil {
				return fmt.Sprintf("%s %s: %s %s", action, r.ID, r.Error.Type, r.Error.Reason)
			}
		}
	}
	return "unknown"
}

// CreateIndex 创建索引，已存在不算错误
func (c *Client) CreateIndex(ctx context.Context, indexName string, mapping map[string]interface{}) error {
	body, err := sonic.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	res, err := esapi.IndicesCreateRequest{Index: indexName, Body: bytes.NewReader(body)}.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmt.Errorf("failed to create index: %s", res.String())
	}

	c.logger.Info("Index created or already exists", zap.String("index", indexName))
	return nil
}

// Search 查询索引，query 为完整的 DSL body
func (c *Client) Search(ctx context.Context, indexName string, query map[string]interface{}) (*SearchResult, error) {
	body, err := sonic.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := esapi.SearchRequest{Index: []string{indexName}, Body: bytes.NewReader(body)}.Do(ctx, c.es)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var result SearchResult
	if err := decode(res.Body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode search result: %w", err)
	}
	return &result, nil
}

func decode(r io.Reader, v interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(data, v)
}

type SearchResult struct {
	Took     int  `json:"took"`
	TimedOut bool `json:"timed_out"`
	Hits     struct {
		Total struct {
			Value    int    `json:"value"`
			Relation string `json:"relation"`
		} `json:"total"`
		MaxScore float64 `json:"max_score"`
		Hits     []Hit   `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]interface{} `json:"aggregations,omitempty"`
}

type Hit struct {
	Index  string                 `json:"_index"`
	ID     string                 `json:"_id"`
	Score  float64                `json:"_score"`
	Source map[string]interface{} `json:"_source"`
}
