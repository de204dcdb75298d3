package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// =============================================================================
// Client — 外部经营建议服务客户端
// 简单请求/响应契约：上报经营摘要，取回一段建议文本；失败由调用方记日志吞掉
// =============================================================================

// Client 建议服务客户端
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient 创建客户端实例
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AdviceRequest 经营摘要
type AdviceRequest struct {
	Revenue         int64 `json:"revenue"`
	Outstanding     int64 `json:"outstanding"`
	TotalExpenses   int64 `json:"total_expenses"`
	ActiveOrders    int   `json:"active_orders"`
	DeliveredOrders int   `json:"delivered_orders"`
}

// GetAdvice 请求建议文本
func (c *Client) GetAdvice(ctx context.Context, req AdviceRequest) (string, error) {
	bodyBytes, _ := json.Marshal(req)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/advice", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("创建建议请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("请求建议服务失败: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Code   int    `json:"code"`
		Msg    string `json:"msg"`
		Advice string `json:"advice"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("解析建议响应失败: %w", err)
	}
	if result.Code != 0 {
		return "", fmt.Errorf("建议服务错误[%d]: %s", result.Code, result.Msg)
	}
	return result.Advice, nil
}
