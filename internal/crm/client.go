package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"eventcrm/internal/models"
)

// Client — HTTP-клиент основного CRM API. Только он ходит в сеть;
// вся доска работает поверх локального кэша (internal/store).
type Client struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiToken: apiToken,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// RejectionError — сервер принял запрос, но отказал по бизнес-правилам
// (недопустимый переход, нет прав). Message показывается пользователю как есть.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (p errorPayload) text() string {
	if p.Error != "" {
		return p.Error
	}
	return p.Message
}

func (c *Client) ListLeads(ctx context.Context) ([]*models.Lead, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/leads", nil)
	if err != nil {
		return nil, err
	}
	c.addAuthHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("list leads", resp.StatusCode, body)
	}

	var result struct {
		Leads []*models.Lead `json:"leads"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("list leads: decode: %w", err)
	}
	return result.Leads, nil
}

func (c *Client) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/leads/"+id, nil)
	if err != nil {
		return nil, err
	}
	c.addAuthHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("get lead", resp.StatusCode, body)
	}

	lead := &models.Lead{}
	if err := json.Unmarshal(body, lead); err != nil {
		return nil, fmt.Errorf("get lead: decode: %w", err)
	}
	return lead, nil
}

// UpdateLeadStatus — частичное обновление лида (PATCH). Успех возвращает
// полное представление лида с сервера; бизнес-отказ — *RejectionError.
func (c *Client) UpdateLeadStatus(ctx context.Context, id, status string) (*models.Lead, error) {
	payload, _ := json.Marshal(map[string]string{"status": status})

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/leads/"+id, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.addAuthHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("update lead status: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apiError("update lead status", resp.StatusCode, body)
	}

	lead := &models.Lead{}
	if err := json.Unmarshal(body, lead); err != nil {
		return nil, fmt.Errorf("update lead status: decode: %w", err)
	}
	return lead, nil
}

func apiError(op string, status int, body []byte) error {
	var p errorPayload
	if err := json.Unmarshal(body, &p); err == nil && p.text() != "" {
		return &RejectionError{Message: p.text()}
	}
	return fmt.Errorf("%s: unexpected status %d", op, status)
}

func (c *Client) addAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
