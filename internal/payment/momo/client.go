package momo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrProvider возвращается при любой ошибке на стороне провайдера
// (транспорт или не-2xx ответ). Автоматических ретраев нет — решение об
// повторной оплате остаётся за покупателем.
var ErrProvider = errors.New("payment provider error")

// CollectRequest — запрос на списание с мобильного кошелька покупателя.
type CollectRequest struct {
	Amount            float64 `json:"amount"`
	PhoneNumber       string  `json:"phone_number"`
	ExternalReference string  `json:"external_reference"`
	Currency          string  `json:"currency"`
}

// CollectResponse — ответ провайдера на инициацию платежа.
type CollectResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// Client — HTTP-клиент платёжного провайдера мобильных денег.
type Client struct {
	baseURL  *url.URL
	apiKey   string
	currency string
	http     *http.Client
}

// NewClient создаёт клиент провайдера. Невалидный базовый URL — ошибка конфигурации,
// падаем сразу.
func NewClient(baseURL, apiKey, currency string, timeout time.Duration) *Client {
	u, err := url.Parse(baseURL)
	if err != nil {
		panic(fmt.Sprintf("invalid payment provider base url %q: %v", baseURL, err))
	}
	return &Client{
		baseURL:  u,
		apiKey:   apiKey,
		currency: currency,
		http:     &http.Client{Timeout: timeout},
	}
}

// Collect инициирует списание: один исходящий POST /collect.
// Вызывается строго после создания заказа, вне транзакции оформления.
func (c *Client) Collect(ctx context.Context, amount float64, phoneNumber, externalReference string) (*CollectResponse, error) {
	reqBody := CollectRequest{
		Amount:            amount,
		PhoneNumber:       phoneNumber,
		ExternalReference: externalReference,
		Currency:          c.currency,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal collect request: %w", err)
	}

	u := c.baseURL.ResolveReference(&url.URL{Path: "/collect"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build collect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Token "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, payload)
	}

	var collectResp CollectResponse
	if err := json.NewDecoder(resp.Body).Decode(&collectResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrProvider, err)
	}
	return &collectResp, nil
}
