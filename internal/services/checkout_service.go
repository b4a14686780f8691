package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// CheckoutClient talks to the hosted-checkout API of the payment provider.
// Completed payments come back through the webhook handler.
type CheckoutClient struct {
	SecretKey string
	BaseURL   string
	Client    *http.Client
}

func NewCheckoutClient() (*CheckoutClient, error) {
	secretKey := os.Getenv("PROVIDER_SECRET_KEY")
	if secretKey == "" {
		return nil, fmt.Errorf("PROVIDER_SECRET_KEY environment variable is not set")
	}
	baseURL := os.Getenv("PROVIDER_BASE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("PROVIDER_BASE_URL environment variable is not set")
	}
	return &CheckoutClient{
		SecretKey: secretKey,
		BaseURL:   baseURL,
		Client:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type CheckoutResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func (c *CheckoutClient) doRequest(method, endpoint string, body interface{}) (*CheckoutResponse, error) {
	endpointURL := fmt.Sprintf("%s%s", c.BaseURL, endpoint)
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, endpointURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Authorization", "Bearer "+c.SecretKey)
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(respBody))
	}

	var res CheckoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if !res.Status {
		return nil, fmt.Errorf("API error: %s", res.Message)
	}

	return &res, nil
}

// InitializeCheckout creates a hosted-checkout session; amount is in cents.
func (c *CheckoutClient) InitializeCheckout(form map[string]interface{}) (*CheckoutResponse, error) {
	requiredFields := []string{"amount", "email"}
	for _, field := range requiredFields {
		if _, ok := form[field]; !ok {
			return nil, fmt.Errorf("missing required field: %s", field)
		}
	}
	return c.doRequest("POST", "/checkout/initialize", form)
}

func (c *CheckoutClient) VerifyCheckout(ref string) (*CheckoutResponse, error) {
	if ref == "" {
		return nil, fmt.Errorf("reference cannot be empty")
	}
	escapedRef := url.PathEscape(ref)
	return c.doRequest("GET", fmt.Sprintf("/checkout/verify/%s", escapedRef), nil)
}
