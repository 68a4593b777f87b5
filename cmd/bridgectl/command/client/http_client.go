package client

// http_client.go = calls the bridge's authenticated HTTP API.

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"coquiz/internal/microservices/http-api/dto"
	"coquiz/internal/shell"
)

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func NewHTTPClient(apiURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		token: token,
	}
}

func (c *HTTPClient) Status() (*dto.StatusResponse, error) {
	var result dto.StatusResponse
	if err := c.get("/api/status", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Content() (*shell.Snapshot, error) {
	var result shell.Snapshot
	if err := c.get("/api/content", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Receipts(memberID string, limit int) (*dto.ReceiptListResponse, error) {
	path := "/api/members/" + url.PathEscape(memberID) + "/receipts?limit=" + strconv.Itoa(limit)
	var result dto.ReceiptListResponse
	if err := c.get(path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) get(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	response, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		json.NewDecoder(response.Body).Decode(&body)
		return fmt.Errorf("request failed with status %s: %s", response.Status, body.Error)
	}
	return json.NewDecoder(response.Body).Decode(out)
}
