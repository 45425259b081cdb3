package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-invoicing/app/factory"
)

type FattureInCloudConfig struct {
	APIUID      string
	APIKey      string
	BaseURL     string
	HTTPTimeout time.Duration
}

type FattureInCloudClient struct {
	cfg    FattureInCloudConfig
	client *http.Client
	logger logrus.FieldLogger
}

func NewFattureInCloudClient(cfg FattureInCloudConfig) *FattureInCloudClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.fattureincloud.it/v1"
	}

	return &FattureInCloudClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: factory.NewModuleLogger("fattureincloud-client"),
	}
}

func (c *FattureInCloudClient) CreateDocument(ctx context.Context, docType string, req *DocumentRequest) (*CreateDocumentResult, error) {
	var result CreateDocumentResult
	if err := c.call(ctx, "/"+docType+"/nuovo", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *FattureInCloudClient) GetDocumentDetails(ctx context.Context, docType string, req *DocumentDetailsRequest) (*DocumentDetailsResult, error) {
	var result DocumentDetailsResult
	if err := c.call(ctx, "/"+docType+"/dettagli", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *FattureInCloudClient) ListInfo(ctx context.Context, fields []string) (*InfoListResult, error) {
	var result InfoListResult
	payload := struct {
		Fields []string `json:"campi"`
	}{Fields: fields}
	if err := c.call(ctx, "/richiesta/info", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// call posts payload to path with the account credentials merged into the
// JSON body, which is how the provider authenticates requests.
func (c *FattureInCloudClient) call(ctx context.Context, path string, payload interface{}, out interface{}) error {
	if strings.TrimSpace(c.cfg.APIUID) == "" || strings.TrimSpace(c.cfg.APIKey) == "" {
		return errors.New("fattureincloud credentials are not configured")
	}

	body, err := authenticatedBody(payload, c.cfg.APIUID, c.cfg.APIKey)
	if err != nil {
		return err
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("path", path).Warn("fattureincloud request failed")
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"path":    path,
		"status":  resp.StatusCode,
		"latency": time.Since(start).String(),
	}).Info("fattureincloud request")

	if resp.StatusCode >= 400 {
		return fmt.Errorf("fattureincloud request failed: path=%s status=%d body=%s", path, resp.StatusCode, string(respBody))
	}

	return json.Unmarshal(respBody, out)
}

func authenticatedBody(payload interface{}, apiUID, apiKey string) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
	}

	uid, err := json.Marshal(apiUID)
	if err != nil {
		return nil, err
	}
	key, err := json.Marshal(apiKey)
	if err != nil {
		return nil, err
	}
	fields["api_uid"] = uid
	fields["api_key"] = key

	return json.Marshal(fields)
}
