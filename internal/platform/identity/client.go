package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Metadata is the application data attached to an identity-provider user.
type Metadata struct {
	UserID    string `json:"userId"`
	CompanyID string `json:"companyId"`
	Role      string `json:"role"`
}

type metadataRequest struct {
	PublicMetadata Metadata `json:"public_metadata"`
}

type errorResponse struct {
	Errors []struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"errors"`
}

// Client talks to the identity provider's backend API.
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{httpClient: client, logger: logger}
}

// UpdateMetadata merges meta into the public metadata of externalUserID.
func (c *Client) UpdateMetadata(ctx context.Context, externalUserID string, meta Metadata) error {
	var apiErr errorResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("userID", externalUserID).
		SetBody(metadataRequest{PublicMetadata: meta}).
		SetError(&apiErr).
		Patch("/v1/users/{userID}/metadata")
	if err != nil {
		return fmt.Errorf("identity metadata update: %w", err)
	}
	if resp.IsError() {
		msg := resp.Status()
		if len(apiErr.Errors) > 0 {
			msg = apiErr.Errors[0].Message
		}
		c.logger.Warn("identity provider rejected metadata update",
			zap.String("external_user_id", externalUserID),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("message", msg),
		)
		return fmt.Errorf("identity metadata update: %s (status %d)", msg, resp.StatusCode())
	}
	return nil
}
