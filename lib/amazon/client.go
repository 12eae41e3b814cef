// Package amazon is a minimal Product Advertising API 5.0 client: SigV4
// request signing, SearchItems, and GetItems. Never scrape product pages;
// this API is the only sanctioned source of catalog data.
package amazon

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/gojipedia/gojipedia/lib/config"
)

// ErrNotConfigured is returned when PA-API credentials are missing; callers
// are expected to degrade rather than fail.
var ErrNotConfigured = errors.New("amazon: PA-API credentials not configured")

const service = "ProductAdvertisingAPI"

// Product is the subset of a PA-API item the catalog stores.
type Product struct {
	ASIN          string
	Title         string
	ImageURL      *string
	Price         *string
	PrimeEligible bool
	Brand         *string
	DetailPageURL string
}

type Client struct {
	cfg        config.AmazonConfig
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

func NewClient(cfg config.AmazonConfig, logger *slog.Logger) *Client {
	return &Client{
		cfg:        cfg,
		baseURL:    "https://" + cfg.Host,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		now:        time.Now,
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.cfg.AccessKey != "" && c.cfg.SecretKey != "" && c.cfg.AssociateTag != ""
}

// BuildAffiliateURL returns the product detail URL carrying the associate
// tag.
func (c *Client) BuildAffiliateURL(asin string) string {
	tag := c.cfg.AssociateTag
	if tag == "" {
		tag = "gojipedia-20"
	}
	return fmt.Sprintf("https://%s/dp/%s?tag=%s", c.cfg.Marketplace, asin, tag)
}

// SearchItems searches the catalog by keywords.
func (c *Client) SearchItems(ctx context.Context, keywords string, itemCount int) ([]Product, error) {
	if itemCount <= 0 {
		itemCount = 5
	}
	payload := map[string]interface{}{
		"Keywords":    keywords,
		"SearchIndex": "All",
		"ItemCount":   itemCount,
		"Resources": []string{
			"ItemInfo.Title", "ItemInfo.ByLineInfo",
			"Offers.Listings.Price", "Offers.Listings.DeliveryInfo.IsPrimeEligible",
			"Images.Primary.Large",
		},
	}

	var result searchItemsResponse
	if err := c.call(ctx, "SearchItems", payload, &result); err != nil {
		return nil, err
	}
	return parseItems(result.SearchResult.Items), nil
}

// GetItems fetches products by ASIN.
func (c *Client) GetItems(ctx context.Context, asins []string) ([]Product, error) {
	payload := map[string]interface{}{
		"ItemIds": asins,
		"Resources": []string{
			"ItemInfo.Title", "ItemInfo.ByLineInfo",
			"Offers.Listings.Price", "Offers.Listings.DeliveryInfo.IsPrimeEligible",
			"Images.Primary.Large",
		},
	}

	var result getItemsResponse
	if err := c.call(ctx, "GetItems", payload, &result); err != nil {
		return nil, err
	}
	return parseItems(result.ItemsResult.Items), nil
}

func (c *Client) call(ctx context.Context, operation string, payload map[string]interface{}, out interface{}) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	payload["PartnerTag"] = c.cfg.AssociateTag
	payload["PartnerType"] = "Associates"
	payload["Marketplace"] = c.cfg.Marketplace

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	canonicalURI := "/paapi5/" + strings.ToLower(operation)
	target := "com.amazon.paapi5.v1.ProductAdvertisingAPIv1." + operation

	now := c.now().UTC()
	amzDate := now.Format("20060102T150405Z")
	dateStamp := now.Format("20060102")

	authorization := buildAuthorization(c.cfg, canonicalURI, target, amzDate, dateStamp, body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+canonicalURI, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Content-Encoding", "amz-1.0")
	req.Header.Set("X-Amz-Date", amzDate)
	req.Header.Set("X-Amz-Target", target)
	req.Header.Set("Authorization", authorization)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("PA-API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(text)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// buildAuthorization assembles the AWS SigV4 Authorization header for a
// PA-API POST request.
func buildAuthorization(cfg config.AmazonConfig, canonicalURI, target, amzDate, dateStamp string, body []byte) string {
	canonicalHeaders := strings.Join([]string{
		"content-encoding:amz-1.0",
		"content-type:application/json; charset=utf-8",
		"host:" + cfg.Host,
		"x-amz-date:" + amzDate,
		"x-amz-target:" + target,
	}, "\n") + "\n"
	signedHeaders := "content-encoding;content-type;host;x-amz-date;x-amz-target"

	payloadHash := sha256.Sum256(body)
	canonicalRequest := strings.Join([]string{
		"POST",
		canonicalURI,
		"", // no query string
		canonicalHeaders,
		signedHeaders,
		hex.EncodeToString(payloadHash[:]),
	}, "\n")

	const algorithm = "AWS4-HMAC-SHA256"
	credentialScope := dateStamp + "/" + cfg.Region + "/" + service + "/aws4_request"
	requestHash := sha256.Sum256([]byte(canonicalRequest))
	stringToSign := strings.Join([]string{
		algorithm,
		amzDate,
		credentialScope,
		hex.EncodeToString(requestHash[:]),
	}, "\n")

	signingKey := signatureKey(cfg.SecretKey, dateStamp, cfg.Region)
	signature := hex.EncodeToString(hmacSHA256(signingKey, stringToSign))

	return fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		algorithm, cfg.AccessKey, credentialScope, signedHeaders, signature)
}

func hmacSHA256(key []byte, msg string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msg))
	return mac.Sum(nil)
}

// signatureKey derives the SigV4 signing key: date, region, service, then
// the terminal "aws4_request".
func signatureKey(secret, dateStamp, region string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), dateStamp)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, service)
	return hmacSHA256(kService, "aws4_request")
}
