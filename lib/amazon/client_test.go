package amazon

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gojipedia/gojipedia/lib/config"
)

func testConfig(host string) config.AmazonConfig {
	return config.AmazonConfig{
		AccessKey:    "AKIAEXAMPLE",
		SecretKey:    "secret-key",
		AssociateTag: "gojipedia-20",
		Marketplace:  "www.amazon.com",
		Host:         host,
		Region:       "us-east-1",
	}
}

func TestNotConfigured(t *testing.T) {
	c := NewClient(config.AmazonConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := c.SearchItems(context.Background(), "godzilla", 5); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := c.GetItems(context.Background(), []string{"B000000001"}); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestBuildAffiliateURL(t *testing.T) {
	c := NewClient(testConfig("webservices.amazon.com"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	got := c.BuildAffiliateURL("B0C3H2K9LM")
	want := "https://www.amazon.com/dp/B0C3H2K9LM?tag=gojipedia-20"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSearchItems(t *testing.T) {
	var captured *http.Request
	var capturedBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		if err := json.NewDecoder(r.Body).Decode(&capturedBody); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		_, _ = w.Write([]byte(`{
			"SearchResult": {
				"Items": [{
					"ASIN": "B0C3H2K9LM",
					"DetailPageURL": "https://www.amazon.com/dp/B0C3H2K9LM",
					"ItemInfo": {
						"Title": {"DisplayValue": "S.H.MonsterArts Godzilla (2023)"},
						"ByLineInfo": {"Brand": {"DisplayValue": "TAMASHII NATIONS"}}
					},
					"Offers": {"Listings": [{
						"Price": {"DisplayAmount": "$94.99"},
						"DeliveryInfo": {"IsPrimeEligible": true}
					}]},
					"Images": {"Primary": {"Large": {"URL": "https://m.media-amazon.com/images/I/example.jpg"}}}
				}]
			}
		}`))
	}))
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	c := NewClient(testConfig(host), slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.baseURL = srv.URL

	products, err := c.SearchItems(context.Background(), "godzilla figure", 5)
	if err != nil {
		t.Fatalf("SearchItems: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	p := products[0]
	if p.ASIN != "B0C3H2K9LM" {
		t.Errorf("ASIN = %q", p.ASIN)
	}
	if p.Title != "S.H.MonsterArts Godzilla (2023)" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Price == nil || *p.Price != "$94.99" {
		t.Errorf("Price = %v", p.Price)
	}
	if !p.PrimeEligible {
		t.Error("expected prime eligible")
	}
	if p.Brand == nil || *p.Brand != "TAMASHII NATIONS" {
		t.Errorf("Brand = %v", p.Brand)
	}

	if captured.URL.Path != "/paapi5/searchitems" {
		t.Errorf("path = %q", captured.URL.Path)
	}
	if got := captured.Header.Get("X-Amz-Target"); got != "com.amazon.paapi5.v1.ProductAdvertisingAPIv1.SearchItems" {
		t.Errorf("X-Amz-Target = %q", got)
	}
	auth := captured.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "AWS4-HMAC-SHA256 Credential=AKIAEXAMPLE/") {
		t.Errorf("Authorization = %q", auth)
	}
	if !strings.Contains(auth, "SignedHeaders=content-encoding;content-type;host;x-amz-date;x-amz-target") {
		t.Errorf("Authorization missing signed headers: %q", auth)
	}
	if capturedBody["PartnerTag"] != "gojipedia-20" {
		t.Errorf("PartnerTag = %v", capturedBody["PartnerTag"])
	}
	if capturedBody["Marketplace"] != "www.amazon.com" {
		t.Errorf("Marketplace = %v", capturedBody["Marketplace"])
	}
}

func TestSignatureDeterministic(t *testing.T) {
	cfg := testConfig("webservices.amazon.com")
	fixed := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
	amzDate := fixed.Format("20060102T150405Z")
	dateStamp := fixed.Format("20060102")
	body := []byte(`{"Keywords":"godzilla"}`)
	target := "com.amazon.paapi5.v1.ProductAdvertisingAPIv1.SearchItems"

	a := buildAuthorization(cfg, "/paapi5/searchitems", target, amzDate, dateStamp, body)
	b := buildAuthorization(cfg, "/paapi5/searchitems", target, amzDate, dateStamp, body)
	if a != b {
		t.Fatalf("signature not deterministic:\n%s\n%s", a, b)
	}

	other := buildAuthorization(cfg, "/paapi5/searchitems", target, amzDate, dateStamp, []byte(`{"Keywords":"mothra"}`))
	if a == other {
		t.Fatal("different payloads produced identical signatures")
	}
}

func TestCallSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"Errors":[{"Code":"TooManyRequests"}]}`))
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	c := NewClient(testConfig(u.Host), slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.baseURL = srv.URL

	_, err := c.GetItems(context.Background(), []string{"B0C3H2K9LM"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error = %v", err)
	}
}
