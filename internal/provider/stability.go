package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const stabilityEndpoint = "https://api.stability.ai/v2beta/stable-image/generate/core"

// Stability wraps the Stability AI v2beta REST API.
type Stability struct {
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

func NewStability(apiKey string) *Stability {
	return &Stability{
		apiKey: apiKey,
		client: &http.Client{Timeout: 90 * time.Second},
		// Client-side pacing so a burst of requests does not burn quota.
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Available() bool { return s.apiKey != "" }

func (s *Stability) Generate(ctx context.Context, prompt, negative string, size int) (*Result, error) {
	if s.apiKey == "" {
		return nil, newErr(s.Name(), KindUnavailable, errors.New("STABILITY_API_KEY not configured"))
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, newErr(s.Name(), KindNetwork, err)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	fields := map[string]string{
		"prompt":          prompt,
		"negative_prompt": negative,
		"aspect_ratio":    "1:1",
		"output_format":   "png",
	}
	for k, v := range fields {
		if err := form.WriteField(k, v); err != nil {
			return nil, newErr(s.Name(), KindNetwork, err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, newErr(s.Name(), KindNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, stabilityEndpoint, &body)
	if err != nil {
		return nil, newErr(s.Name(), KindNetwork, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, newErr(s.Name(), KindNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("status %d: %s", resp.StatusCode, raw)
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, newErr(s.Name(), KindAuth, err)
		case http.StatusPaymentRequired, http.StatusTooManyRequests:
			return nil, newErr(s.Name(), KindQuota, err)
		default:
			return nil, newErr(s.Name(), KindNetwork, err)
		}
	}

	var out struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, newErr(s.Name(), KindNetwork, err)
	}
	if out.Image == "" {
		return nil, newErr(s.Name(), KindEmptyResult, errors.New("no image data returned"))
	}

	data, err := base64.StdEncoding.DecodeString(out.Image)
	if err != nil {
		return nil, newErr(s.Name(), KindEmptyResult, err)
	}

	return &Result{ImageData: data}, nil
}
