package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	replicateEndpoint = "https://api.replicate.com/v1/predictions"

	// SDXL image-to-image, pinned by version hash.
	sdxlVersion = "39ed52f2a78e934b3ba6e2a89f5b1c712de7dfea535525255b1aa35c5565e08b"

	// rembg background removal, pinned by version hash.
	rembgVersion = "fb8af171cfa1616ddcf1242c093f9c46bcada5ad4cf6f2fbe8b81b330ec5c003"
)

// Replicate is the image-conditioned adapter used for the uploaded-photo
// path. Predictions run in sync mode via the Prefer header.
type Replicate struct {
	token    string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

func NewReplicate(token string) *Replicate {
	return &Replicate{
		token:    token,
		endpoint: replicateEndpoint,
		client:   &http.Client{Timeout: 120 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

func (r *Replicate) Name() string { return "replicate" }

func (r *Replicate) Available() bool { return r.token != "" }

type replicateInput struct {
	Image             string  `json:"image"`
	Prompt            string  `json:"prompt"`
	NegativePrompt    string  `json:"negative_prompt"`
	NumOutputs        int     `json:"num_outputs"`
	GuidanceScale     float64 `json:"guidance_scale"`
	NumInferenceSteps int     `json:"num_inference_steps"`
}

type replicatePrediction struct {
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
}

func (r *Replicate) TransformPhoto(ctx context.Context, imageURL, prompt, negative string) (*Result, error) {
	url, err := r.predict(ctx, sdxlVersion, replicateInput{
		Image:             imageURL,
		Prompt:            prompt,
		NegativePrompt:    negative,
		NumOutputs:        1,
		GuidanceScale:     7.5,
		NumInferenceSteps: 25,
	})
	if err != nil {
		return nil, err
	}
	return &Result{ImageURL: url}, nil
}

// RemoveBackground strips the background from a hosted image and returns
// the URL of the cut-out.
func (r *Replicate) RemoveBackground(ctx context.Context, imageURL string) (string, error) {
	return r.predict(ctx, rembgVersion, struct {
		Image string `json:"image"`
	}{Image: imageURL})
}

// predict runs one synchronous prediction and returns the first output URL.
func (r *Replicate) predict(ctx context.Context, version string, input any) (string, error) {
	if r.token == "" {
		return "", newErr(r.Name(), KindUnavailable, errors.New("REPLICATE_API_TOKEN not configured"))
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return "", newErr(r.Name(), KindNetwork, err)
	}

	payload := struct {
		Version string `json:"version"`
		Input   any    `json:"input"`
	}{Version: version, Input: input}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", newErr(r.Name(), KindNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", newErr(r.Name(), KindNetwork, err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "wait")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", newErr(r.Name(), KindNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("status %d: %s", resp.StatusCode, body)
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "", newErr(r.Name(), KindAuth, err)
		case http.StatusPaymentRequired, http.StatusTooManyRequests:
			return "", newErr(r.Name(), KindQuota, err)
		default:
			return "", newErr(r.Name(), KindNetwork, err)
		}
	}

	var pred replicatePrediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return "", newErr(r.Name(), KindNetwork, err)
	}
	if pred.Status != "succeeded" {
		return "", newErr(r.Name(), KindEmptyResult, fmt.Errorf("prediction %s: %s", pred.Status, pred.Error))
	}

	url := firstOutputURL(pred.Output)
	if url == "" {
		return "", newErr(r.Name(), KindEmptyResult, errors.New("no output in prediction"))
	}
	return url, nil
}

// firstOutputURL handles both output shapes replicate models use: a plain
// string or an array of strings.
func firstOutputURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) > 0 {
			return list[0]
		}
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	return ""
}
