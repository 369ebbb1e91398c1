package adapters

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"video-generation-orchestrator/application/ports/outbound"
	"video-generation-orchestrator/config"
)

type imageApiRequest struct {
	Model           string   `json:"model"`
	Prompt          string   `json:"prompt"`
	ReferenceImages []string `json:"reference_images,omitempty"`
	AspectRatio     string   `json:"aspect_ratio"`
	Number          int      `json:"n"`
	ResponseFormat  string   `json:"response_format"`
}

type imageApiResponse struct {
	Data []struct {
		B64Json string `json:"b64_json"`
	} `json:"data"`
}

type imageSynthesizer struct {
	ContentFetcher
	logger outbound.LoggerPort
	cfg    *config.ImageModelConfig
}

// NewImageSynthesizer calls the image model HTTP API. Reference images ride
// along base64 encoded; likeness compositing is the model's responsibility.
func NewImageSynthesizer(contentFetcher ContentFetcher, cfg *config.ImageModelConfig,
	logger outbound.LoggerPort) outbound.ImageSynthesizerPort {
	return &imageSynthesizer{
		ContentFetcher: contentFetcher,
		logger:         logger,
		cfg:            cfg,
	}
}

func (i *imageSynthesizer) Synthesize(ctx context.Context, params outbound.SynthesizeImageParams) ([]byte, error) {
	req, err := i.getRequest(ctx, params)
	if err != nil {
		i.logger.Error(err, "Failed to create the image synthesis request")
		return nil, err
	}

	rawRes, err := i.FetchContent(req)
	if err != nil {
		i.logger.Error(err, "Image synthesis request failed")
		return nil, err
	}

	var apiRes imageApiResponse
	if err = json.Unmarshal(rawRes, &apiRes); err != nil {
		i.logger.Error(err, "Failed to unmarshal the image synthesis response")
		return nil, err
	}
	if len(apiRes.Data) == 0 {
		return nil, fmt.Errorf("image synthesis response contains no data")
	}

	decoded, err := base64.StdEncoding.DecodeString(apiRes.Data[0].B64Json)
	if err != nil {
		i.logger.Error(err, "Failed to decode the synthesized image")
		return nil, err
	}
	return decoded, nil
}

func (i *imageSynthesizer) getRequest(ctx context.Context, params outbound.SynthesizeImageParams) (*http.Request, error) {
	references := make([]string, 0, len(params.ReferenceImages))
	for _, image := range params.ReferenceImages {
		references = append(references, base64.StdEncoding.EncodeToString(image))
	}

	model := params.Model
	if model == "" {
		model = i.cfg.Model
	}

	reqBody := imageApiRequest{
		Model:           model,
		Prompt:          params.Prompt,
		ReferenceImages: references,
		AspectRatio:     string(params.AspectRatio),
		Number:          1,
		ResponseFormat:  "b64_json",
	}
	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.cfg.ApiUrl, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Authorization", "Bearer "+i.cfg.ApiKey)
	req.Header.Add("Content-Type", "application/json")

	return req, nil
}
