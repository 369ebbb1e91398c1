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

type videoApiRequest struct {
	Model           string `json:"model"`
	Prompt          string `json:"prompt"`
	FirstFrame      string `json:"first_frame"`
	DurationSeconds int    `json:"duration_seconds"`
	AspectRatio     string `json:"aspect_ratio"`
	ResponseFormat  string `json:"response_format"`
}

type videoApiResponse struct {
	Data []struct {
		B64Json string `json:"b64_json"`
	} `json:"data"`
}

type videoSynthesizer struct {
	ContentFetcher
	logger outbound.LoggerPort
	cfg    *config.VideoModelConfig
}

// NewVideoSynthesizer calls the image-to-video model HTTP API, conditioning
// each scene on its synthesized first frame.
func NewVideoSynthesizer(contentFetcher ContentFetcher, cfg *config.VideoModelConfig,
	logger outbound.LoggerPort) outbound.VideoSynthesizerPort {
	return &videoSynthesizer{
		ContentFetcher: contentFetcher,
		logger:         logger,
		cfg:            cfg,
	}
}

func (v *videoSynthesizer) Synthesize(ctx context.Context, params outbound.SynthesizeVideoParams) ([]byte, error) {
	req, err := v.getRequest(ctx, params)
	if err != nil {
		v.logger.Error(err, "Failed to create the video synthesis request")
		return nil, err
	}

	rawRes, err := v.FetchContent(req)
	if err != nil {
		v.logger.Error(err, "Video synthesis request failed")
		return nil, err
	}

	var apiRes videoApiResponse
	if err = json.Unmarshal(rawRes, &apiRes); err != nil {
		v.logger.Error(err, "Failed to unmarshal the video synthesis response")
		return nil, err
	}
	if len(apiRes.Data) == 0 {
		return nil, fmt.Errorf("video synthesis response contains no data")
	}

	decoded, err := base64.StdEncoding.DecodeString(apiRes.Data[0].B64Json)
	if err != nil {
		v.logger.Error(err, "Failed to decode the synthesized video")
		return nil, err
	}
	return decoded, nil
}

func (v *videoSynthesizer) getRequest(ctx context.Context, params outbound.SynthesizeVideoParams) (*http.Request, error) {
	model := params.Model
	if model == "" {
		model = v.cfg.Model
	}

	reqBody := videoApiRequest{
		Model:           model,
		Prompt:          params.Prompt,
		FirstFrame:      base64.StdEncoding.EncodeToString(params.FirstFrame),
		DurationSeconds: params.DurationSeconds,
		AspectRatio:     string(params.AspectRatio),
		ResponseFormat:  "b64_json",
	}
	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.ApiUrl, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Authorization", "Bearer "+v.cfg.ApiKey)
	req.Header.Add("Content-Type", "application/json")

	return req, nil
}
