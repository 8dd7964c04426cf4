package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/memora/reflections/internal/pkg/prompts"
	"github.com/spf13/viper"
)

// Client communicates with the OpenAI inference endpoints.
// Calls carry a deadline but no retry - a provider failure aborts the
// caller's pipeline.
type Client struct {
	httpclient      *http.Client
	url             string
	key             string
	transcribeModel string
	analyzeModel    string
	timeout         time.Duration
}

// NewClient creates an inference client
func NewClient(cfg *viper.Viper) (*Client, error) {
	res := Client{}
	res.key = cfg.GetString("openai.key")
	if res.key == "" {
		return nil, fmt.Errorf("no openai.key")
	}
	res.url = cfg.GetString("openai.url")
	if res.url == "" {
		res.url = "https://api.openai.com"
	}
	res.transcribeModel = cfg.GetString("openai.transcribeModel")
	if res.transcribeModel == "" {
		res.transcribeModel = "gpt-4o-transcribe"
	}
	res.analyzeModel = cfg.GetString("openai.analyzeModel")
	if res.analyzeModel == "" {
		res.analyzeModel = "gpt-4.1-mini"
	}
	res.timeout = cfg.GetDuration("openai.timeout")
	if res.timeout <= 0 {
		res.timeout = time.Minute * 3
	}
	res.httpclient = &http.Client{Transport: &http.Transport{MaxIdleConns: 10,
		MaxIdleConnsPerHost: 5, IdleConnTimeout: 90 * time.Second}}
	goapp.Log.Info().Str("url", res.url).Str("transcribe", res.transcribeModel).
		Str("analyze", res.analyzeModel).Msg("cfg: openai")
	return &res, nil
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe sends normalized audio to the speech-to-text endpoint,
// returns plain transcript text
func (c *Client) Transcribe(ctx context.Context, audio []byte, fileName string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("can't add file to request: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("can't add file content to request: %w", err)
	}
	for k, v := range map[string]string{"model": c.transcribeModel, "temperature": "0",
		"response_format": "json", "prompt": prompts.Transcriber} {
		if err := writer.WriteField(k, v); err != nil {
			return "", fmt.Errorf("can't add param: %w", err)
		}
	}
	writer.Close()

	ctx, cancelF := context.WithTimeout(ctx, c.timeout)
	defer cancelF()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.url+"/v1/audio/transcriptions", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.key)
	goapp.Log.Info().Str("url", req.URL.String()).Int("bytes", len(audio)).Msg("call transcribe")
	var res transcriptionResponse
	if err := c.invoke(req, &res); err != nil {
		return "", err
	}
	return res.Text, nil
}

type responsesRequest struct {
	Model        string  `json:"model"`
	Input        string  `json:"input"`
	Instructions string  `json:"instructions"`
	Temperature  float64 `json:"temperature"`
}

type responsesResponse struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// Analyze sends transcript text to the responses endpoint with the
// analyzer instruction, returns the raw output document
func (c *Client) Analyze(ctx context.Context, text string) (string, error) {
	b, err := json.Marshal(responsesRequest{Model: c.analyzeModel, Input: text,
		Instructions: prompts.Analyzer})
	if err != nil {
		return "", fmt.Errorf("can't marshal request: %w", err)
	}
	ctx, cancelF := context.WithTimeout(ctx, c.timeout)
	defer cancelF()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/v1/responses",
		bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.key)
	goapp.Log.Info().Str("url", req.URL.String()).Int("chars", len(text)).Msg("call analyze")
	var res responsesResponse
	if err := c.invoke(req, &res); err != nil {
		return "", err
	}
	return outputText(&res)
}

func (c *Client) invoke(req *http.Request, res interface{}) error {
	resp, err := c.httpclient.Do(req)
	if err != nil {
		return fmt.Errorf("can't call: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10000))
		_ = resp.Body.Close()
	}()
	if err := goapp.ValidateHTTPResp(resp, 100); err != nil {
		return fmt.Errorf("can't invoke '%s': %w", req.URL.String(), err)
	}
	if err := json.NewDecoder(resp.Body).Decode(res); err != nil {
		return fmt.Errorf("can't unmarshal: %w", err)
	}
	return nil
}

func outputText(res *responsesResponse) (string, error) {
	if res.OutputText != "" {
		return res.OutputText, nil
	}
	for _, o := range res.Output {
		if o.Type != "message" {
			continue
		}
		for _, c := range o.Content {
			if c.Type == "output_text" && c.Text != "" {
				return c.Text, nil
			}
		}
	}
	return "", fmt.Errorf("no output text in response")
}
