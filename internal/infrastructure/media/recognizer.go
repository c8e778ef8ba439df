package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/OtabekovsProject/bot-media/config"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
)

const (
	defaultRecognizeTimeout = 60 * time.Second
	// maxRecognizeUpload caps the sample sent for recognition
	maxRecognizeUpload = 20 << 20
)

// AudD recognizes songs through an AudD compatible HTTP API
type AudD struct {
	client   *fasthttp.Client
	endpoint string
	token    string
	logger   zerolog.Logger
}

// NewAudD creates a new recognizer client
func NewAudD(cfg *config.MediaConfig, logger zerolog.Logger) *AudD {
	return NewAudDWithClient(&fasthttp.Client{
		Name:                "bot-media",
		MaxResponseBodySize: 1 << 20,
	}, cfg.RecognizerURL, cfg.RecognizerToken, logger)
}

// NewAudDWithClient creates a recognizer on top of the given client
func NewAudDWithClient(client *fasthttp.Client, endpoint, token string, logger zerolog.Logger) *AudD {
	return &AudD{
		client:   client,
		endpoint: endpoint,
		token:    token,
		logger:   logger.With().Str("component", "recognizer").Logger(),
	}
}

type auddResponse struct {
	Status string       `json:"status"`
	Result *auddResult  `json:"result"`
	Error  *auddFailure `json:"error"`
}

type auddResult struct {
	Artist     string `json:"artist"`
	Title      string `json:"title"`
	SongLink   string `json:"song_link"`
	AppleMusic *struct {
		Artwork struct {
			URL string `json:"url"`
		} `json:"artwork"`
	} `json:"apple_music"`
}

type auddFailure struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_message"`
}

// Recognize uploads the file and returns the match, or nil when nothing matched
func (a *AudD) Recognize(ctx context.Context, path string) (*entities.Track, error) {
	body, contentType, err := a.buildForm(path)
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(a.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(contentType)
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultRecognizeTimeout)
	}
	if err := a.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("recognizer request failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("recognizer returned status %d", resp.StatusCode())
	}

	return parseRecognition(resp.Body())
}

func (a *AudD) buildForm(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open sample: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if a.token != "" {
		if err := mw.WriteField("api_token", a.token); err != nil {
			return nil, "", err
		}
	}
	if err := mw.WriteField("return", "apple_music"); err != nil {
		return nil, "", err
	}

	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, io.LimitReader(f, maxRecognizeUpload)); err != nil {
		return nil, "", fmt.Errorf("copy sample: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func parseRecognition(raw []byte) (*entities.Track, error) {
	var resp auddResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode recognizer response: %w", err)
	}

	if resp.Status != "success" {
		if resp.Error != nil {
			return nil, fmt.Errorf("recognizer error %d: %s", resp.Error.Code, resp.Error.Message)
		}
		return nil, fmt.Errorf("recognizer status %q", resp.Status)
	}

	if resp.Result == nil || resp.Result.Title == "" {
		return nil, nil
	}

	track := &entities.Track{
		Title:        resp.Result.Title,
		Subtitle:     resp.Result.Artist,
		ReferenceURL: resp.Result.SongLink,
	}
	if resp.Result.AppleMusic != nil {
		track.ArtworkURL = resp.Result.AppleMusic.Artwork.URL
	}
	return track, nil
}
