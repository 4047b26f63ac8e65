package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"newscast/internal/config"
	"newscast/internal/fileutil"
	"newscast/internal/logging"
	"newscast/internal/scripts"
	"newscast/internal/services"
)

const (
	interLineSilenceMS  = 500
	failedLineSilenceMS = 1000
)

// Synthesizer renders a script to an audio file at outPath.
type Synthesizer interface {
	Synthesize(ctx context.Context, script scripts.Script, outPath string) error
}

// Client talks to a Gemini-style generateContent endpoint with audio
// response modality, one request per script line.
type Client struct {
	cfg        config.TTS
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient builds a synthesizer from configuration.
func NewClient(cfg config.TTS, logger *slog.Logger) *Client {
	timeout := 5 * time.Minute
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "tts"),
		now:        time.Now,
	}
}

// RotatedVoices returns the host and guest voices for a given day. The pair
// swaps on alternate days so consecutive episodes do not sound identical.
func RotatedVoices(cfg config.TTS, day time.Time) (host, guest string) {
	if day.YearDay()%2 == 0 {
		return cfg.GuestVoice, cfg.HostVoice
	}
	return cfg.HostVoice, cfg.GuestVoice
}

// Synthesize renders the script into a single WAV file. Individual line
// failures are logged and replaced with silence; only a script with no
// successful line at all is an error.
func (c *Client) Synthesize(ctx context.Context, script scripts.Script, outPath string) error {
	if len(script) == 0 {
		return services.Wrap(services.ErrValidation, "tts", "synthesize", "script is empty", nil)
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return services.Wrap(services.ErrConfiguration, "tts", "synthesize", "api key required", nil)
	}

	hostVoice, guestVoice := RotatedVoices(c.cfg, c.now())

	var pcm bytes.Buffer
	succeeded := 0
	for i, line := range script {
		if err := ctx.Err(); err != nil {
			return err
		}
		voice := hostVoice
		if line.Speaker == scripts.SpeakerGuest {
			voice = guestVoice
		}
		c.logger.Debug("synthesizing line",
			logging.Int("line", i+1),
			logging.Int("total", len(script)),
			logging.String("speaker", line.Speaker),
			logging.String("voice", voice),
		)

		segment, err := c.synthesizeSegment(ctx, line.Text, voice)
		if err != nil {
			c.logger.Warn("line synthesis failed; inserting silence",
				logging.Int("line", i+1),
				logging.Error(err),
			)
			pcm.Write(silencePCM(failedLineSilenceMS))
			continue
		}
		succeeded++
		pcm.Write(segment)
		if i < len(script)-1 {
			pcm.Write(silencePCM(interLineSilenceMS))
		}
	}
	if succeeded == 0 {
		return services.Wrap(services.ErrExternalTool, "tts", "synthesize", "every line failed to synthesize", nil)
	}

	if err := fileutil.WriteFileAtomic(outPath, encodeWAV(pcm.Bytes()), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "tts", "synthesize", "write audio file", err)
	}
	c.logger.Info("audio file written",
		logging.String("path", outPath),
		logging.Int("lines", succeeded),
	)
	return nil
}

type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig generationConfig  `json:"generationConfig"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseModalities []string     `json:"responseModalities"`
	SpeechConfig       speechConfig `json:"speechConfig"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoice `json:"prebuiltVoiceConfig"`
}

type prebuiltVoice struct {
	VoiceName string `json:"voiceName"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) synthesizeSegment(ctx context.Context, text, voice string) ([]byte, error) {
	payload := generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: text}}}},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: speechConfig{
				VoiceConfig: voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoice{VoiceName: voice},
				},
			},
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, errors.New(strings.TrimSpace(parsed.Error.Message))
	}
	for _, candidate := range parsed.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			audio, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("decode audio data: %w", err)
			}
			if strings.HasPrefix(part.InlineData.MimeType, "audio/wav") ||
				strings.HasPrefix(part.InlineData.MimeType, "audio/x-wav") {
				audio = extractPCM(audio)
			}
			return audio, nil
		}
	}
	return nil, errNoAudio
}
