package speech

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const azureOutputFormat = "audio-24khz-48kbitrate-mono-mp3"

// AzureTTS speaks through the Azure Speech REST endpoint.
type AzureTTS struct {
	key      string
	voice    string
	endpoint string
	httpCli  *http.Client
}

func NewAzureTTS(key, region, voice string) *AzureTTS {
	return &AzureTTS{
		key:      key,
		voice:    voice,
		endpoint: fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", region),
		httpCli:  http.DefaultClient,
	}
}

func (t *AzureTTS) Synthesize(ctx context.Context, text, outPath string) error {
	ssml, err := buildSSML(t.voice, text)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(ssml))
	if err != nil {
		return err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", t.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", azureOutputFormat)
	req.Header.Set("User-Agent", "lang_tutor")

	resp, err := t.httpCli.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("azure tts error %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	return writeAudio(outPath, resp.Body)
}

func buildSSML(voice, text string) (string, error) {
	var escaped bytes.Buffer
	if err := xml.EscapeText(&escaped, []byte(text)); err != nil {
		return "", err
	}
	return fmt.Sprintf(
		`<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="%s"><voice name="%s">%s</voice></speak>`,
		voiceLocale(voice), voice, escaped.String(),
	), nil
}

// voiceLocale maps "es-ES-IreneNeural" to "es-ES".
func voiceLocale(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 3 {
		return "en-US"
	}
	return parts[0] + "-" + parts[1]
}
