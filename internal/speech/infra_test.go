package speech

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAzureTTSWritesAudio(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("Ocp-Apim-Subscription-Key"))
		assert.Equal(t, "application/ssml+xml", r.Header.Get("Content-Type"))
		assert.Equal(t, azureOutputFormat, r.Header.Get("X-Microsoft-OutputFormat"))
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	tts := NewAzureTTS("secret", "westeurope", "es-ES-IreneNeural")
	tts.endpoint = srv.URL

	out := filepath.Join(t.TempDir(), "nested", "reply.mp3")
	require.NoError(t, tts.Synthesize(context.Background(), "Hola & <adiós>", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "mp3-bytes", string(data))
	assert.Contains(t, body, `xml:lang="es-ES"`)
	assert.Contains(t, body, `<voice name="es-ES-IreneNeural">Hola &amp; &lt;adiós&gt;</voice>`)
}

func TestAzureTTSError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid subscription key"))
	}))
	defer srv.Close()

	tts := NewAzureTTS("bad", "westeurope", "es-ES-IreneNeural")
	tts.endpoint = srv.URL

	out := filepath.Join(t.TempDir(), "reply.mp3")
	err := tts.Synthesize(context.Background(), "Hola", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid subscription key")
	assert.NoFileExists(t, out)
}

func TestVoiceLocale(t *testing.T) {
	assert.Equal(t, "es-ES", voiceLocale("es-ES-IreneNeural"))
	assert.Equal(t, "fr-FR", voiceLocale("fr-FR-DeniseNeural"))
	assert.Equal(t, "en-US", voiceLocale("custom"))
}

func TestElevenLabsWritesAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/voice-1", r.URL.Path)
		assert.Equal(t, "el-key", r.Header.Get("xi-api-key"))
		_, _ = w.Write([]byte("audio"))
	}))
	defer srv.Close()

	c := NewElevenLabsClient("el-key", "voice-1")
	c.baseURL = srv.URL

	out := filepath.Join(t.TempDir(), "reply.mp3")
	require.NoError(t, c.Synthesize(context.Background(), "Hola", out))
	assert.FileExists(t, out)
}

func TestDeepgramTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/listen", r.URL.Path)
		assert.Equal(t, "es", r.URL.Query().Get("language"))
		assert.Equal(t, "Token dg-key", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"results":{"channels":[{"alternatives":[{"transcript":"¿Qué hora es?"}]}]}}`)
	}))
	defer srv.Close()

	c := NewDeepgramClient("dg-key", "es")
	c.baseURL = srv.URL

	path := filepath.Join(t.TempDir(), "q.ogg")
	require.NoError(t, os.WriteFile(path, []byte("OggS"), 0o644))

	text, err := c.Transcribe(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "¿Qué hora es?", text)
}

func TestDeepgramEmptyAndErrors(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `{"results":{"channels":[]}}`)
	}))
	defer srv.Close()

	c := NewDeepgramClient("dg-key", "es")
	c.baseURL = srv.URL

	path := filepath.Join(t.TempDir(), "q.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))

	_, err := c.Transcribe(context.Background(), path)
	require.Error(t, err)

	status = http.StatusPaymentRequired
	_, err = c.Transcribe(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "402")

	_, err = c.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.ogg"))
	require.Error(t, err)
}

func TestWhisperTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		_, _, err := r.FormFile("file")
		assert.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":" Hello, how do I say dog? "}`)
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL + "/v1"
	c := NewWhisperClient(openai.NewClientWithConfig(cfg))

	path := filepath.Join(t.TempDir(), "q.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))

	text, err := c.Transcribe(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Hello, how do I say dog?", text)
}

func TestExecPlayer(t *testing.T) {
	assert.Nil(t, NewExecPlayer("   "))

	p := NewExecPlayer("ffplay -nodisp -autoexit")
	require.NotNil(t, p)
	assert.Equal(t, "ffplay", p.name)
	assert.Equal(t, []string{"-nodisp", "-autoexit"}, p.args)

	if _, err := os.Stat("/bin/true"); err == nil {
		require.NoError(t, NewExecPlayer("/bin/true").Play(context.Background(), "reply.mp3"))
	}
	if _, err := os.Stat("/bin/false"); err == nil {
		require.Error(t, NewExecPlayer("/bin/false").Play(context.Background(), "reply.mp3"))
	}
}
