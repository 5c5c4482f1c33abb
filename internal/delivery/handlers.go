package delivery

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/Vovarama1992/lang_tutor/internal/ai"
	"github.com/Vovarama1992/lang_tutor/internal/conversation"
	"github.com/Vovarama1992/lang_tutor/internal/speech"
	"github.com/Vovarama1992/lang_tutor/internal/tutor"
)

const (
	maxUploadSize = 32 << 20

	// nginx's code for a client that went away mid-request
	statusClientClosedRequest = 499
)

type Flow interface {
	AudioTurn(ctx context.Context, sess *conversation.Session, audioPath string) (*tutor.TurnResult, error)
	TextTurn(ctx context.Context, sess *conversation.Session, text string) (*tutor.TurnResult, error)
	Transcript(sess *conversation.Session) string
}

type TutorHandler struct {
	flow     Flow
	sess     *conversation.Session
	audioDir string
	log      *logger.ZapLogger
}

func NewTutorHandler(flow Flow, sess *conversation.Session, audioDir string, log *logger.ZapLogger) *TutorHandler {
	return &TutorHandler{
		flow:     flow,
		sess:     sess,
		audioDir: audioDir,
		log:      log,
	}
}

type synthesisResponse struct {
	Status   speech.SynthesisStatus `json:"status"`
	Reason   speech.CancelReason    `json:"reason,omitempty"`
	Detail   string                 `json:"detail,omitempty"`
	AudioURL string                 `json:"audio_url,omitempty"`
}

type turnResponse struct {
	TurnID     string            `json:"turn_id"`
	Question   string            `json:"question"`
	Reply      string            `json:"reply"`
	Transcript string            `json:"transcript"`
	Synthesis  synthesisResponse `json:"synthesis"`
}

// AudioTurn accepts a recorded question as multipart field "file".
func (h *TutorHandler) AudioTurn(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.warn("invalid multipart", err)
		http.Error(w, "invalid multipart: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.warn("missing file", err)
		http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	path, err := saveUpload(file, header.Filename)
	if err != nil {
		h.fail("failed to save upload", err)
		http.Error(w, "failed to save upload", http.StatusInternalServerError)
		return
	}
	defer os.Remove(path)

	res, err := h.flow.AudioTurn(r.Context(), h.sess, path)
	if err != nil {
		h.writeTurnError(w, err)
		return
	}
	h.writeTurn(w, res)
}

// TextTurn accepts {"text": "..."} or a form field "text".
func (h *TutorHandler) TextTurn(w http.ResponseWriter, r *http.Request) {
	var text string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
			return
		}
		text = req.Text
	} else {
		text = r.FormValue("text")
	}

	if strings.TrimSpace(text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	res, err := h.flow.TextTurn(r.Context(), h.sess, text)
	if err != nil {
		h.writeTurnError(w, err)
		return
	}
	h.writeTurn(w, res)
}

func (h *TutorHandler) Transcript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, h.flow.Transcript(h.sess))
}

// Audio serves a synthesized reply from the audio directory.
func (h *TutorHandler) Audio(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name != filepath.Base(name) || !strings.HasPrefix(name, "reply_") {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.audioDir, name))
}

func (h *TutorHandler) writeTurn(w http.ResponseWriter, res *tutor.TurnResult) {
	syn := synthesisResponse{
		Status:   res.Synthesis.Status,
		Reason:   res.Synthesis.Reason,
		Detail:   res.Synthesis.Detail,
		AudioURL: res.Synthesis.AudioURL,
	}
	if syn.AudioURL == "" && res.Synthesis.AudioPath != "" {
		syn.AudioURL = "/audio/" + filepath.Base(res.Synthesis.AudioPath)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(turnResponse{
		TurnID:     res.TurnID,
		Question:   res.Question,
		Reply:      res.Reply,
		Transcript: res.Transcript,
		Synthesis:  syn,
	})
}

func (h *TutorHandler) writeTurnError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.fail("turn failed", err)
	} else {
		h.warn("turn rejected", err)
	}
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, conversation.ErrEmptyContent):
		return http.StatusBadRequest
	case errors.Is(err, speech.ErrTranscription):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ai.ErrRemoteService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// saveUpload keeps the original extension so the recognizer can tell the
// container format.
func saveUpload(src io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".webm"
	}

	out, err := os.CreateTemp("", "question_*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}

func (h *TutorHandler) warn(msg string, err error) {
	if h.log == nil {
		return
	}
	h.log.Log(logger.LogEntry{Level: "warn", Message: msg, Service: "delivery", Error: err})
}

func (h *TutorHandler) fail(msg string, err error) {
	if h.log == nil {
		return
	}
	h.log.Log(logger.LogEntry{Level: "error", Message: msg, Service: "delivery", Error: err})
}
