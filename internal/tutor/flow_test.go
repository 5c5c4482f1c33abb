package tutor_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	openai "github.com/sashabaranov/go-openai"

	"github.com/Vovarama1992/lang_tutor/internal/ai"
	"github.com/Vovarama1992/lang_tutor/internal/conversation"
	"github.com/Vovarama1992/lang_tutor/internal/speech"
	"github.com/Vovarama1992/lang_tutor/internal/tutor"
)

type stubSTT struct {
	text  string
	err   error
	calls int
}

func (s *stubSTT) Transcribe(context.Context, string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", fmt.Errorf("%w: %w", speech.ErrTranscription, s.err)
	}
	return s.text, nil
}

// stubCompleter answers from a fixed table, falling back to an echo. When
// entered and release are set, each call signals entered and then waits for
// release or ctx.
type stubCompleter struct {
	mu      sync.Mutex
	replies map[string]string
	err     error
	calls   int

	entered chan struct{}
	release chan struct{}
}

func (c *stubCompleter) GetCompletion(ctx context.Context, msgs []openai.ChatCompletionMessage, _ ai.CompletionParams) (string, error) {
	if c.entered != nil {
		c.entered <- struct{}{}
	}
	if c.release != nil {
		select {
		case <-c.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	last := msgs[len(msgs)-1].Content
	if r, ok := c.replies[last]; ok {
		return r, nil
	}
	return "re: " + last, nil
}

type stubTTS struct {
	result speech.SynthesisResult
	texts  []string
}

func (s *stubTTS) Synthesize(_ context.Context, _, text string) speech.SynthesisResult {
	s.texts = append(s.texts, text)
	return s.result
}

type stubNotifier struct {
	errs []error
}

func (n *stubNotifier) Notify(_ context.Context, err error, _ string) error {
	n.errs = append(n.errs, err)
	return nil
}

var _ = Describe("Flow", func() {
	var (
		ctx       context.Context
		stt       *stubSTT
		completer *stubCompleter
		tts       *stubTTS
		notifier  *stubNotifier
		flow      *tutor.Flow
		sess      *conversation.Session
	)

	BeforeEach(func() {
		ctx = context.Background()
		stt = &stubSTT{text: "Hello"}
		completer = &stubCompleter{replies: map[string]string{"Hello": "Hola, ¿cómo estás?"}}
		tts = &stubTTS{result: speech.SynthesisResult{Status: speech.SynthesisCompleted}}
		notifier = &stubNotifier{}
		dialog := ai.NewService(completer, "gpt-3.5-turbo", 0, nil, nil)
		flow = tutor.NewFlow(stt, dialog, tts, notifier, nil)
		sess = conversation.NewSession("You are a fun language tutor.")
	})

	Describe("TextTurn", func() {
		It("returns a transcript ending with the new exchange", func() {
			res, err := flow.TextTurn(ctx, sess, "Hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Reply).To(Equal("Hola, ¿cómo estás?"))
			Expect(res.Transcript).To(HaveSuffix("user: Hello\n\nassistant: Hola, ¿cómo estás?\n\n"))
			Expect(res.TurnID).NotTo(BeEmpty())
			Expect(tts.texts).To(Equal([]string{"Hola, ¿cómo estás?"}))
			Expect(stt.calls).To(BeZero())
		})

		It("keeps strict alternation over many turns", func() {
			const n = 7
			var last string
			for i := 0; i < n; i++ {
				res, err := flow.TextTurn(ctx, sess, fmt.Sprintf("q%d", i))
				Expect(err).NotTo(HaveOccurred())
				last = res.Transcript
			}

			Expect(last).NotTo(ContainSubstring("fun language tutor"))
			blocks := strings.Split(strings.TrimSuffix(last, "\n\n"), "\n\n")
			Expect(blocks).To(HaveLen(2 * n))
			for i, b := range blocks {
				if i%2 == 0 {
					Expect(b).To(Equal(fmt.Sprintf("user: q%d", i/2)))
				} else {
					Expect(b).To(Equal(fmt.Sprintf("assistant: re: q%d", i/2)))
				}
			}
			Expect(flow.Transcript(sess)).To(Equal(last))
		})

		It("rejects empty input without calling the model", func() {
			_, err := flow.TextTurn(ctx, sess, "   ")
			Expect(err).To(MatchError(conversation.ErrEmptyContent))
			Expect(completer.calls).To(BeZero())
			Expect(notifier.errs).To(BeEmpty())
		})

		It("rolls the user message back when the model fails", func() {
			_, err := flow.TextTurn(ctx, sess, "Hello")
			Expect(err).NotTo(HaveOccurred())
			before := sess.Conversation.Messages()

			completer.err = errors.New("503 service unavailable")
			res, err := flow.TextTurn(ctx, sess, "Still there?")
			Expect(err).To(MatchError(ai.ErrRemoteService))
			Expect(res).To(BeNil())
			Expect(sess.Conversation.Messages()).To(Equal(before))
			Expect(tts.texts).To(HaveLen(1))
			Expect(notifier.errs).To(HaveLen(1))

			completer.err = nil
			res, err = flow.TextTurn(ctx, sess, "Still there?")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Transcript).To(HaveSuffix("user: Still there?\n\nassistant: re: Still there?\n\n"))
		})

		It("keeps a pending question out of the transcript", func() {
			_, err := flow.TextTurn(ctx, sess, "Hello")
			Expect(err).NotTo(HaveOccurred())
			before := flow.Transcript(sess)

			completer.entered = make(chan struct{})
			completer.release = make(chan struct{})
			completer.err = errors.New("503 service unavailable")

			done := make(chan error, 1)
			go func() {
				defer GinkgoRecover()
				_, err := flow.TextTurn(ctx, sess, "Still there?")
				done <- err
			}()

			Eventually(completer.entered).Should(Receive())
			Expect(sess.Conversation.Len()).To(Equal(4))
			Expect(flow.Transcript(sess)).To(Equal(before))

			close(completer.release)
			Eventually(done).Should(Receive(MatchError(ai.ErrRemoteService)))
			Expect(flow.Transcript(sess)).To(Equal(before))
		})

		It("does not alert the admin when the caller goes away", func() {
			turnCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			completer.entered = make(chan struct{})
			completer.release = make(chan struct{})

			done := make(chan error, 1)
			go func() {
				defer GinkgoRecover()
				_, err := flow.TextTurn(turnCtx, sess, "Hello")
				done <- err
			}()

			Eventually(completer.entered).Should(Receive())
			cancel()

			var err error
			Eventually(done).Should(Receive(&err))
			Expect(err).To(MatchError(ai.ErrRemoteService))
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(notifier.errs).To(BeEmpty())
			Expect(flow.Transcript(sess)).To(BeEmpty())
			Expect(sess.Conversation.Len()).To(Equal(1))
		})

		It("returns the transcript even when synthesis is canceled", func() {
			tts.result = speech.SynthesisResult{
				Status: speech.SynthesisCanceled,
				Reason: speech.CancelReasonError,
				Detail: "azure tts error 401: bad key",
			}

			res, err := flow.TextTurn(ctx, sess, "Hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Synthesis.Status).To(Equal(speech.SynthesisCanceled))
			Expect(res.Transcript).To(Equal("user: Hello\n\nassistant: Hola, ¿cómo estás?\n\n"))
		})
	})

	Describe("AudioTurn", func() {
		It("answers the transcribed question", func() {
			res, err := flow.AudioTurn(ctx, sess, "/tmp/q.ogg")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Question).To(Equal("Hello"))
			Expect(res.Transcript).To(Equal("user: Hello\n\nassistant: Hola, ¿cómo estás?\n\n"))
			Expect(stt.calls).To(Equal(1))
		})

		It("stops before the model when transcription fails", func() {
			stt.err = errors.New("malformed audio")

			res, err := flow.AudioTurn(ctx, sess, "/tmp/q.ogg")
			Expect(err).To(MatchError(speech.ErrTranscription))
			Expect(res).To(BeNil())
			Expect(completer.calls).To(BeZero())
			Expect(tts.texts).To(BeEmpty())
			Expect(sess.Conversation.Len()).To(Equal(1))
			Expect(notifier.errs).To(HaveLen(1))
		})
	})

	It("serializes concurrent turns on one session", func() {
		const n = 20
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer GinkgoRecover()
				defer wg.Done()
				_, err := flow.TextTurn(ctx, sess, fmt.Sprintf("q%d", i))
				Expect(err).NotTo(HaveOccurred())
			}(i)
		}
		wg.Wait()

		msgs := sess.Conversation.Messages()
		Expect(msgs).To(HaveLen(1 + 2*n))
		for i := 1; i < len(msgs); i += 2 {
			Expect(msgs[i].Role).To(Equal(conversation.RoleUser))
			Expect(msgs[i+1].Role).To(Equal(conversation.RoleAssistant))
			Expect(msgs[i+1].Content).To(Equal("re: " + msgs[i].Content))
		}
	})
})
