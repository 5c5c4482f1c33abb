package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Vovarama1992/lang_tutor/internal/ai"
	"github.com/Vovarama1992/lang_tutor/internal/config"
	"github.com/Vovarama1992/lang_tutor/internal/conversation"
	"github.com/Vovarama1992/lang_tutor/internal/delivery"
	"github.com/Vovarama1992/lang_tutor/internal/domain"
	"github.com/Vovarama1992/lang_tutor/internal/error_notificator"
	"github.com/Vovarama1992/lang_tutor/internal/infra"
	"github.com/Vovarama1992/lang_tutor/internal/logging"
	"github.com/Vovarama1992/lang_tutor/internal/ports"
	"github.com/Vovarama1992/lang_tutor/internal/prompts"
	"github.com/Vovarama1992/lang_tutor/internal/speech"
	"github.com/Vovarama1992/lang_tutor/internal/telegram"
	"github.com/Vovarama1992/lang_tutor/internal/tutor"
)

func main() {

	// =========================================================================
	// ENV / LOGGER
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	baseLogger := logging.New(cfg.LogLevel)
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.Audio.Dir, 0o755); err != nil {
		log.Fatalf("audio dir %s: %v", cfg.Audio.Dir, err)
	}

	// =========================================================================
	// DB (optional, persona only)
	// =========================================================================

	var personaRepo prompts.Repo
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			log.Printf("[db] ping failed, using built-in persona: %v", err)
		} else {
			personaRepo = prompts.NewRepo(db)
		}
		cancel()
	}

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	errService := error_notificator.NewService(nil, baseLogger)

	// =========================================================================
	// CLIENTS (AI / STT / TTS / S3)
	// =========================================================================

	openAIClient := ai.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)

	var tokens ai.TokenCounter
	if counter, err := ai.NewTiktokenCounter(cfg.OpenAI.Model); err != nil {
		log.Printf("[tokens] counter disabled: %v", err)
	} else {
		tokens = counter
	}

	var stt speech.STTClient
	switch cfg.Speech.STTProvider {
	case config.STTDeepgram:
		stt = speech.NewDeepgramClient(cfg.Speech.DeepgramKey, cfg.Speech.DeepgramLanguage)
	default:
		stt = speech.NewWhisperClient(openAIClient.Raw())
	}

	var tts speech.TTSClient
	switch cfg.Speech.TTSProvider {
	case config.TTSElevenLabs:
		tts = speech.NewElevenLabsClient(cfg.Speech.ElevenLabsKey, cfg.Speech.ElevenLabsVoice)
	default:
		tts = speech.NewAzureTTS(cfg.Speech.Key, cfg.Speech.Region, cfg.Speech.Voice)
	}

	speechOpts := speech.Options{
		AudioDir:   cfg.Audio.Dir,
		STTTimeout: cfg.Timeouts.STT,
		TTSTimeout: cfg.Timeouts.TTS,
	}
	if player := speech.NewExecPlayer(cfg.Audio.Player); player != nil {
		speechOpts.Player = player
	}
	if cfg.S3.Enabled() {
		s3Client, err := infra.NewS3Client(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("failed to init s3: %v", err)
		}
		speechOpts.Uploader = domain.NewAudioStore(s3Client, baseLogger)
	}

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	persona := prompts.NewService(personaRepo, cfg.PersonaName, baseLogger).Persona(ctx)

	speechService := speech.NewService(stt, tts, speechOpts, baseLogger)
	aiService := ai.NewService(openAIClient, cfg.OpenAI.Model, cfg.Timeouts.Chat, tokens, baseLogger)
	flow := tutor.NewFlow(speechService, aiService, speechService, errService, baseLogger)

	session := conversation.NewSession(persona)
	baseLogger.Info("session started", zap.String("session", session.ID))

	// =========================================================================
	// TELEGRAM BOT (optional)
	// =========================================================================

	if cfg.Telegram.Enabled() {
		bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			log.Fatalf("failed to init telegram bot: %v", err)
		}
		log.Printf("[bot_app] ready: @%s", bot.Self.UserName)

		if cfg.Telegram.AdminChatID != 0 {
			errService.SetInfra(error_notificator.NewInfra(bot, cfg.Telegram.AdminChatID))
		}

		botApp := telegram.NewBotApp(flow, session, bot, cfg.Telegram.ChatID)
		go botApp.Run(ctx, telegram.Updates(bot))
	}

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	tutorHandler := delivery.NewTutorHandler(flow, session, cfg.Audio.Dir, zl)

	var (
		authService ports.AuthService
		authHandler *delivery.AuthHandler
	)
	if cfg.Auth.Password != "" {
		authService = domain.NewAuthService(cfg.Auth.Password, cfg.Auth.Secret)
		authHandler = delivery.NewAuthHandler(authService)
	}

	delivery.RegisterRoutes(r, tutorHandler, authHandler, authService)

	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("pong"))
	})

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + cfg.Port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[server] shutdown: %v", err)
		}
	}()

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr,
		Service: "lang_tutor",
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
