package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfiguration marks a missing or invalid setting. It is fatal at startup.
var ErrConfiguration = errors.New("configuration error")

const (
	STTWhisper  = "whisper"
	STTDeepgram = "deepgram"

	TTSAzure      = "azure"
	TTSElevenLabs = "elevenlabs"
)

type Config struct {
	Port     string
	LogLevel string

	OpenAI   OpenAIConfig
	Speech   SpeechConfig
	Timeouts TimeoutConfig
	Audio    AudioConfig
	S3       S3Config
	Telegram TelegramConfig
	Auth     AuthConfig

	DatabaseURL string
	PersonaName string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type SpeechConfig struct {
	STTProvider string
	TTSProvider string

	// Azure
	Key    string
	Region string
	Voice  string

	DeepgramKey      string
	DeepgramLanguage string

	ElevenLabsKey   string
	ElevenLabsVoice string
}

type TimeoutConfig struct {
	STT  time.Duration
	Chat time.Duration
	TTS  time.Duration
}

type AudioConfig struct {
	Dir    string
	Player string
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
}

func (c S3Config) Enabled() bool { return c.Endpoint != "" }

type TelegramConfig struct {
	Token       string
	ChatID      int64
	AdminChatID int64
}

func (c TelegramConfig) Enabled() bool { return c.Token != "" }

type AuthConfig struct {
	Password string
	Secret   string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			Model:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		},
		Speech: SpeechConfig{
			STTProvider:      strings.ToLower(getEnv("STT_PROVIDER", STTWhisper)),
			TTSProvider:      strings.ToLower(getEnv("TTS_PROVIDER", TTSAzure)),
			Key:              os.Getenv("SPEECH_KEY"),
			Region:           os.Getenv("SPEECH_REGION"),
			Voice:            getEnv("SPEECH_VOICE", "es-ES-IreneNeural"),
			DeepgramKey:      os.Getenv("DEEPGRAM_API_KEY"),
			DeepgramLanguage: getEnv("DEEPGRAM_LANGUAGE", "es"),
			ElevenLabsKey:    os.Getenv("ELEVENLABS_API_KEY"),
			ElevenLabsVoice:  getEnv("ELEVENLABS_VOICE_ID", "EXAVITQu4vr4xnSDxMaL"),
		},
		Audio: AudioConfig{
			Dir:    getEnv("AUDIO_DIR", os.TempDir()),
			Player: os.Getenv("AUDIO_PLAYER"),
		},
		S3: S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    os.Getenv("S3_REGION"),
		},
		Telegram: TelegramConfig{
			Token: os.Getenv("TELEGRAM_BOT_TOKEN"),
		},
		Auth: AuthConfig{
			Password: os.Getenv("AUTH_PASSWORD"),
			Secret:   os.Getenv("AUTH_SECRET"),
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
		PersonaName: getEnv("TUTOR_PERSONA", "default"),
	}

	var err error
	if cfg.Timeouts.STT, err = getEnvDuration("STT_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.Timeouts.Chat, err = getEnvDuration("CHAT_TIMEOUT", 120*time.Second); err != nil {
		return nil, err
	}
	if cfg.Timeouts.TTS, err = getEnvDuration("TTS_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.Telegram.ChatID, err = getEnvInt64("TELEGRAM_CHAT_ID", 0); err != nil {
		return nil, err
	}
	if cfg.Telegram.AdminChatID, err = getEnvInt64("ADMIN_CHAT_ID", 0); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every credential the selected providers need is present.
func (c *Config) Validate() error {
	var missing []string
	if c.OpenAI.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}

	switch c.Speech.STTProvider {
	case STTWhisper:
	case STTDeepgram:
		if c.Speech.DeepgramKey == "" {
			missing = append(missing, "DEEPGRAM_API_KEY")
		}
	default:
		return fmt.Errorf("%w: unknown STT_PROVIDER %q", ErrConfiguration, c.Speech.STTProvider)
	}

	switch c.Speech.TTSProvider {
	case TTSAzure:
		if c.Speech.Key == "" {
			missing = append(missing, "SPEECH_KEY")
		}
		if c.Speech.Region == "" {
			missing = append(missing, "SPEECH_REGION")
		}
	case TTSElevenLabs:
		if c.Speech.ElevenLabsKey == "" {
			missing = append(missing, "ELEVENLABS_API_KEY")
		}
	default:
		return fmt.Errorf("%w: unknown TTS_PROVIDER %q", ErrConfiguration, c.Speech.TTSProvider)
	}

	if c.S3.Enabled() && c.S3.Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if c.Auth.Password != "" && c.Auth.Secret == "" {
		missing = append(missing, "AUTH_SECRET")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s not set", ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrConfiguration, key, v)
	}
	return d, nil
}

func getEnvInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrConfiguration, key, v)
	}
	return n, nil
}
