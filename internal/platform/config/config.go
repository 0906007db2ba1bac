package config

import (
	"time"
)

type Config struct {
	Server     ServerConfig             `yaml:"server" mapstructure:"server"`
	Log        LogConfig                `yaml:"log" mapstructure:"log"`
	Web        WebConfig                `yaml:"web" mapstructure:"web"`
	Storage    StorageConfig            `yaml:"storage" mapstructure:"storage"`
	Token      TokenConfig              `yaml:"token" mapstructure:"token"`
	Speech     SpeechConfig             `yaml:"speech" mapstructure:"speech"`
	Voice      VoiceConfig              `yaml:"voice" mapstructure:"voice"`
	Biometric  BiometricConfig          `yaml:"biometric" mapstructure:"biometric"`
	Voiceprint VoiceprintConfig         `yaml:"voiceprint" mapstructure:"voiceprint"`
	Profiles   map[string]LocaleProfile `yaml:"profiles" mapstructure:"profiles"`
	Selected   SelectedConfig           `yaml:"selected" mapstructure:"selected"`
}

type ServerConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
}

type LogConfig struct {
	Level string `yaml:"log_level" mapstructure:"log_level"`
	Dir   string `yaml:"log_dir" mapstructure:"log_dir"`
	File  string `yaml:"log_file" mapstructure:"log_file"`
}

type WebConfig struct {
	Enabled      bool     `yaml:"enabled" mapstructure:"enabled"`
	IP           string   `yaml:"ip" mapstructure:"ip"`
	Port         int      `yaml:"port" mapstructure:"port"`
	JWTSecret    string   `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	AdminUser    string   `yaml:"admin_user" mapstructure:"admin_user"`
	AdminPass    string   `yaml:"admin_pass" mapstructure:"admin_pass"`
	AllowOrigins []string `yaml:"allow_origins" mapstructure:"allow_origins"`
}

type StorageConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"`
}

// TokenConfig describes the card reader endpoint and the authorization table.
type TokenConfig struct {
	PortName    string            `yaml:"port_name" mapstructure:"port_name"`
	BaudRate    int               `yaml:"baud_rate" mapstructure:"baud_rate"`
	ReadTimeout time.Duration     `yaml:"read_timeout" mapstructure:"read_timeout"`
	SettleDelay time.Duration     `yaml:"settle_delay" mapstructure:"settle_delay"`
	Codes       map[string]string `yaml:"codes" mapstructure:"codes"`
	Store       TokenStoreConfig  `yaml:"store" mapstructure:"store"`
}

type TokenStoreConfig struct {
	Driver string                `yaml:"driver" mapstructure:"driver"`
	SQLite TokenSQLiteStore      `yaml:"sqlite,omitempty" mapstructure:"sqlite"`
	Redis  TokenRedisStoreConfig `yaml:"redis,omitempty" mapstructure:"redis"`
}

type TokenSQLiteStore struct {
	DSN string `yaml:"dsn,omitempty" mapstructure:"dsn"`
}

type TokenRedisStoreConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Username string `yaml:"username,omitempty" mapstructure:"username"`
	Password string `yaml:"password,omitempty" mapstructure:"password"`
	DB       int    `yaml:"db,omitempty" mapstructure:"db"`
	Prefix   string `yaml:"prefix,omitempty" mapstructure:"prefix"`
}

type SpeechConfig struct {
	Provider       string        `yaml:"provider" mapstructure:"provider"`
	APIKey         string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL        string        `yaml:"url" mapstructure:"url"`
	Model          string        `yaml:"model" mapstructure:"model"`
	CaptureTimeout time.Duration `yaml:"capture_timeout" mapstructure:"capture_timeout"`
	PhraseLimit    time.Duration `yaml:"phrase_limit" mapstructure:"phrase_limit"`
}

type VoiceConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"`
	OutputDir   string `yaml:"output_dir" mapstructure:"output_dir"`
	DeleteAudio bool   `yaml:"delete_audio" mapstructure:"delete_audio"`
}

// BiometricConfig fixes the feature extractor configuration. Fingerprints are
// only comparable when produced under identical values.
type BiometricConfig struct {
	SampleRate int `yaml:"sample_rate" mapstructure:"sample_rate"`
	CoeffCount int `yaml:"coeff_count" mapstructure:"coeff_count"`
}

type VoiceprintConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
	Ext    string `yaml:"ext" mapstructure:"ext"`
}

type SelectedConfig struct {
	Profile string `yaml:"profile" mapstructure:"profile"`
}

// LocaleProfile collects everything that differs between deployments of the
// same flows: spoken prompts, recognition language, TTS voice, the command
// vocabulary and the biometric match threshold.
type LocaleProfile struct {
	LanguageTag    string            `yaml:"language_tag" mapstructure:"language_tag"`
	STTLanguage    string            `yaml:"stt_language" mapstructure:"stt_language"`
	TTSVoice       string            `yaml:"tts_voice" mapstructure:"tts_voice"`
	MatchThreshold float64           `yaml:"match_threshold" mapstructure:"match_threshold"`
	Prompts        map[string]string `yaml:"prompts" mapstructure:"prompts"`
	Commands       CommandVocabulary `yaml:"commands" mapstructure:"commands"`
}

// CommandVocabulary is the post-unlock command surface for one locale.
type CommandVocabulary struct {
	Shutdown    string   `yaml:"shutdown" mapstructure:"shutdown"`
	Status      string   `yaml:"status" mapstructure:"status"`
	Date        string   `yaml:"date" mapstructure:"date"`
	AlarmPrefix string   `yaml:"alarm_prefix" mapstructure:"alarm_prefix"`
	NotePrefix  string   `yaml:"note_prefix" mapstructure:"note_prefix"`
	SearchWord  string   `yaml:"search_word" mapstructure:"search_word"`
	Enroll      string   `yaml:"enroll" mapstructure:"enroll"`
	StopWords   []string `yaml:"stop_words" mapstructure:"stop_words"`
}

// Profile resolves the selected locale profile, falling back to the first
// defined one when the selection is missing.
func (c *Config) Profile() LocaleProfile {
	if p, ok := c.Profiles[c.Selected.Profile]; ok {
		return p
	}
	for _, p := range c.Profiles {
		return p
	}
	return LocaleProfile{}
}
