package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultExtractionPrompt instructs the AI endpoint to turn a raw encounter
// transcription into the structured report payload.
const DefaultExtractionPrompt = `You are an AI medical assistant for EMTs. Analyze the following transcription of a patient encounter and extract:
1. Patient demographics (name, age, gender if mentioned)
2. Vital signs with timestamps (pulse, blood pressure, respiratory rate, temperature, oxygen saturation)
3. Symptoms reported
4. Treatments administered
5. Create a timeline of events based on the timestamps in the transcription
6. Generate a SOAP note (Subjective, Objective, Assessment, Plan)

IMPORTANT: Filter out any off-topic conversation and focus only on clinically relevant information.
IMPORTANT: Return ONLY a valid JSON object with the following structure:

{
  "patientInfo": {
    "name": "string or null",
    "age": number or null,
    "gender": "string or null"
  },
  "vitals": [
    {
      "type": "pulse",
      "value": "72",
      "unit": "bpm",
      "timestamp": 12
    }
  ],
  "symptoms": ["chest pain", "shortness of breath"],
  "treatments": ["administered oxygen", "gave aspirin"],
  "timeline": [
    {
      "timestamp": 12,
      "description": "Pulse: 72 bpm",
      "type": "vital"
    }
  ],
  "soapNote": {
    "subjective": "string",
    "objective": "string",
    "assessment": "string",
    "plan": "string"
  }
}`

// DefaultFHIRPrompt instructs the AI endpoint to convert a report plus
// provider info into a FHIR DiagnosticReport resource.
const DefaultFHIRPrompt = "You are an AI assistant that converts medical reports into FHIR DiagnosticReport resources. Create a valid FHIR DiagnosticReport JSON based on the provided medical report and provider information. Return ONLY the valid JSON with no additional text, markdown formatting, or explanation. Do not include any code block markers like ```json or ```."

type Config struct {
	DataDir           string        // recordings/settings documents and persisted audio
	TranscribeBaseURL string        // speech-to-text service base URL
	AIEndpointURL     string        // chat-completion endpoint for report derivation
	RequestTimeout    time.Duration // deadline for each external call
	OfflineMode       bool          // derive reports locally instead of calling the AI endpoint
	Storage           string        // "file" or "redis"
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	LogLevel          string
	ExtractionPrompt  string // system prompt for report derivation
	FHIRPrompt        string // system prompt for FHIR export
}

type fileConfig struct {
	DataDir           string `toml:"data_dir"`
	TranscribeBaseURL string `toml:"transcribe_url"`
	AIEndpointURL     string `toml:"ai_endpoint_url"`
	RequestTimeoutSec int    `toml:"request_timeout_seconds"`
	OfflineMode       bool   `toml:"offline_mode"`
	Storage           string `toml:"storage"`
	RedisAddr         string `toml:"redis_addr"`
	RedisPassword     string `toml:"redis_password"`
	RedisDB           int    `toml:"redis_db"`
	LogLevel          string `toml:"log_level"`
	ExtractionPrompt  string `toml:"extraction_prompt"`
	FHIRPrompt        string `toml:"fhir_prompt"`
}

func Load() (*Config, error) {
	cfg := &Config{
		DataDir:           defaultDataDir(),
		TranscribeBaseURL: "http://localhost:8000",
		AIEndpointURL:     "https://toolkit.rork.com/text/llm/",
		RequestTimeout:    60 * time.Second,
		Storage:           "file",
		RedisAddr:         "localhost:6379",
		LogLevel:          "info",
		ExtractionPrompt:  DefaultExtractionPrompt,
		FHIRPrompt:        DefaultFHIRPrompt,
	}

	if configPath := configFilePath(); configPath != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(configPath, &fc); err == nil {
			if fc.DataDir != "" {
				cfg.DataDir = expandTilde(fc.DataDir)
			}
			if fc.TranscribeBaseURL != "" {
				cfg.TranscribeBaseURL = fc.TranscribeBaseURL
			}
			if fc.AIEndpointURL != "" {
				cfg.AIEndpointURL = fc.AIEndpointURL
			}
			if fc.RequestTimeoutSec > 0 {
				cfg.RequestTimeout = time.Duration(fc.RequestTimeoutSec) * time.Second
			}
			cfg.OfflineMode = fc.OfflineMode
			if fc.Storage != "" {
				cfg.Storage = fc.Storage
			}
			if fc.RedisAddr != "" {
				cfg.RedisAddr = fc.RedisAddr
			}
			cfg.RedisPassword = fc.RedisPassword
			cfg.RedisDB = fc.RedisDB
			if fc.LogLevel != "" {
				cfg.LogLevel = fc.LogLevel
			}
			if fc.ExtractionPrompt != "" {
				cfg.ExtractionPrompt = fc.ExtractionPrompt
			}
			if fc.FHIRPrompt != "" {
				cfg.FHIRPrompt = fc.FHIRPrompt
			}
		}
	}

	applyEnvOverrides(cfg)

	// Ensure directories exist
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EMTSCRIBE_DATA_DIR"); v != "" {
		cfg.DataDir = expandTilde(v)
	}
	if v := os.Getenv("EMTSCRIBE_TRANSCRIBE_URL"); v != "" {
		cfg.TranscribeBaseURL = v
	}
	if v := os.Getenv("EMTSCRIBE_AI_ENDPOINT_URL"); v != "" {
		cfg.AIEndpointURL = v
	}
	if v := os.Getenv("EMTSCRIBE_OFFLINE"); v != "" {
		cfg.OfflineMode = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("EMTSCRIBE_STORAGE"); v != "" {
		cfg.Storage = v
	}
	if v := os.Getenv("EMTSCRIBE_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("EMTSCRIBE_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("EMTSCRIBE_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = db
		}
	}
	if v := os.Getenv("EMTSCRIBE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func configFilePath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "emtscribe")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "emtscribe")
	} else {
		return ""
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".emtscribe")
	}
	return filepath.Join(".", ".emtscribe")
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
