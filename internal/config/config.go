package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by NEXTMOVE_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("NEXTMOVE_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// APIKey returns the static API key the server requires on /v1 routes.
// Empty means auth is disabled (local development).
func APIKey() string {
	return os.Getenv("API_KEY")
}

// Alpha returns the Q-learning rate.
func Alpha() float64 {
	a, err := strconv.ParseFloat(os.Getenv("Q_ALPHA"), 64)
	if err != nil || a <= 0 || a > 1 {
		return 0.1
	}
	return a
}

// Gamma returns the discount factor for future rewards.
func Gamma() float64 {
	g, err := strconv.ParseFloat(os.Getenv("Q_GAMMA"), 64)
	if err != nil || g < 0 || g > 1 {
		return 0.9
	}
	return g
}

// UCBCoefficient returns the exploration coefficient for action selection.
func UCBCoefficient() float64 {
	c, err := strconv.ParseFloat(os.Getenv("Q_UCB_C"), 64)
	if err != nil || c < 0 {
		return 1.0
	}
	return c
}

// RewardTablePath returns the path to a YAML file of reward overrides.
// Empty means the compiled-in defaults are used as-is.
func RewardTablePath() string {
	return os.Getenv("REWARD_TABLE_PATH")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
