package config

import (
	"os"
	"strconv"
	"time"
)

// IDBounds are the upper bounds of each id namespace
type IDBounds struct {
	Session int64 `json:"session"`
	Player  int64 `json:"player"`
	Game    int64 `json:"game"`
}

// EngineConfig tunes the session engine and its persistence
type EngineConfig struct {
	IDBounds IDBounds `json:"idBounds"`

	// LockWait bounds how long a request queues for a lock section; 0 waits on the request context only
	LockWait time.Duration `json:"lockWait"`

	// StoreRetries is how often a write is retried after a revision conflict
	StoreRetries int `json:"storeRetries"`

	// RevealTimeout bounds the store work done when a reveal timer fires
	RevealTimeout time.Duration `json:"revealTimeout"`

	// A reveal that fails is re-armed RevealRetries times, RevealRetryDelay apart
	RevealRetries    int           `json:"revealRetries"`
	RevealRetryDelay time.Duration `json:"revealRetryDelay"`
}

// DefaultEngineConfig returns the engine configuration, overridable from the environment
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		IDBounds: IDBounds{
			Session: getEnvInt64("SESSION_ID_BOUND", 999999),
			Player:  getEnvInt64("PLAYER_ID_BOUND", 999999999),
			Game:    getEnvInt64("GAME_ID_BOUND", 999999999),
		},
		LockWait:         time.Duration(getEnvInt64("LOCK_WAIT_MS", 0)) * time.Millisecond,
		StoreRetries:     int(getEnvInt64("STORE_RETRY_LIMIT", 3)),
		RevealTimeout:    10 * time.Second,
		RevealRetries:    int(getEnvInt64("REVEAL_RETRY_LIMIT", 3)),
		RevealRetryDelay: time.Second,
	}
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
