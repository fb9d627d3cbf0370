package logging

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const redacted = "[REDACTED]"

// Logger is a key/value logger that masks secret-looking fields.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New builds a logger. Mode "production" (or "prod") logs JSON at info level;
// anything else logs human-readable output at debug level.
func New(mode string) (logger *Logger, err error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}

	var z *zap.Logger
	z, err = cfg.Build()
	if err != nil {
		err = errors.Wrap(err, "failed to build logger")
		return logger, err
	}

	logger = &Logger{sugar: z.Sugar()}
	return logger, err
}

// Nop returns a logger that discards everything.
func Nop() (logger *Logger) {
	logger = &Logger{sugar: zap.NewNop().Sugar()}
	return logger
}

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

// Debug logs msg at debug level with key/value pairs.
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, sanitize(keysAndValues)...)
}

// Info logs msg at info level with key/value pairs.
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, sanitize(keysAndValues)...)
}

// Warn logs msg at warn level with key/value pairs.
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, sanitize(keysAndValues)...)
}

// Error logs msg at error level with key/value pairs.
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, sanitize(keysAndValues)...)
}

// With returns a child logger carrying the given fields.
func (l *Logger) With(keysAndValues ...interface{}) (child *Logger) {
	child = &Logger{sugar: l.sugar.With(sanitize(keysAndValues)...)}
	return child
}

// sanitize replaces the values of secret-looking keys.
func sanitize(kv []interface{}) (out []interface{}) {
	if len(kv) == 0 {
		out = kv
		return out
	}

	out = make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}

		key, ok := kv[i].(string)
		if ok && isSecretKey(key) {
			out = append(out, key, redacted)
			continue
		}
		out = append(out, kv[i], kv[i+1])
	}

	return out
}

func isSecretKey(key string) (secret bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, marker := range []string{"token", "secret", "password", "authorization", "cookie", "api_key", "apikey"} {
		if strings.Contains(key, marker) {
			secret = true
			return secret
		}
	}
	return secret
}
