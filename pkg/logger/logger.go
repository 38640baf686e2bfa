// Package logger arma el zerolog del proceso a partir de la configuración de la app.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config describe salida, nivel y nombre de la app.
type Config struct {
	Env   string    // "development" usa consola legible
	Level string    // trace, debug, info, warn, error; vacío o desconocido = info
	App   string    // se agrega como campo "app" en cada línea
	Out   io.Writer // nil = stdout
}

// Logger es el logger raíz del proceso. Los componentes reciben sub-loggers vía Component.
type Logger struct {
	zerolog.Logger
}

// New construye el logger raíz y lo instala también como log.Logger global.
func New(cfg Config) *Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	if cfg.Env == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	fields := zerolog.New(out).Level(levelOf(cfg.Level)).With().Timestamp()
	if cfg.App != "" {
		fields = fields.Str("app", cfg.App)
	}
	root := &Logger{Logger: fields.Logger()}
	log.Logger = root.Logger
	return root
}

// Component devuelve un sub-logger con el campo component.
func (l *Logger) Component(name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

func levelOf(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
