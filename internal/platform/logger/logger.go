// Package logger はプロセス全体の zerolog ロガーを設定します。
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup はグローバルロガーのレベルと出力形式を設定します。
// format が "console" なら人が読む形式、それ以外は JSON です。
// stdout はコマンドの出力に使うため、ログは stderr に書きます。
func Setup(level, format string) {
	SetupWriter(level, format, os.Stderr)
}

// SetupWriter は出力先を指定して Setup します。
func SetupWriter(level, format string, w io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLevel(level))

	out := w
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("service", "signalbot").Logger()
}

// ParseLevel は未知の値を info として扱います。
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}
