package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LokiLogger is the application logger: zap wrapped in otelzap for trace
// correlation, with an async push of each entry to a Loki endpoint.
type LokiLogger struct {
	Logger      *otelzap.Logger
	ServiceName string
	lokiURL     string
	httpClient  *http.Client
}

type lokiEntry struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

func NewLokiLogger(serviceName, lokiURL string) (*LokiLogger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	zapLogger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	return &LokiLogger{
		Logger:      otelzap.New(zapLogger),
		ServiceName: serviceName,
		lokiURL:     lokiURL + "/loki/api/v1/push",
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}, nil
}

func (l *LokiLogger) Sync() error {
	return l.Logger.Sync()
}

func (l *LokiLogger) InfoWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.Logger.Ctx(ctx).Info(msg, fields...)
	go l.push(ctx, zapcore.InfoLevel, msg, fields)
}

func (l *LokiLogger) ErrorWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.Logger.Ctx(ctx).Error(msg, fields...)
	go l.push(ctx, zapcore.ErrorLevel, msg, fields)
}

func (l *LokiLogger) push(ctx context.Context, level zapcore.Level, msg string, fields []zap.Field) {
	logData := map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339Nano),
		"level":     level.String(),
		"message":   msg,
		"service":   l.ServiceName,
	}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		logData["trace_id"] = span.SpanContext().TraceID().String()
		logData["span_id"] = span.SpanContext().SpanID().String()
	}

	enc := zapcore.NewMapObjectEncoder()
	for _, field := range fields {
		field.AddTo(enc)
	}
	for k, v := range enc.Fields {
		logData[k] = v
	}

	line, err := json.Marshal(logData)
	if err != nil {
		return
	}

	entry := lokiEntry{
		Streams: []lokiStream{
			{
				Stream: map[string]string{
					"service": l.ServiceName,
					"level":   level.String(),
				},
				Values: [][]string{
					{fmt.Sprintf("%d", time.Now().UnixNano()), string(line)},
				},
			},
		},
	}

	body, err := json.Marshal(entry)
	if err != nil {
		return
	}

	req, err := http.NewRequest("POST", l.lokiURL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	io.Copy(io.Discard, resp.Body)
}
