// Package gemini はGoogle Gemini APIを使用したシグナル解説クライアントを提供します。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"signal_backend/internal/feature/analysis/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
)

// ErrEmptyResponse はモデルが本文を返さなかったことを示します。
var ErrEmptyResponse = errors.New("gemini returned no text")

// Config は Gemini クライアントの設定です。APIKey が空の場合は ADC を使用します。
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // テスト用。空ならデフォルトのエンドポイント
}

// GeminiCommentator はGoogle Gemini APIを使用してシグナルの短い解説を生成します。
type GeminiCommentator struct {
	client *genai.Client
	model  string
}

// GeminiCommentatorがCommentatorを実装していることをコンパイル時に検証します。
var _ usecase.Commentator = (*GeminiCommentator)(nil)

// NewGeminiCommentator はGeminiCommentatorの新しいインスタンスを生成します。
func NewGeminiCommentator(ctx context.Context, cfg Config) (*GeminiCommentator, error) {
	var cc *genai.ClientConfig
	if cfg.APIKey != "" {
		cc = &genai.ClientConfig{
			APIKey:      cfg.APIKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
		}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &GeminiCommentator{client: client, model: model}, nil
}

// Analyze はプロンプトから解説文を生成します。
func (g *GeminiCommentator) Analyze(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
