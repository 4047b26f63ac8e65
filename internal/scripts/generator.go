package scripts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newscast/internal/articles"
	"newscast/internal/logging"
	"newscast/internal/services"
)

const systemPrompt = `あなたはポッドキャストの台本ライターです。
以下のニュース記事をもとに、2人の話者（ホストとゲスト）による
自然な日本語の対話形式でポッドキャスト台本を作成してください。

要件:
- 10〜15分程度の会話になるボリューム（合計3000〜5000文字程度）
- 各記事について分かりやすく解説
- 話者Aはホスト（進行役）、話者Bはゲスト（解説役・テック専門家）
- 話者に固有の名前を付けない。台本中では "A:" "B:" のみ使用する
- 自然な相槌・質問・感想を含める
- 冒頭で「この番組はAIによって自動生成されています」と必ず述べる
- 各記事を紹介する際にソース名を明示する
- 末尾にまとめと「詳しくは概要欄のリンクをご覧ください」という案内を入れる

出力形式: JSON配列
[{"speaker": "A", "text": "..."}, {"speaker": "B", "text": "..."}, ...]`

// Generator produces dialogue scripts from article batches.
type Generator struct {
	client *Client
	logger *slog.Logger
	now    func() time.Time
}

// NewGenerator builds a generator on top of a chat completions client.
func NewGenerator(client *Client, logger *slog.Logger) *Generator {
	return &Generator{
		client: client,
		logger: logging.NewComponentLogger(logger, "scripts"),
		now:    time.Now,
	}
}

// Generate asks the model for a dialogue script covering the articles.
func (g *Generator) Generate(ctx context.Context, items []articles.Article) (Script, error) {
	if len(items) == 0 {
		return nil, services.Wrap(services.ErrValidation, "scripts", "generate", "no articles to cover", nil)
	}

	content, err := g.client.CompleteJSON(ctx, systemPrompt, buildPrompt(items))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "scripts", "generate", "chat completion failed", err)
	}

	script, err := DecodeScriptJSON(content)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "scripts", "generate", "decode script", err)
	}

	g.logger.Info("script generated",
		logging.Int("lines", len(script)),
		logging.Int("chars", script.CharCount()),
	)
	return script, nil
}

func buildPrompt(items []articles.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "以下の%d件のニュース記事をもとに台本を作成してください。\n\n", len(items))
	for i, item := range items {
		fmt.Fprintf(&b, "--- 記事%d ---\n", i+1)
		fmt.Fprintf(&b, "タイトル: %s\n", item.Title)
		fmt.Fprintf(&b, "ソース: %s\n", item.Source)
		if item.Summary != "" {
			fmt.Fprintf(&b, "要約: %s\n", item.Summary)
		}
		fmt.Fprintf(&b, "URL: %s\n\n", item.Link)
	}
	return b.String()
}

// Fallback produces a single-host read-through of the articles so a run
// still yields an episode when generation fails.
func (g *Generator) Fallback(items []articles.Article) Script {
	script := Script{{
		Speaker: SpeakerHost,
		Text:    fmt.Sprintf("こんにちは。%sのニュースをお届けします。", g.now().Format("2006年01月02日")),
	}}
	for i, item := range items {
		intro := fmt.Sprintf("続いて%dつ目のニュースです。", i+1)
		if item.Source != "" {
			intro += fmt.Sprintf("%sからお伝えします。", item.Source)
		}
		script = append(script, Line{Speaker: SpeakerHost, Text: intro})
		body := item.Title
		if item.Summary != "" {
			body += "。" + item.Summary
		}
		script = append(script, Line{Speaker: SpeakerHost, Text: body})
	}
	script = append(script, Line{
		Speaker: SpeakerHost,
		Text:    "以上、本日のニュースでした。ご視聴ありがとうございました。",
	})
	return script
}
