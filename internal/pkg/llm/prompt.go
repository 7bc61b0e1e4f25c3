package llm

import (
	"RoastMe/internal/api/config"
	"RoastMe/internal/model"
	"bytes"
	"embed"
	"fmt"
	log "log/slog"
	"os"
	"strings"
	"text/template"
)

//go:embed prompts/*.txt
var promptFS embed.FS

const (
	defaultPromptFile = "prompts/roast.txt"
	tweetPromptFile   = "prompts/tweet.txt"
)

// RoastRequest 生成一次吐槽所需的输入
type RoastRequest struct {
	Type    string
	Content string
	// Context 页面快照摘要，仅 url 类型可能存在
	Context string
}

type promptData struct {
	TypeLabel string
	Content   string
	Context   string
}

// Prompts 渲染 prompt 的模板集合，tweet 单独一份
type Prompts struct {
	def   *template.Template
	tweet *template.Template
}

// NewPrompts 加载 prompt 模板，配置了覆盖文件时优先读文件，读取失败回退到内置模板
func NewPrompts(cfg config.PromptPathConfig) (*Prompts, error) {
	def, err := parsePrompt("roast", cfg.Default, defaultPromptFile)
	if err != nil {
		return nil, err
	}
	tweet, err := parsePrompt("tweet", cfg.Tweet, tweetPromptFile)
	if err != nil {
		return nil, err
	}
	return &Prompts{def: def, tweet: tweet}, nil
}

// Render 按类型选择模板并填充内容
func (p *Prompts) Render(req RoastRequest) (string, error) {
	tpl := p.def
	if req.Type == model.RoastTypeTweet {
		tpl = p.tweet
	}
	var buf bytes.Buffer
	err := tpl.Execute(&buf, promptData{
		TypeLabel: typeLabel(req.Type),
		Content:   req.Content,
		Context:   req.Context,
	})
	if err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tpl.Name(), err)
	}
	return buf.String(), nil
}

func parsePrompt(name, overridePath, embedded string) (*template.Template, error) {
	text := ""
	if overridePath != "" {
		text = readPrompt(overridePath)
	}
	if strings.TrimSpace(text) == "" {
		data, err := promptFS.ReadFile(embedded)
		if err != nil {
			return nil, err
		}
		text = string(data)
	}
	tpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse %s prompt: %w", name, err)
	}
	return tpl, nil
}

func readPrompt(file string) string {
	data, err := os.ReadFile(file)
	if err != nil {
		log.Error("读取prompt文件失败，使用内置模板", "file", file, "err", err)
		return ""
	}
	return string(data)
}

func typeLabel(t string) string {
	switch t {
	case model.RoastTypeURL:
		return "Website"
	case model.RoastTypeTweet:
		return "Tweet"
	default:
		return "Product"
	}
}
