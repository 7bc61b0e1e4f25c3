package fetcher

import (
	"RoastMe/internal/api/config"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/go-shiori/go-readability"
)

var (
	ErrInvalidURL  = errors.New("fetcher: invalid url")
	ErrBlockedHost = errors.New("fetcher: host not allowed")
)

var whitespace = regexp.MustCompile(`\s+`)

// Snapshot 页面摘要，用于丰富 url 类型的 prompt
type Snapshot struct {
	Title       string
	Description string
	Excerpt     string
}

// Summary 拼成 prompt 可直接使用的文本，全部为空时返回空串
func (s *Snapshot) Summary() string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	if s.Title != "" {
		b.WriteString("Title: " + s.Title + "\n")
	}
	if s.Description != "" {
		b.WriteString("Description: " + s.Description + "\n")
	}
	if s.Excerpt != "" {
		b.WriteString("Excerpt: " + s.Excerpt + "\n")
	}
	return strings.TrimSpace(b.String())
}

// Fetcher 抓取页面并提取标题、描述和正文摘要
type Fetcher struct {
	client       *resty.Client
	maxExcerpt   int
	allowPrivate bool
}

type Option func(*Fetcher)

// WithAllowPrivateHosts 允许抓取本机和内网地址，只用于测试
func WithAllowPrivateHosts() Option {
	return func(f *Fetcher) {
		f.allowPrivate = true
	}
}

func NewFetcher(cfg config.FetcherConfig, opts ...Option) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetHeader("Accept", "text/html,application/xhtml+xml")
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}

	f := &Fetcher{client: client, maxExcerpt: cfg.MaxExcerpt}
	if f.maxExcerpt <= 0 {
		f.maxExcerpt = 600
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Snapshot 抓取失败返回错误，调用方按尽力而为处理
func (f *Fetcher) Snapshot(ctx context.Context, rawURL string) (*Snapshot, error) {
	target, err := f.normalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.R().SetContext(ctx).Get(target.String())
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target.Host, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: status %d", target.Host, resp.StatusCode())
	}
	html := resp.String()

	snap := &Snapshot{}
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		snap.Title = firstNonEmpty(
			doc.Find(`meta[property="og:title"]`).AttrOr("content", ""),
			doc.Find("title").First().Text(),
		)
		snap.Description = firstNonEmpty(
			doc.Find(`meta[name="description"]`).AttrOr("content", ""),
			doc.Find(`meta[property="og:description"]`).AttrOr("content", ""),
		)
	}

	article, err := readability.FromReader(strings.NewReader(html), target)
	if err != nil {
		log.DebugContext(ctx, "正文提取失败", "url", target.String(), "err", err)
	} else {
		if snap.Title == "" {
			snap.Title = clean(article.Title)
		}
		snap.Excerpt = truncate(clean(article.TextContent), f.maxExcerpt)
	}

	log.InfoContext(ctx, "页面快照", "url", target.String(), "title", snap.Title)
	return snap, nil
}

func (f *Fetcher) normalizeURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrInvalidURL
	}
	if !f.allowPrivate && isPrivateHost(u.Hostname()) {
		return nil, ErrBlockedHost
	}
	return u, nil
}

// isPrivateHost 只检查字面量地址和 localhost，不做 DNS 解析
func isPrivateHost(host string) bool {
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = clean(v); v != "" {
			return v
		}
	}
	return ""
}

func clean(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
