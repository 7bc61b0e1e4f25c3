package database

import (
	"RoastMe/internal/model"
	"errors"
	"fmt"
	"io/fs"
	log "log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
)

// Document 持久化文件的整体结构，每次变更后整体重写
type Document struct {
	Roasts      []*model.Roast      `json:"roasts"`
	Subscribers []*model.Subscriber `json:"subscribers"`
	Stats       model.DailyStats    `json:"stats"`
}

// DB 单文件文档库，进程内通过读写锁保证同一时刻只有一个写者
type DB struct {
	path string
	mu   sync.RWMutex
	doc  *Document
	lock *flock.Flock
	now  func() time.Time
}

type Option func(*DB)

// WithClock 替换时钟，测试使用
func WithClock(now func() time.Time) Option {
	return func(db *DB) {
		if now != nil {
			db.now = now
		}
	}
}

// Open 打开文档库。path 为空时仅在内存中保存，不落盘
func Open(path string, opts ...Option) (*DB, error) {
	db := &DB{
		path: path,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(db)
	}

	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		db.lock = flock.New(path + ".lock")
		ok, err := db.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire data file lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("data file %s is locked by another process", path)
		}
	}

	db.doc = db.load()
	log.Info("Document store loaded.", "path", path, "roasts", len(db.doc.Roasts), "subscribers", len(db.doc.Subscribers))
	return db, nil
}

// ReadDocument 只读加载文档，不加锁，供命令行工具查看
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := &Document{}
	if err = json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse data file: %w", err)
	}
	normalize(doc, time.Now())
	return doc, nil
}

// View 在读锁内访问文档，fn 不得修改文档
func (db *DB) View(fn func(doc *Document) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(db.doc)
}

// Update 在写锁内修改文档，fn 成功返回后整体落盘。
// fn 失败或落盘失败时内存文档回滚到调用前的状态，只支持追加与 Stats 的修改
func (db *DB) Update(fn func(doc *Document) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	snapshot := *db.doc
	if err := fn(db.doc); err != nil {
		*db.doc = snapshot
		return err
	}
	if err := db.persist(); err != nil {
		*db.doc = snapshot
		log.Error("failed to persist data file, change rolled back", "path", db.path, "err", err)
		return err
	}
	return nil
}

// Now 返回文档库使用的当前时间
func (db *DB) Now() time.Time {
	return db.now()
}

// Close 释放文件锁
func (db *DB) Close() error {
	if db.lock == nil {
		return nil
	}
	if err := db.lock.Unlock(); err != nil {
		return err
	}
	_ = os.Remove(db.path + ".lock")
	return nil
}

// load 读取失败或解析失败都退化为空文档，不阻断启动
func (db *DB) load() *Document {
	empty := newDocument(db.now())
	if db.path == "" {
		return empty
	}

	data, err := os.ReadFile(db.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn("failed to read data file, starting empty", "path", db.path, "err", err)
		}
		return empty
	}
	if len(data) == 0 {
		return empty
	}

	doc := &Document{}
	if err = json.Unmarshal(data, doc); err != nil {
		backup := fmt.Sprintf("%s.corrupt-%d", db.path, db.now().Unix())
		if renameErr := os.Rename(db.path, backup); renameErr != nil {
			log.Warn("failed to back up corrupt data file", "path", db.path, "err", renameErr)
		}
		log.Warn("failed to parse data file, starting empty", "path", db.path, "backup", backup, "err", err)
		return empty
	}
	normalize(doc, db.now())
	return doc
}

// persist 先写临时文件再 rename，避免写到一半的文件覆盖旧数据
func (db *DB) persist() error {
	if db.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(db.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	tmpPath := db.path + ".tmp"
	if err = os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = os.Rename(tmpPath, db.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func newDocument(now time.Time) *Document {
	return &Document{
		Roasts:      []*model.Roast{},
		Subscribers: []*model.Subscriber{},
		Stats:       model.DailyStats{Date: now.Format(model.DailyStatsDateLayout)},
	}
}

func normalize(doc *Document, now time.Time) {
	if doc.Roasts == nil {
		doc.Roasts = []*model.Roast{}
	}
	if doc.Subscribers == nil {
		doc.Subscribers = []*model.Subscriber{}
	}
	if doc.Stats.Date == "" {
		doc.Stats = model.DailyStats{Date: now.Format(model.DailyStatsDateLayout)}
	}
}
