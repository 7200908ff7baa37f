// Package search keeps an in-memory index of session transcripts and
// answers ranked, highlighted keyword queries against it.
package search

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/Zuo-Peng/ai-session-hub/internal/logging"
	"github.com/Zuo-Peng/ai-session-hub/internal/model"
)

const (
	DefaultLimit = 20
	SourceAll    = "all"

	titleBoost = 0.5
	dirBoost   = 0.2

	loadWorkers = 4
)

var fencedCode = regexp.MustCompile("```[\\s\\S]*?```")

// Loader fetches the full detail of a listed session.
type Loader interface {
	LoadSession(ctx context.Context, meta model.SessionMeta) (*model.SessionDetail, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, meta model.SessionMeta) (*model.SessionDetail, error)

func (f LoaderFunc) LoadSession(ctx context.Context, meta model.SessionMeta) (*model.SessionDetail, error) {
	return f(ctx, meta)
}

// Entry is the searchable projection of one session.
type Entry struct {
	ID               string       `json:"id"`
	Source           model.Source `json:"source"`
	Title            string       `json:"title"`
	WorkingDirectory string       `json:"workingDirectory"`
	Date             string       `json:"date"`
	Content          []string     `json:"-"`

	text  string
	lower string
	words int
}

// Key returns the composite source:id reference of the entry.
func (e *Entry) Key() string { return model.Ref(e.Source, e.ID) }

type Result struct {
	Entry      Entry    `json:"entry"`
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights"`
}

type Options struct {
	Limit  int    // 0 means DefaultLimit
	Source string // "" or "all" matches every source
}

// Index is safe for concurrent use; one mutex guards all of its state.
type Index struct {
	loader Loader

	mu       sync.Mutex
	entries  []*Entry
	sessions []model.SessionMeta
}

func New(loader Loader) *Index {
	return &Index{loader: loader}
}

// Build remembers sessions for later rebuilds and, unless the index
// already holds entries, loads each session and indexes its messages.
// Sessions that fail to load are left out.
func (ix *Index) Build(ctx context.Context, sessions []model.SessionMeta) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.sessions = append([]model.SessionMeta(nil), sessions...)
	if len(ix.entries) > 0 {
		return nil
	}
	return ix.build(ctx)
}

func (ix *Index) build(ctx context.Context) error {
	loaded := make([]*Entry, len(ix.sessions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadWorkers)
	for i, meta := range ix.sessions {
		i, meta := i, meta
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := ix.loader.LoadSession(gctx, meta)
			if err != nil || d == nil {
				logging.Logger.Debug("Not indexing session", "session", meta.Key(), "error", err)
				return nil
			}
			loaded[i] = newEntry(d)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	ix.entries = ix.entries[:0]
	for _, e := range loaded {
		if e != nil {
			ix.entries = append(ix.entries, e)
		}
	}
	logging.Logger.Debug("Search index built", "sessions", len(ix.sessions), "entries", len(ix.entries))
	return nil
}

func newEntry(d *model.SessionDetail) *Entry {
	e := &Entry{
		ID:               d.ID,
		Source:           d.Source,
		Title:            d.DisplayTitle(),
		WorkingDirectory: d.WorkingDirectory,
		Date:             d.UpdatedAt,
	}
	for _, ev := range d.Events {
		if ev.Type != model.EventUserMessage && ev.Type != model.EventAssistantMessage {
			continue
		}
		text := strings.TrimSpace(fencedCode.ReplaceAllString(ev.Text(), ""))
		if text != "" {
			e.Content = append(e.Content, text)
		}
	}
	e.text = strings.Join(e.Content, "\n")
	e.lower = lowerRunes(e.text)
	e.words = len(strings.Fields(e.text))
	return e
}

// Clear drops every entry but keeps the remembered sessions, so the next
// Search rebuilds from them.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries = nil
}

// Len reports the number of indexed entries.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.entries)
}

// Search ranks indexed sessions against query. Each token contributes its
// frequency in the content, plus a flat boost when it appears in the title
// or the working directory.
func (ix *Index) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return []Result{}, nil
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if len(ix.entries) == 0 && len(ix.sessions) > 0 {
		if err := ix.build(ctx); err != nil {
			return nil, err
		}
	}

	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return []Result{}, nil
	}

	results := []Result{}
	for _, e := range ix.entries {
		if opts.Source != "" && opts.Source != SourceAll && string(e.Source) != opts.Source {
			continue
		}
		if score := e.score(tokens); score > 0 {
			results = append(results, Result{Entry: *e, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	for i := range results {
		results[i].Highlights = Highlights(results[i].Entry.text, tokens)
	}
	return results, nil
}

func (e *Entry) score(tokens []string) float64 {
	title := lowerRunes(e.Title)
	dir := lowerRunes(e.WorkingDirectory)

	var score float64
	for _, tok := range tokens {
		if e.words > 0 {
			score += float64(strings.Count(e.lower, tok)) / float64(e.words)
		}
		if strings.Contains(title, tok) {
			score += titleBoost
		}
		if strings.Contains(dir, tok) {
			score += dirBoost
		}
	}
	return score
}

// Tokenize lowercases query and splits it on every run of characters that
// are neither letters nor digits. Tokens shorter than two runes are dropped.
func Tokenize(query string) []string {
	fields := strings.FieldsFunc(lowerRunes(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
