package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"news_miner/internal/cache"
	"news_miner/internal/config"
	"news_miner/internal/db"
	"news_miner/internal/fetch"
	"news_miner/internal/models"
	"news_miner/internal/source"
	"news_miner/internal/textstats"
	"news_miner/internal/urlutil"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const staleRefreshLimit = 100

type MinerApp struct {
	config  *config.MinerConfig
	db      *db.MongoDB
	sources map[string]*source.Source
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewMinerApp(cfg *config.MinerConfig) (*MinerApp, error) {
	mongoDB, err := db.NewMongoDB(cfg.DB)
	if err != nil {
		return nil, err
	}

	pageCache := cache.NewMongoCache(
		mongoDB.PageCache(),
		time.Duration(cfg.Logic.CacheTTLHours)*time.Hour,
	)

	opts := source.Options{
		Timeout:   time.Duration(cfg.Logic.TimeoutSec) * time.Second,
		DelayMS:   cfg.Logic.DelayMS,
		UserAgent: cfg.Logic.UserAgent,
		Cache:     pageCache,
	}

	ctx, cancel := context.WithCancel(context.Background())

	miner := &MinerApp{
		config:  cfg,
		db:      mongoDB,
		sources: make(map[string]*source.Source),
		ctx:     ctx,
		cancel:  cancel,
	}

	for name, sourceConfig := range cfg.Sources {
		if !sourceConfig.Enabled {
			continue
		}
		miner.sources[name] = source.New(name, sourceConfig, opts)
	}

	if len(miner.sources) == 0 {
		cancel()
		return nil, fmt.Errorf("no enabled sources")
	}

	return miner, nil
}

func (a *MinerApp) Run() error {
	log.Println("Starting news miner...")
	log.Printf("DB: %s", a.config.DB.Database)
	log.Printf("Sources: %d enabled", len(a.sources))
	log.Printf("Page cache TTL: %d hours", a.config.Logic.CacheTTLHours)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Interrupt received, shutting down...")
		a.cancel()
	}()

	if schedule := a.config.Report.Schedule; schedule != "" {
		// A pass that outlasts the schedule interval must not overlap the
		// next tick: passes share the Source instances and the Mongo client.
		scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
		_, err := scheduler.AddFunc(schedule, func() {
			a.RunOnce(a.ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid report schedule %q: %w", schedule, err)
		}
		scheduler.Start()
		log.Printf("Mining scheduled: %q", schedule)

		<-a.ctx.Done()
		<-scheduler.Stop().Done()
	} else {
		a.RunOnce(a.ctx)
	}

	return a.db.Close()
}

// RunOnce executes one mining pass over every enabled source. Per-source
// failures are logged and don't abort the pass.
func (a *MinerApp) RunOnce(ctx context.Context) {
	started := time.Now()
	global := textstats.NewFrequencyTable()
	totalArticles := 0

	for _, name := range a.sourceNames() {
		select {
		case <-ctx.Done():
			log.Println("Mining pass cancelled")
			return
		default:
		}

		table, articleCount, err := a.mineSource(ctx, a.sources[name])
		if err != nil {
			log.Printf("Source %s failed: %v", name, err)
			continue
		}

		global.Merge(table)
		totalArticles += articleCount

		a.report(name, articleCount, table)
	}

	if len(a.sources) > 1 {
		a.report("all", totalArticles, global)
	}

	log.Printf("Mining pass finished in %s: %d articles, %d distinct words",
		time.Since(started).Round(time.Millisecond), totalArticles, len(global))
}

// mineSource lists a source's articles, fetches them best-effort, persists
// the parsed documents and returns the source's word-frequency table.
func (a *MinerApp) mineSource(ctx context.Context, src *source.Source) (textstats.FrequencyTable, int, error) {
	handles, err := src.Build(ctx)
	if err != nil {
		return nil, 0, err
	}
	log.Printf("Source %s: %d article links discovered", src.Name(), len(handles))

	handles = a.appendStaleHandles(src, handles)

	fetched := fetch.All(ctx, handles, a.config.Logic.MaxConcurrentWorkers)
	log.Printf("Source %s: %d of %d articles fetched", src.Name(), len(fetched), len(handles))

	table := textstats.NewFrequencyTable()
	for _, h := range fetched {
		table.Add(textstats.Tokenize(h.Text)...)

		if len(h.Text) < a.config.Logic.MinTextLength {
			log.Printf("Document too small, not saving: %s", h.URL)
			continue
		}

		if err := a.saveDocument(h); err != nil {
			log.Printf("Error saving document %s: %v", h.URL, err)
		}
	}

	return table, len(fetched), nil
}

// appendStaleHandles adds handles for previously mined articles whose
// documents are older than the cache TTL, so their counts stay fresh even
// when they fall off the listing pages.
func (a *MinerApp) appendStaleHandles(src *source.Source, handles []*source.Handle) []*source.Handle {
	staleURLs, err := a.db.GetStaleDocuments(src.Name(), a.config.Logic.CacheTTLHours, staleRefreshLimit)
	if err != nil {
		log.Printf("Stale document lookup failed for %s: %v", src.Name(), err)
		return handles
	}
	if len(staleURLs) == 0 {
		return handles
	}

	listed := make(map[string]bool, len(handles))
	for _, h := range handles {
		listed[urlutil.Normalize(h.URL)] = true
	}

	added := 0
	for _, staleURL := range staleURLs {
		if listed[urlutil.Normalize(staleURL)] {
			continue
		}
		handles = append(handles, src.Handle(staleURL))
		added++
	}
	if added > 0 {
		log.Printf("Source %s: re-mining %d stale articles", src.Name(), added)
	}
	return handles
}

func (a *MinerApp) saveDocument(h *source.Handle) error {
	now := time.Now().Unix()
	doc := &models.Document{
		ID:            uuid.NewString(),
		URL:           h.URL,
		NormalizedURL: urlutil.Normalize(h.URL),
		Source:        h.Source,
		Title:         h.Title,
		Content:       h.Text,
		HTMLContent:   h.HTML,
		ContentHash:   urlutil.ContentHash(h.Text),
		ContentLength: len(h.Text),
		FirstScraped:  now,
		LastScraped:   now,
		StatusCode:    h.StatusCode(),
		IsValid:       true,
	}
	return a.db.SaveDocument(doc)
}

// report prints the top words for a table and persists them as a WordReport.
func (a *MinerApp) report(name string, articleCount int, table textstats.FrequencyTable) {
	top := table.Top(a.config.Report.TopN)

	log.Printf("--- %s: %d articles, %d tokens, %d distinct words ---",
		name, articleCount, table.Total(), len(table))
	for i, entry := range top {
		log.Printf("%3d. %-20s %d", i+1, entry.Word, entry.Count)
	}

	wordReport := &models.WordReport{
		ID:           uuid.NewString(),
		Source:       name,
		GeneratedAt:  time.Now().Unix(),
		ArticleCount: articleCount,
		TokenCount:   table.Total(),
		TopWords:     top,
	}
	if err := a.db.SaveReport(wordReport); err != nil {
		log.Printf("Error saving report for %s: %v", name, err)
	}

	if stats, err := a.db.GetSourceStats(name); err == nil && len(stats) > 0 {
		log.Printf("Source %s stats: %v", name, stats)
	}
}

// sourceNames returns the enabled source names sorted, so passes process
// sources in a stable order.
func (a *MinerApp) sourceNames() []string {
	names := make([]string, 0, len(a.sources))
	for name := range a.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
