package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"financepilot/internal/log"
)

// ExportProcessorConfig holds configuration for the export processor
type ExportProcessorConfig struct {
	// Interval is how often the ledger is checked for changes (default: 5m)
	Interval time.Duration
}

// DefaultExportProcessorConfig returns sensible defaults
func DefaultExportProcessorConfig() ExportProcessorConfig {
	return ExportProcessorConfig{Interval: 5 * time.Minute}
}

// ExportProcessor periodically copies the ledger into the export database.
// A pass is skipped when the file's size and modification time are unchanged
// since the last successful export.
type ExportProcessor struct {
	service  *LedgerService
	exporter Exporter
	config   ExportProcessorConfig
	logger   *log.Logger

	lastSize    int64
	lastModTime time.Time
	exports     int

	// Lifecycle management
	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	stopOnce *sync.Once
	doneCh   chan struct{}
}

// NewExportProcessor creates a new export processor
func NewExportProcessor(service *LedgerService, exporter Exporter, config ExportProcessorConfig, logger *log.Logger) *ExportProcessor {
	if config.Interval <= 0 {
		config.Interval = DefaultExportProcessorConfig().Interval
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &ExportProcessor{
		service:  service,
		exporter: exporter,
		config:   config,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Start begins the export loop. Returns an error if already running.
func (p *ExportProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("export processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.stopOnce = &sync.Once{}
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	p.logger.InfoContext(ctx, "Export processor started",
		log.FieldLedgerPath, p.service.LedgerPath(),
		"interval", p.config.Interval)
	return nil
}

// Stop gracefully stops the processor and waits for completion. After a
// timeout the loop may still be finishing; calling Stop again waits for it.
func (p *ExportProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, stopOnce, doneCh := p.stopCh, p.stopOnce, p.doneCh
	p.mu.Unlock()

	stopOnce.Do(func() { close(stopCh) })

	select {
	case <-doneCh:
		p.logger.InfoContext(ctx, "Export processor stopped gracefully")
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Export processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

// IsRunning returns whether the processor is currently running
func (p *ExportProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Exports returns how many exports the processor has completed.
func (p *ExportProcessor) Exports() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exports
}

func (p *ExportProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.RunOnce(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.RunOnce(ctx)
		}
	}
}

// RunOnce exports the ledger if it changed since the last export. It reports
// whether an export happened.
func (p *ExportProcessor) RunOnce(ctx context.Context) bool {
	info, err := os.Stat(p.service.LedgerPath())
	if err != nil {
		p.logger.WarnContext(ctx, "Ledger not available for export",
			log.FieldLedgerPath, p.service.LedgerPath(),
			log.FieldError, err)
		return false
	}

	p.mu.Lock()
	unchanged := p.exports > 0 && info.Size() == p.lastSize && info.ModTime().Equal(p.lastModTime)
	p.mu.Unlock()
	if unchanged {
		p.logger.DebugContext(ctx, "Ledger unchanged, skipping export")
		return false
	}

	summary, err := p.service.Export(ctx, p.exporter)
	if err != nil {
		p.logger.ErrorContext(ctx, "Periodic export failed",
			log.FieldOperation, log.OpExport,
			log.FieldError, err)
		return false
	}

	p.mu.Lock()
	p.lastSize = info.Size()
	p.lastModTime = info.ModTime()
	p.exports++
	p.mu.Unlock()

	p.logger.DebugContext(ctx, "Periodic export finished",
		log.FieldRows, summary.Rows,
		log.FieldMalformedRows, summary.MalformedRows)
	return true
}
