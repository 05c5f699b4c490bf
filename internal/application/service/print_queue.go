package service

import (
	"log"
	"sync"

	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
)

// PrintQueue is the ReceiptSink used at checkout. Sales go onto a buffered
// channel drained by a fixed pool of workers, so a slow or missing printer
// never holds up a finalize. When the buffer is full the receipt is dropped
// and can be reprinted later.
type PrintQueue struct {
	printer *PrinterService
	queue   chan *entity.Sale
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewPrintQueue creates a queue holding up to size pending receipts.
func NewPrintQueue(p *PrinterService, size int) *PrintQueue {
	if size <= 0 {
		size = 64
	}
	return &PrintQueue{
		printer: p,
		queue:   make(chan *entity.Sale, size),
	}
}

// Start launches the print workers.
func (q *PrintQueue) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go func(id int) {
			defer q.wg.Done()
			for sale := range q.queue {
				if _, err := q.printer.PrintSale(sale); err != nil {
					log.Printf("[print-queue] worker %d: %s not printed: %v", id, sale.InvoiceNo, err)
				}
			}
		}(i)
	}
	log.Printf("[print-queue] started %d workers", workers)
}

// Submit enqueues a receipt without blocking.
func (q *PrintQueue) Submit(sale *entity.Sale) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		log.Printf("[print-queue] closed, %s not queued", sale.InvoiceNo)
		return
	}
	select {
	case q.queue <- sale:
	default:
		log.Printf("[print-queue] full, %s not queued", sale.InvoiceNo)
	}
}

// Pending reports how many receipts are waiting.
func (q *PrintQueue) Pending() int {
	return len(q.queue)
}

// Close stops accepting receipts and waits for queued ones to print.
func (q *PrintQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.queue)
	q.mu.Unlock()

	q.wg.Wait()
}
