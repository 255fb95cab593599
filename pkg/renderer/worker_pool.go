package renderer

import (
	"fmt"
	"runtime"
	"sync"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile          *Tile
	PassNumber    int
	TargetSamples int
	TaskID        int            // Index of the tile, used to match results
	PixelStats    [][]PixelStats // Shared pixel stats array to write to
}

// TileResult contains the result from rendering a tile. Error wraps
// ErrTileFailed when the tile's integrator panicked.
type TileResult struct {
	TaskID   int
	WorkerID int
	Stats    RenderStats
	Error    error
}

// WorkerPool manages parallel tile rendering
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

// Worker handles individual tile rendering tasks
type Worker struct {
	ID           int
	tileRenderer *TileRenderer
	taskQueue    <-chan TileTask
	resultQueue  chan<- TileResult
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// numWorkers <= 0 uses one worker per CPU. queueSize bounds the number of
// tasks that can be submitted without a worker picking them up.
func NewWorkerPool(tileRenderer *TileRenderer, queueSize, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	queueSize = max(queueSize, 1)

	wp := &WorkerPool{
		taskQueue:   make(chan TileTask, queueSize),
		resultQueue: make(chan TileResult, queueSize),
		numWorkers:  numWorkers,
	}

	// Workers share the tile renderer; it holds no per-call state
	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:           i,
			tileRenderer: tileRenderer,
			taskQueue:    wp.taskQueue,
			resultQueue:  wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers. Calling it more than once has no effect.
func (wp *WorkerPool) Start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.started || wp.stopped {
		return
	}
	wp.started = true

	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers after queued tasks finish.
// Calling it more than once has no effect.
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if wp.stopped {
		wp.mu.Unlock()
		return
	}
	wp.stopped = true
	close(wp.taskQueue) // No more tasks
	wp.mu.Unlock()

	wp.wg.Wait() // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a tile task to the worker pool
func (wp *WorkerPool) SubmitTask(task TileTask) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.stopped {
		return ErrWorkerPoolClosed
	}
	wp.taskQueue <- task
	return nil
}

// GetResult retrieves a completed tile result
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		stats, err := w.renderTile(task)
		w.resultQueue <- TileResult{
			TaskID:   task.TaskID,
			WorkerID: w.ID,
			Stats:    stats,
			Error:    err,
		}
	}
}

// renderTile renders one task, turning a panic into an error so the worker
// keeps serving the queue and the pass sees the failure
func (w *Worker) renderTile(task TileTask) (stats RenderStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: tile %d: %v", ErrTileFailed, task.TaskID, r)
		}
	}()

	// Each tile has non-overlapping bounds, so writing to the shared
	// pixel stats array is safe
	stats = w.tileRenderer.RenderTileBounds(task.Tile.Bounds, task.PixelStats, task.Tile.Sampler, task.TargetSamples)
	return stats, nil
}
