package core

import (
	"context"
	"sync"
)

// AsyncClient provides asynchronous ArtVector operations.
//
// It wraps the synchronous Client and executes operations in separate
// goroutines, which suits long-running work like draining a large unembedded
// queue while the caller keeps serving searches.
//
// All async methods return channels that receive the result when the
// operation completes. The client tracks its goroutines and provides Wait()
// to ensure all operations finish.
//
// Example:
//
//	asyncClient, _ := core.NewAsyncClient(config)
//	defer asyncClient.Close()
//
//	resultChan := asyncClient.RunUntilDoneAsync(ctx, 50)
//	result := <-resultChan
//	if result.Error != nil {
//	    log.Fatal(result.Error)
//	}
type AsyncClient struct {
	*Client
	wg sync.WaitGroup
}

// NewAsyncClient creates a new asynchronous ArtVector client.
//
// Parameters:
//   - cfg: ArtVector configuration
//
// Returns:
//   - *AsyncClient: The asynchronous client instance
//   - error: Error if configuration is invalid or initialization fails
func NewAsyncClient(cfg *Config) (*AsyncClient, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &AsyncClient{
		Client: client,
	}, nil
}

// AsyncBatchResult contains the result of an asynchronous indexing run.
type AsyncBatchResult struct {
	// Result is the batch outcome (nil if an error occurred).
	Result *BatchResult

	// Error is the error returned by the operation (nil on success).
	Error error
}

// AsyncSearchResult contains the result of an asynchronous search.
type AsyncSearchResult struct {
	// Matches is the list of scored results.
	Matches []*Match

	// Error is the error returned by the operation (nil on success).
	Error error
}

// RunBatchAsync drains one indexing batch asynchronously.
//
// The operation executes in a separate goroutine and returns its result via
// a channel.
//
// Parameters:
//   - ctx: Context for controlling request lifecycle
//   - batchSize: Maximum number of objects to claim (must be positive)
//   - opts: Optional index options (WithDataset)
//
// Returns:
//   - <-chan *AsyncBatchResult: Channel that receives the batch outcome
func (ac *AsyncClient) RunBatchAsync(ctx context.Context, batchSize int, opts ...IndexOption) <-chan *AsyncBatchResult {
	resultChan := make(chan *AsyncBatchResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		result, err := ac.RunBatch(ctx, batchSize, opts...)
		resultChan <- &AsyncBatchResult{
			Result: result,
			Error:  err,
		}
		close(resultChan)
	}()

	return resultChan
}

// RunUntilDoneAsync drains the whole unembedded queue asynchronously.
//
// The operation executes in a separate goroutine and returns its cumulative
// result via a channel once the queue is empty or no further progress can
// be made.
//
// Parameters:
//   - ctx: Context for controlling request lifecycle
//   - batchSize: Maximum number of objects to claim per pass (must be positive)
//   - opts: Optional index options (WithDataset)
//
// Returns:
//   - <-chan *AsyncBatchResult: Channel that receives the cumulative outcome
func (ac *AsyncClient) RunUntilDoneAsync(ctx context.Context, batchSize int, opts ...IndexOption) <-chan *AsyncBatchResult {
	resultChan := make(chan *AsyncBatchResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		result, err := ac.RunUntilDone(ctx, batchSize, opts...)
		resultChan <- &AsyncBatchResult{
			Result: result,
			Error:  err,
		}
		close(resultChan)
	}()

	return resultChan
}

// SearchAsync answers a similarity query asynchronously.
//
// The operation executes in a separate goroutine and returns results via a
// channel. Searches are safe to run concurrently with an indexing run that
// shares the same store; each search sees a self-consistent snapshot of the
// embedded rows it reads.
//
// Parameters:
//   - ctx: Context for controlling request lifecycle
//   - query: Free-text query (must be non-empty)
//   - k: Maximum number of results (must be positive)
//   - opts: Optional search options (WithDatasetFilter, WithImagesOnly, WithMinScore)
//
// Returns:
//   - <-chan *AsyncSearchResult: Channel that receives matches and error
func (ac *AsyncClient) SearchAsync(ctx context.Context, query string, k int, opts ...SearchOption) <-chan *AsyncSearchResult {
	resultChan := make(chan *AsyncSearchResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		matches, err := ac.Search(ctx, query, k, opts...)
		resultChan <- &AsyncSearchResult{
			Matches: matches,
			Error:   err,
		}
		close(resultChan)
	}()

	return resultChan
}

// Wait waits for all asynchronous operations to complete.
//
// This method blocks until all goroutines started by async methods have
// finished. It should be called before program exit to ensure all
// operations complete.
func (ac *AsyncClient) Wait() {
	ac.wg.Wait()
}

// Close closes the asynchronous client.
//
// It first waits for all asynchronous operations to complete, then closes
// the underlying client.
func (ac *AsyncClient) Close() error {
	ac.Wait()
	return ac.Client.Close()
}
