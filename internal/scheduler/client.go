package scheduler

import (
	"context"
	"fmt"

	"github.com/ybyllc/transcoder-cluster/internal/httpclient"
	"github.com/ybyllc/transcoder-cluster/internal/models"
)

// WorkerClient is the subset of httpclient.Client the dispatch loop needs.
// Narrowing to an interface here lets tests substitute a fake Worker
// without a real listening HTTP server.
type WorkerClient interface {
	SubmitTask(ctx context.Context, req httpclient.TaskRequest) (httpclient.TaskResponse, error)
	Status(ctx context.Context) (httpclient.StatusResponse, error)
	Capabilities(ctx context.Context) (models.CapabilityDescriptor, error)
	Download(ctx context.Context, file string) ([]byte, error)
}

// ClientFactory builds a WorkerClient for a Worker IP. Production code
// wires httpclient.New; tests supply fakes.
type ClientFactory func(workerIP string) WorkerClient

// DefaultClientFactory builds real httpclient.Clients against port on each
// Worker IP.
func DefaultClientFactory(port int) ClientFactory {
	return func(workerIP string) WorkerClient {
		return httpclient.New(fmt.Sprintf("http://%s:%d", workerIP, port))
	}
}
