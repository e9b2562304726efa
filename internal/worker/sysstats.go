package worker

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/ybyllc/transcoder-cluster/internal/models"
)

// HeartbeatStatus is the JSON blob a Worker attaches to discovery_response
// and heartbeat packets: the execution slot plus a cheap system snapshot,
// so the Controller can show load alongside liveness without a separate
// round trip.
type HeartbeatStatus struct {
	Slot       models.ExecutionSlot `json:"slot"`
	CPUPercent float64              `json:"cpu_percent"`
	MemPercent float64              `json:"mem_percent"`
}

// CollectHeartbeatStatus builds a HeartbeatStatus for slot, enriched with a
// non-blocking CPU/memory read. Errors from the gopsutil probes are
// swallowed; the fields are simply left at zero, since a failed stats read
// must never block or fail the heartbeat/discovery packet itself.
func CollectHeartbeatStatus(ctx context.Context, slot *Slot) HeartbeatStatus {
	status := HeartbeatStatus{Slot: slot.Snapshot()}

	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		status.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		status.MemPercent = vm.UsedPercent
	}
	return status
}

// StatusFunc adapts CollectHeartbeatStatus to discovery.StatusFunc, for
// callers (the Worker's serve command) that wire a Responder/Heartbeater
// around a Slot. Bounds the gopsutil reads so a slow host never stalls a
// heartbeat tick.
func StatusFunc(slot *Slot) func() any {
	return func() any {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		return CollectHeartbeatStatus(ctx, slot)
	}
}
