package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/ybyllc/transcoder-cluster/internal/httpclient"
	"github.com/ybyllc/transcoder-cluster/internal/models"
)

// statusPollInterval is the cadence submitWithProgress mirrors Worker
// progress at (spec §4.3 submit-with-progress).
const statusPollInterval = time.Second

// submitWithProgress runs one attempt end to end: POST /task, concurrently
// poll /status for progress mirroring, on success download and validate
// the result. It returns when the main POST resolves or ctx is canceled;
// the poll loop is torn down alongside it.
func submitWithProgress(ctx context.Context, client WorkerClient, guard *TaskGuard, task *models.Task, onUpdate func()) error {
	pollCtx, stopPoll := context.WithCancel(ctx)
	defer stopPoll()

	go pollStatus(pollCtx, client, guard, task, onUpdate)

	inputData, err := os.ReadFile(task.InputFile)
	if err != nil {
		return &models.TransportError{Op: "read input", Err: err}
	}

	resp, err := client.SubmitTask(ctx, httpclient.TaskRequest{
		TaskID: task.ID,
		VideoFile: httpclient.VideoFile{
			Name: filepath.Base(task.InputFile),
			Data: httpclient.EncodeFile(inputData),
		},
		FFmpegArgs: task.FFmpegArgs,
	})
	stopPoll()
	if err != nil {
		return err
	}
	if resp.Status != "success" {
		return &models.FFmpegFailure{Message: resp.Error}
	}

	data, err := client.Download(ctx, resp.OutputFile)
	if err != nil {
		return err
	}
	return writeAndValidateOutput(task.OutputFile, data)
}

// pollStatus mirrors Worker progress into task roughly once a second,
// mapping Worker slot states onto task states (spec §4.3). It never
// decides a terminal outcome — that belongs to the main POST's response.
func pollStatus(ctx context.Context, client WorkerClient, guard *TaskGuard, task *models.Task, onUpdate func()) {
	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status, err := client.Status(ctx)
			if err != nil {
				continue
			}
			switch status.Status {
			case "receiving", "uploading":
				guard.SetUploading(task, status.Progress)
			case "processing":
				guard.SetProcessing(task, status.Progress)
			default:
				// Terminal/idle Worker states don't drive task status here;
				// the POST response decides completed vs failed.
			}
			if onUpdate != nil {
				onUpdate()
			}
		}
	}
}

// writeAndValidateOutput persists data to outputPath and checks it landed
// non-empty (spec §4.3 output validation), returning the Chinese error
// strings the original implementation uses verbatim.
func writeAndValidateOutput(outputPath string, data []byte) error {
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return &models.TransportError{Op: "write output", Err: err}
	}
	info, err := os.Stat(outputPath)
	if err != nil {
		return &models.OutputValidationFailure{Message: models.ErrMsgOutputMissingZH}
	}
	if info.Size() == 0 {
		return &models.OutputValidationFailure{Message: models.ErrMsgOutputEmptyZH}
	}
	return nil
}
